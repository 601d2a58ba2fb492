package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/service"
	"sidenote-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

type SettingsHandler struct {
	service  *service.SettingsService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewSettingsHandler(service *service.SettingsService, log zerolog.Logger) *SettingsHandler {
	return &SettingsHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	settings, err := h.service.Get(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load settings")
		response.InternalError(w, "Failed to load settings")
		return
	}

	response.Success(w, settings)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateSettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	settings, err := h.service.Update(r.Context(), &req)
	if err != nil {
		var cfgErr *service.ConfigError
		if errors.As(err, &cfgErr) {
			response.BadRequest(w, cfgErr.Error())
			return
		}
		h.log.Error().Err(err).Msg("failed to save settings")
		response.InternalError(w, "Failed to save settings")
		return
	}

	response.Success(w, settings)
}
