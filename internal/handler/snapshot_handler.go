package handler

import (
	"encoding/json"
	"net/http"

	"sidenote-sync-server/internal/domain"
	"sidenote-sync-server/internal/service"
	"sidenote-sync-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
)

// maxSnapshotBytes bounds a PUT body. Note content is editor HTML and can be large.
const maxSnapshotBytes = 32 << 20

type SnapshotHandler struct {
	service  *service.SnapshotService
	validate *validator.Validate
	log      zerolog.Logger
}

func NewSnapshotHandler(service *service.SnapshotService, log zerolog.Logger) *SnapshotHandler {
	return &SnapshotHandler{
		service:  service,
		validate: validator.New(),
		log:      log,
	}
}

func (h *SnapshotHandler) Get(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Get(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load snapshot")
		response.InternalError(w, "Failed to load notes")
		return
	}

	response.Success(w, snapshot)
}

// Put replaces the stored notes and folders and schedules an auto-sync.
func (h *SnapshotHandler) Put(w http.ResponseWriter, r *http.Request) {
	var req domain.PutSnapshotRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSnapshotBytes)).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	snapshot, err := h.service.Replace(r.Context(), &req)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to store snapshot")
		response.InternalError(w, "Failed to store notes")
		return
	}

	response.Success(w, snapshot)
}

func (h *SnapshotHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	snapshot, err := h.service.Get(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load snapshot")
		response.InternalError(w, "Failed to load notes")
		return
	}

	for _, note := range snapshot.Notes {
		if note.ID == id {
			response.Success(w, note)
			return
		}
	}
	response.Error(w, http.StatusNotFound, "Note not found")
}
