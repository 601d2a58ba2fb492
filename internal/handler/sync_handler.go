package handler

import (
	"errors"
	"net/http"
	"strconv"

	"sidenote-sync-server/internal/repository"
	"sidenote-sync-server/internal/service"
	"sidenote-sync-server/pkg/response"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type SyncHandler struct {
	autoSync *service.AutoSyncer
	history  repository.SyncRunRepository
}

func NewSyncHandler(autoSync *service.AutoSyncer, history repository.SyncRunRepository) *SyncHandler {
	return &SyncHandler{
		autoSync: autoSync,
		history:  history,
	}
}

// SyncNow runs a sync immediately and reports its result. A request made
// while a sync is already running is dropped with 409.
func (h *SyncHandler) SyncNow(w http.ResponseWriter, r *http.Request) {
	result, err := h.autoSync.SyncNow(r.Context())
	switch {
	case errors.Is(err, service.ErrSyncInProgress):
		response.JSON(w, http.StatusConflict, result)
	case errors.Is(err, service.ErrSyncerStopped):
		response.JSON(w, http.StatusServiceUnavailable, result)
	case err != nil:
		response.JSON(w, http.StatusRequestTimeout, result)
	case !result.Success:
		response.JSON(w, http.StatusBadGateway, result)
	default:
		response.JSON(w, http.StatusOK, result)
	}
}

func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.autoSync.Status())
}

func (h *SyncHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			response.BadRequest(w, "limit must be between 1 and 100")
			return
		}
		limit = n
	}

	runs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		response.InternalError(w, "Failed to load sync history")
		return
	}

	response.Success(w, runs)
}
