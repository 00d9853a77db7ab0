package handler

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

type SyncHandler struct {
	syncService *service.CalendarSyncService
}

func NewSyncHandler(syncService *service.CalendarSyncService) *SyncHandler {
	return &SyncHandler{syncService: syncService}
}

type syncRequest struct {
	UserID string `json:"userId"`
}

// POST /v1/sync/calendar
//
// Bearer callers sync their own calendar; service-key callers must name the
// target user in the body. The auth middleware already rejected anything else.
func (h *SyncHandler) TriggerCalendarSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var userID string
	switch {
	case middleware.GetUser(ctx) != nil:
		userID = middleware.GetUser(ctx).ID
	case middleware.IsServiceCaller(ctx):
		var req syncRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == "" {
			writeError(w, apperrors.MissingRequired("userId"))
			return
		}
		userID = req.UserID
	default:
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	summary, err := h.syncService.SyncUser(ctx, userID)
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Str("userId", userID).Msg("calendar sync failed")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Calendar sync failed"})
		return
	}

	writeJSON(w, http.StatusOK, summary)
}
