package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

type ConnectionHandler struct {
	oauthService *service.OAuthService
}

func NewConnectionHandler(oauthService *service.OAuthService) *ConnectionHandler {
	return &ConnectionHandler{oauthService: oauthService}
}

func (h *ConnectionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Delete("/{id}", h.Disconnect)

	return r
}

// GET /v1/connections
func (h *ConnectionHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	conns, err := h.oauthService.ListConnections(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to list connections")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"connections": conns,
	})
}

// DELETE /v1/connections/{id}
func (h *ConnectionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, apperrors.MissingRequired("id"))
		return
	}

	if err := h.oauthService.Disconnect(r.Context(), user.ID, id); err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Str("connectionId", id).Msg("failed to disconnect")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to disconnect"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
