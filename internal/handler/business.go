package handler

import (
	"net/http"

	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

type BusinessHandler struct {
	businessService *service.BusinessProfileService
}

func NewBusinessHandler(businessService *service.BusinessProfileService) *BusinessHandler {
	return &BusinessHandler{businessService: businessService}
}

// GET /v1/business-profile/locations
func (h *BusinessHandler) ListLocations(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	accounts, err := h.businessService.ListLocations(r.Context(), user.ID)
	if err != nil {
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("failed to list business locations")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to list locations"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"accounts": accounts,
	})
}
