package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
)

type ContactHandler struct {
	contactRepo repository.ContactRepository
}

func NewContactHandler(contactRepo repository.ContactRepository) *ContactHandler {
	return &ContactHandler{contactRepo: contactRepo}
}

func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// GET /v1/contacts
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	pagination := ParsePagination(r)

	contacts, err := h.contactRepo.ListByUserID(r.Context(), user.ID, pagination.Limit, pagination.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list contacts")
		writeError(w, apperrors.Database(err))
		return
	}

	total, err := h.contactRepo.CountByUserID(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to count contacts")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"contacts": contacts,
		"total":    total,
		"limit":    pagination.Limit,
		"offset":   pagination.Offset,
	})
}
