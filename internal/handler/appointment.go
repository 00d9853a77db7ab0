package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
)

type AppointmentHandler struct {
	apptRepo repository.AppointmentRepository
}

func NewAppointmentHandler(apptRepo repository.AppointmentRepository) *AppointmentHandler {
	return &AppointmentHandler{apptRepo: apptRepo}
}

func (h *AppointmentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)

	return r
}

// GET /v1/appointments
func (h *AppointmentHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	pagination := ParsePagination(r)

	appts, err := h.apptRepo.ListByUserID(r.Context(), user.ID, pagination.Limit, pagination.Offset)
	if err != nil {
		log.Error().Err(err).Msg("failed to list appointments")
		writeError(w, apperrors.Database(err))
		return
	}

	total, err := h.apptRepo.CountByUserID(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Msg("failed to count appointments")
		writeError(w, apperrors.Database(err))
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"appointments": appts,
		"total":        total,
		"limit":        pagination.Limit,
		"offset":       pagination.Offset,
	})
}
