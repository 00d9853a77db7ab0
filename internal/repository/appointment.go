package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
)

type AppointmentRepository interface {
	FindByExternalEventID(ctx context.Context, userID, externalEventID string) (*model.Appointment, error)
	ListByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Appointment, error)
	CountByUserID(ctx context.Context, userID string) (int, error)
	// Upsert inserts or updates the appointment keyed by (user_id,
	// external_event_id) in a single statement, so overlapping sync runs
	// cannot race a separate existence check into duplicate rows.
	Upsert(ctx context.Context, params model.UpsertAppointmentParams) (*model.Appointment, error)
}

type appointmentRepo struct {
	db *sqlx.DB
}

func NewAppointmentRepository(db *sqlx.DB) AppointmentRepository {
	return &appointmentRepo{db: db}
}

func (r *appointmentRepo) FindByExternalEventID(ctx context.Context, userID, externalEventID string) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, `
		SELECT * FROM appointments
		WHERE user_id = $1 AND external_event_id = $2
	`, userID, externalEventID)
	return HandleNotFound(&appt, err)
}

func (r *appointmentRepo) ListByUserID(ctx context.Context, userID string, limit, offset int) ([]model.Appointment, error) {
	var appts []model.Appointment
	err := r.db.SelectContext(ctx, &appts, `
		SELECT * FROM appointments
		WHERE user_id = $1
		ORDER BY starts_at ASC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	return appts, nil
}

func (r *appointmentRepo) CountByUserID(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM appointments WHERE user_id = $1
	`, userID)
	return count, err
}

func (r *appointmentRepo) Upsert(ctx context.Context, params model.UpsertAppointmentParams) (*model.Appointment, error) {
	var appt model.Appointment
	err := r.db.GetContext(ctx, &appt, `
		INSERT INTO appointments (user_id, contact_id, external_event_id, title, description, starts_at, ends_at, origin)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, external_event_id) DO UPDATE
		SET contact_id = EXCLUDED.contact_id,
		    title = EXCLUDED.title,
		    description = EXCLUDED.description,
		    starts_at = EXCLUDED.starts_at,
		    ends_at = EXCLUDED.ends_at,
		    updated_at = NOW()
		RETURNING *
	`, params.UserID, params.ContactID, params.ExternalEventID, params.Title, params.Description, params.StartsAt, params.EndsAt, params.Origin)
	if err != nil {
		return nil, err
	}
	return &appt, nil
}
