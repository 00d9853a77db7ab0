package model

import "time"

// Appointment is one synced calendar event. ExternalEventID is the idempotency
// key: at most one appointment exists per (user, external event id).
type Appointment struct {
	ID              string    `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"userId"`
	ContactID       string    `db:"contact_id" json:"contactId"`
	ExternalEventID string    `db:"external_event_id" json:"externalEventId"`
	Title           string    `db:"title" json:"title"`
	Description     *string   `db:"description" json:"description,omitempty"`
	StartsAt        time.Time `db:"starts_at" json:"startsAt"`
	EndsAt          time.Time `db:"ends_at" json:"endsAt"`
	Origin          string    `db:"origin" json:"origin"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

const AppointmentOriginGoogleCalendar = "google_calendar"

type UpsertAppointmentParams struct {
	UserID          string
	ContactID       string
	ExternalEventID string
	Title           string
	Description     *string
	StartsAt        time.Time
	EndsAt          time.Time
	Origin          string
}
