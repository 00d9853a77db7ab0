package model

import "time"

// Contact is a person associated with a user's clinic. Contacts created by
// calendar sync carry the calendar source tag; uniqueness within a user scope
// is loose, by email then phone lookup.
type Contact struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"userId"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Source    string    `db:"source" json:"source"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

const (
	ContactSourceCalendar = "google_calendar"
	ContactSourceManual   = "manual"
)

type CreateContactParams struct {
	UserID string
	Name   string
	Email  *string
	Phone  *string
	Source string
}
