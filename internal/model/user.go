package model

import "time"

// User is a dashboard account. APITokenHash is the sha256 of the bearer token
// presented on API calls; the raw token is only shown once at creation.
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	APITokenHash string    `db:"api_token_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
