package model

import "time"

// Integration identifies which Google surface a connection is for.
type Integration string

const (
	IntegrationBusinessProfile Integration = "business_profile"
	IntegrationCalendar        Integration = "calendar"
)

func (i Integration) Valid() bool {
	return i == IntegrationBusinessProfile || i == IntegrationCalendar
}

type ConnectionStatus string

const (
	ConnectionStatusActive  ConnectionStatus = "active"
	ConnectionStatusRevoked ConnectionStatus = "revoked"
)

// Connection links a local user to one external Google account for one
// integration type. CreatedAt is the token issuance timestamp: it is
// overwritten on every refresh and combined with ExpiresIn to compute the
// absolute expiry.
type Connection struct {
	ID           string           `db:"id" json:"id"`
	UserID       string           `db:"user_id" json:"userId"`
	Integration  Integration      `db:"integration" json:"integration"`
	AccessToken  string           `db:"access_token" json:"-"`
	RefreshToken string           `db:"refresh_token" json:"-"`
	TokenType    string           `db:"token_type" json:"-"`
	ExpiresIn    int              `db:"expires_in" json:"-"`
	CreatedAt    time.Time        `db:"created_at" json:"createdAt"`
	GoogleEmail  string           `db:"google_email" json:"googleEmail"`
	Status       ConnectionStatus `db:"status" json:"status"`
}

// ExpiresAt is the absolute access token expiry.
func (c *Connection) ExpiresAt() time.Time {
	return c.CreatedAt.Add(time.Duration(c.ExpiresIn) * time.Second)
}

type CreateConnectionParams struct {
	UserID       string
	Integration  Integration
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int
	GoogleEmail  string
}

// UpdateConnectionTokensParams carries the fields overwritten in place on a
// successful code exchange against an existing active row, or on a refresh.
// RefreshToken is only replaced when the provider returned a new one.
type UpdateConnectionTokensParams struct {
	AccessToken  string
	RefreshToken *string
	TokenType    string
	ExpiresIn    int
	CreatedAt    time.Time
}
