package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
)

type ConnectionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Connection, error)
	// FindActive looks up the single active connection for a (user,
	// integration, google email) tuple. Revoked rows never match.
	FindActive(ctx context.Context, userID string, integration model.Integration, googleEmail string) (*model.Connection, error)
	FindActiveByUserAndIntegration(ctx context.Context, userID string, integration model.Integration) (*model.Connection, error)
	ListByUserID(ctx context.Context, userID string) ([]*model.Connection, error)
	ListUserIDsWithActive(ctx context.Context, integration model.Integration) ([]string, error)
	Create(ctx context.Context, params model.CreateConnectionParams) (*model.Connection, error)
	UpdateTokens(ctx context.Context, id string, params model.UpdateConnectionTokensParams) (*model.Connection, error)
	MarkRevoked(ctx context.Context, id string) error
}

type connectionRepo struct {
	db *sqlx.DB
}

func NewConnectionRepository(db *sqlx.DB) ConnectionRepository {
	return &connectionRepo{db: db}
}

func (r *connectionRepo) FindByID(ctx context.Context, id string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM google_connections WHERE id = $1
	`, id)
	return HandleNotFound(&conn, err)
}

func (r *connectionRepo) FindActive(ctx context.Context, userID string, integration model.Integration, googleEmail string) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM google_connections
		WHERE user_id = $1 AND integration = $2 AND google_email = $3 AND status = 'active'
	`, userID, integration, googleEmail)
	return HandleNotFound(&conn, err)
}

func (r *connectionRepo) FindActiveByUserAndIntegration(ctx context.Context, userID string, integration model.Integration) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		SELECT * FROM google_connections
		WHERE user_id = $1 AND integration = $2 AND status = 'active'
		ORDER BY created_at DESC
		LIMIT 1
	`, userID, integration)
	return HandleNotFound(&conn, err)
}

func (r *connectionRepo) ListByUserID(ctx context.Context, userID string) ([]*model.Connection, error) {
	var conns []*model.Connection
	err := r.db.SelectContext(ctx, &conns, `
		SELECT * FROM google_connections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	return conns, nil
}

func (r *connectionRepo) ListUserIDsWithActive(ctx context.Context, integration model.Integration) ([]string, error) {
	var userIDs []string
	err := r.db.SelectContext(ctx, &userIDs, `
		SELECT DISTINCT user_id FROM google_connections
		WHERE integration = $1 AND status = 'active'
	`, integration)
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

func (r *connectionRepo) Create(ctx context.Context, params model.CreateConnectionParams) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		INSERT INTO google_connections (user_id, integration, access_token, refresh_token, token_type, expires_in, google_email, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'active')
		RETURNING *
	`, params.UserID, params.Integration, params.AccessToken, params.RefreshToken, params.TokenType, params.ExpiresIn, params.GoogleEmail)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) UpdateTokens(ctx context.Context, id string, params model.UpdateConnectionTokensParams) (*model.Connection, error) {
	var conn model.Connection
	err := r.db.GetContext(ctx, &conn, `
		UPDATE google_connections
		SET access_token = $2,
		    refresh_token = COALESCE($3, refresh_token),
		    token_type = $4,
		    expires_in = $5,
		    created_at = $6
		WHERE id = $1
		RETURNING *
	`, id, params.AccessToken, params.RefreshToken, params.TokenType, params.ExpiresIn, params.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepo) MarkRevoked(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE google_connections SET status = 'revoked' WHERE id = $1
	`, id)
	return err
}
