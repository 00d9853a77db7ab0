package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/config"
	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/google"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
)

type TokenService struct {
	google   *google.Client
	connRepo repository.ConnectionRepository
}

func NewTokenService(googleClient *google.Client, connRepo repository.ConnectionRepository) *TokenService {
	return &TokenService{google: googleClient, connRepo: connRepo}
}

// EnsureFresh returns a connection whose access token is usable. Outside the
// refresh window the record comes back untouched with no network call. Inside
// it, a refresh-token grant runs; on failure the connection is demoted to
// revoked and the caller gets a reauth-required error, never a retry.
func (s *TokenService) EnsureFresh(ctx context.Context, conn *model.Connection) (*model.Connection, error) {
	if conn.Status != model.ConnectionStatusActive {
		return nil, apperrors.ReauthRequired()
	}

	if time.Now().Before(conn.ExpiresAt().Add(-config.TokenRefreshWindow)) {
		return conn, nil
	}

	tok, err := s.google.RefreshAccessToken(ctx, conn.RefreshToken)
	if err != nil {
		log.Warn().Err(err).Str("connectionId", conn.ID).Msg("token refresh failed, revoking connection")
		if revokeErr := s.connRepo.MarkRevoked(ctx, conn.ID); revokeErr != nil {
			log.Error().Err(revokeErr).Str("connectionId", conn.ID).Msg("failed to mark connection revoked")
		}
		return nil, apperrors.ReauthRequired().WithCause(err)
	}

	// The refresh grant does not return a new refresh token; the stored one
	// stays in place.
	updated, err := s.connRepo.UpdateTokens(ctx, conn.ID, model.UpdateConnectionTokensParams{
		AccessToken: tok.AccessToken,
		TokenType:   tok.TokenType,
		ExpiresIn:   tok.ExpiresIn,
		CreatedAt:   time.Now(),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Debug().Str("connectionId", conn.ID).Msg("access token refreshed")
	return updated, nil
}
