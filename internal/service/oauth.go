package service

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/google"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/handoff"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/util"
)

var ErrProviderNotConfigured = errors.New("Google OAuth is not configured")

type OAuthService struct {
	google          *google.Client
	connRepo        repository.ConnectionRepository
	handoffStore    handoff.Store
	canonicalOrigin string
}

func NewOAuthService(
	googleClient *google.Client,
	connRepo repository.ConnectionRepository,
	handoffStore handoff.Store,
	canonicalOrigin string,
) *OAuthService {
	return &OAuthService{
		google:          googleClient,
		connRepo:        connRepo,
		handoffStore:    handoffStore,
		canonicalOrigin: canonicalOrigin,
	}
}

// AuthStart is the outcome of BeginAuth: either a provider consent URL, or a
// same-origin resume path when the flow started on the wrong origin.
type AuthStart struct {
	AuthURL    string `json:"authUrl,omitempty"`
	ResumePath string `json:"resumePath,omitempty"`
	State      string `json:"state"`
	Pending    bool   `json:"pending"`
}

// BeginAuth starts the authorization-code flow for one integration type. The
// initiating user's identity is written into the handoff store under the state
// token before any redirect happens, so it survives a cross-origin hop.
func (s *OAuthService) BeginAuth(ctx context.Context, userID string, integration model.Integration, origin string) (*AuthStart, error) {
	if userID == "" {
		return nil, apperrors.MissingIdentity()
	}
	if !integration.Valid() {
		return nil, apperrors.InvalidInput("integration", "must be business_profile or calendar")
	}
	if !s.google.Configured() {
		return nil, ErrProviderNotConfigured
	}

	state, err := util.GenerateToken()
	if err != nil {
		return nil, err
	}

	// The provider only redirects back to the registered origin. If the flow
	// started somewhere else, park it and hand the browser a same-origin path;
	// the consent URL is built on resume, after the navigation lands there.
	if origin != "" && origin != s.canonicalOrigin {
		rec := handoff.Record{UserID: userID, Integration: integration, Pending: true}
		if err := s.handoffStore.Set(ctx, state, rec); err != nil {
			return nil, err
		}
		log.Info().
			Str("userId", userID).
			Str("integration", string(integration)).
			Str("origin", origin).
			Msg("OAuth start deferred to canonical origin")
		return &AuthStart{
			ResumePath: "/oauth/google/resume?state=" + state,
			State:      state,
			Pending:    true,
		}, nil
	}

	rec := handoff.Record{UserID: userID, Integration: integration}
	if err := s.handoffStore.Set(ctx, state, rec); err != nil {
		return nil, err
	}

	return &AuthStart{
		AuthURL: s.google.AuthURL(scopesFor(integration), state),
		State:   state,
	}, nil
}

// ResumeAuth consumes a pending handoff at the canonical origin and returns
// the provider consent URL for it.
func (s *OAuthService) ResumeAuth(ctx context.Context, state string) (string, error) {
	rec, err := s.handoffStore.Get(ctx, state)
	if err != nil {
		return "", err
	}
	if rec == nil {
		return "", apperrors.HandoffExpired()
	}

	if rec.Pending {
		rec.Pending = false
		if err := s.handoffStore.Set(ctx, state, *rec); err != nil {
			return "", err
		}
	}

	return s.google.AuthURL(scopesFor(rec.Integration), state), nil
}

// HandleCallback finishes the flow: resolves the initiating user from the
// handoff store, exchanges the code, resolves the Google account's email, and
// upserts the connection for (user, integration, email). Only an existing
// active row is updated in place; a revoked row for the same email is left
// alone and a fresh row is inserted.
func (s *OAuthService) HandleCallback(ctx context.Context, code, state string) (*model.Connection, error) {
	rec, err := s.handoffStore.Get(ctx, state)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, apperrors.MissingIdentity()
	}

	tok, err := s.google.ExchangeCode(ctx, code)
	if err != nil {
		return nil, err
	}

	email, err := s.resolveEmail(ctx, tok)
	if err != nil {
		return nil, err
	}

	conn, err := s.upsertConnection(ctx, rec.UserID, rec.Integration, email, tok)
	if err != nil {
		return nil, err
	}

	if err := s.handoffStore.Clear(ctx, state); err != nil {
		log.Warn().Err(err).Msg("failed to clear OAuth handoff record")
	}

	log.Info().
		Str("userId", rec.UserID).
		Str("integration", string(rec.Integration)).
		Str("googleEmail", email).
		Msg("Google connection established")

	return conn, nil
}

// resolveEmail prefers the id_token's email claim (locally decoded, not
// verified) and degrades to the authenticated userinfo call when the claim is
// missing or malformed.
func (s *OAuthService) resolveEmail(ctx context.Context, tok *google.TokenResponse) (string, error) {
	if tok.IDToken != "" {
		email, err := google.EmailFromIDToken(tok.IDToken)
		if err == nil {
			return email, nil
		}
		log.Debug().Err(err).Msg("id_token decode failed, falling back to userinfo")
	}

	info, err := s.google.FetchUserinfo(ctx, tok.AccessToken)
	if err != nil {
		return "", err
	}
	if info.Email == "" {
		return "", apperrors.Internal("Google userinfo returned no email")
	}
	return info.Email, nil
}

func (s *OAuthService) upsertConnection(ctx context.Context, userID string, integration model.Integration, email string, tok *google.TokenResponse) (*model.Connection, error) {
	existing, err := s.connRepo.FindActive(ctx, userID, integration, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if existing != nil {
		var refreshToken *string
		if tok.RefreshToken != "" {
			refreshToken = &tok.RefreshToken
		}
		conn, err := s.connRepo.UpdateTokens(ctx, existing.ID, model.UpdateConnectionTokensParams{
			AccessToken:  tok.AccessToken,
			RefreshToken: refreshToken,
			TokenType:    tok.TokenType,
			ExpiresIn:    tok.ExpiresIn,
			CreatedAt:    time.Now(),
		})
		if err != nil {
			return nil, apperrors.Database(err)
		}
		return conn, nil
	}

	conn, err := s.connRepo.Create(ctx, model.CreateConnectionParams{
		UserID:       userID,
		Integration:  integration,
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenType:    tok.TokenType,
		ExpiresIn:    tok.ExpiresIn,
		GoogleEmail:  email,
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}
	return conn, nil
}

func (s *OAuthService) ListConnections(ctx context.Context, userID string) ([]*model.Connection, error) {
	return s.connRepo.ListByUserID(ctx, userID)
}

// Disconnect revokes the token at Google (best-effort) and marks the local
// connection revoked. Revocation failure never blocks the local transition.
func (s *OAuthService) Disconnect(ctx context.Context, userID, connectionID string) error {
	conn, err := s.connRepo.FindByID(ctx, connectionID)
	if err != nil {
		return apperrors.Database(err)
	}
	if conn == nil || conn.UserID != userID {
		return apperrors.NotFound("Connection")
	}

	if err := s.google.RevokeToken(ctx, conn.AccessToken); err != nil {
		log.Warn().Err(err).Str("connectionId", conn.ID).Msg("Google token revocation failed")
	}

	if err := s.connRepo.MarkRevoked(ctx, conn.ID); err != nil {
		return apperrors.Database(err)
	}

	log.Info().Str("connectionId", conn.ID).Str("userId", userID).Msg("connection disconnected")
	return nil
}

func scopesFor(integration model.Integration) []string {
	if integration == model.IntegrationBusinessProfile {
		return google.BusinessProfileScopes
	}
	return google.CalendarScopes
}
