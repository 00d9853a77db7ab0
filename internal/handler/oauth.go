package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/errors"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/middleware"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

type OAuthHandler struct {
	oauthService    *service.OAuthService
	canonicalOrigin string
	settingsPath    string
}

func NewOAuthHandler(oauthService *service.OAuthService, canonicalOrigin, settingsPath string) *OAuthHandler {
	return &OAuthHandler{
		oauthService:    oauthService,
		canonicalOrigin: canonicalOrigin,
		settingsPath:    settingsPath,
	}
}

// PublicRoutes are reachable without authentication: the provider redirects
// the browser here, and the resume hop happens before any session exists on
// the canonical origin.
func (h *OAuthHandler) PublicRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/resume", h.Resume)
	r.Get("/callback", h.Callback)

	return r
}

// GET /oauth/google/connect?integration=calendar
func (h *OAuthHandler) Connect(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r.Context())
	if user == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Not authenticated"})
		return
	}

	integration := model.Integration(r.URL.Query().Get("integration"))

	start, err := h.oauthService.BeginAuth(r.Context(), user.ID, integration, requestOrigin(r))
	if err != nil {
		if errors.Is(err, service.ErrProviderNotConfigured) {
			writeJSON(w, http.StatusNotImplemented, map[string]string{"error": "Google OAuth not configured"})
			return
		}
		if apperrors.IsAppError(err) {
			writeError(w, err)
			return
		}
		log.Error().Err(err).Msg("failed to start Google auth")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to initiate OAuth"})
		return
	}

	if start.Pending {
		// Wrong origin: hop to the canonical one first, consent URL is built
		// on resume.
		http.Redirect(w, r, h.canonicalOrigin+start.ResumePath, http.StatusTemporaryRedirect)
		return
	}

	http.Redirect(w, r, start.AuthURL, http.StatusTemporaryRedirect)
}

// GET /oauth/google/resume?state=...
func (h *OAuthHandler) Resume(w http.ResponseWriter, r *http.Request) {
	state := r.URL.Query().Get("state")
	if state == "" {
		writeError(w, apperrors.MissingRequired("state"))
		return
	}

	authURL, err := h.oauthService.ResumeAuth(r.Context(), state)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeHandoffExpired {
			http.Redirect(w, r, h.settingsPath+"?error=oauth_expired", http.StatusTemporaryRedirect)
			return
		}
		log.Error().Err(err).Msg("failed to resume Google auth")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to resume OAuth"})
		return
	}

	http.Redirect(w, r, authURL, http.StatusTemporaryRedirect)
}

// GET /oauth/google/callback?code=...&state=...
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errMsg := r.URL.Query().Get("error"); errMsg != "" {
		log.Warn().Str("error", errMsg).Msg("OAuth error from provider")
		http.Redirect(w, r, h.settingsPath+"?error=oauth_denied", http.StatusTemporaryRedirect)
		return
	}

	code := r.URL.Query().Get("code")
	state := r.URL.Query().Get("state")
	if code == "" || state == "" {
		http.Redirect(w, r, h.settingsPath+"?error=missing_params", http.StatusTemporaryRedirect)
		return
	}

	conn, err := h.oauthService.HandleCallback(r.Context(), code, state)
	if err != nil {
		log.Error().Err(err).Msg("OAuth callback failed")
		switch apperrors.GetCode(err) {
		case apperrors.ErrCodeMissingIdentity:
			http.Redirect(w, r, h.settingsPath+"?error=session_lost", http.StatusTemporaryRedirect)
		case apperrors.ErrCodeAuthInsufficient:
			http.Redirect(w, r, h.settingsPath+"?error=insufficient_authorization", http.StatusTemporaryRedirect)
		default:
			http.Redirect(w, r, h.settingsPath+"?error=oauth_failed", http.StatusTemporaryRedirect)
		}
		return
	}

	http.Redirect(w, r, h.settingsPath+"?connected="+string(conn.Integration), http.StatusTemporaryRedirect)
}

// requestOrigin reconstructs the origin the browser hit, honoring the proxy
// forwarding headers set by the ingress.
func requestOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	host := r.Host
	if forwarded := r.Header.Get("X-Forwarded-Host"); forwarded != "" {
		host = forwarded
	}

	return scheme + "://" + host
}
