package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/handoff"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/service"
)

const (
	canonicalOrigin = "http://app.example.com"
	settingsPath    = "/settings/integrations"
)

func newOAuthFixture(t *testing.T, provider http.HandlerFunc) (*OAuthHandler, *mockConnectionRepo, handoff.Store) {
	t.Helper()

	if provider == nil {
		provider = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected provider call: %s", r.URL.Path)
		}
	}
	server := httptest.NewServer(provider)
	t.Cleanup(server.Close)

	connRepo := new(mockConnectionRepo)
	store := testHandoffStore(t)
	oauthService := service.NewOAuthService(testGoogleClient(t, server), connRepo, store, canonicalOrigin)

	return NewOAuthHandler(oauthService, canonicalOrigin, settingsPath), connRepo, store
}

func TestConnect(t *testing.T) {
	t.Run("redirects to the provider consent URL", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/connect?integration=calendar", nil)
		req.Host = "app.example.com"
		req = withUser(req, &model.User{ID: "user-1"})
		rec := httptest.NewRecorder()

		h.Connect(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		location := rec.Header().Get("Location")
		assert.Contains(t, location, "/auth?")
		assert.Contains(t, location, "access_type=offline")
	})

	t.Run("wrong origin hops to the canonical one", func(t *testing.T) {
		h, _, store := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/connect?integration=calendar", nil)
		req.Host = "other.example.com"
		req = withUser(req, &model.User{ID: "user-1"})
		rec := httptest.NewRecorder()

		h.Connect(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		location := rec.Header().Get("Location")
		assert.Contains(t, location, canonicalOrigin+"/oauth/google/resume?state=")

		state := location[len(canonicalOrigin+"/oauth/google/resume?state="):]
		rec2, err := store.Get(context.Background(), state)
		require.NoError(t, err)
		require.NotNil(t, rec2)
		assert.True(t, rec2.Pending)
	})

	t.Run("forwarded headers decide the origin", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/connect?integration=calendar", nil)
		req.Host = "backend.internal"
		req.Header.Set("X-Forwarded-Proto", "http")
		req.Header.Set("X-Forwarded-Host", "app.example.com")
		req = withUser(req, &model.User{ID: "user-1"})
		rec := httptest.NewRecorder()

		h.Connect(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "/auth?")
	})

	t.Run("unauthenticated", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/connect?integration=calendar", nil)
		rec := httptest.NewRecorder()

		h.Connect(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid integration", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/connect?integration=gmail", nil)
		req.Host = "app.example.com"
		req = withUser(req, &model.User{ID: "user-1"})
		rec := httptest.NewRecorder()

		h.Connect(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestResume(t *testing.T) {
	t.Run("missing state", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/resume", nil)
		rec := httptest.NewRecorder()

		h.Resume(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("expired state redirects to settings", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/resume?state=gone", nil)
		rec := httptest.NewRecorder()

		h.Resume(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, settingsPath+"?error=oauth_expired", rec.Header().Get("Location"))
	})

	t.Run("parked flow resumes to the consent URL", func(t *testing.T) {
		h, _, store := newOAuthFixture(t, nil)

		err := store.Set(context.Background(), "state-1", handoff.Record{
			UserID:      "user-1",
			Integration: model.IntegrationCalendar,
			Pending:     true,
		})
		require.NoError(t, err)

		req := httptest.NewRequest("GET", "/oauth/google/resume?state=state-1", nil)
		rec := httptest.NewRecorder()

		h.Resume(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Contains(t, rec.Header().Get("Location"), "state=state-1")
	})
}

func TestCallback(t *testing.T) {
	t.Run("provider denial", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/callback?error=access_denied", nil)
		rec := httptest.NewRecorder()

		h.Callback(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, settingsPath+"?error=oauth_denied", rec.Header().Get("Location"))
	})

	t.Run("missing parameters", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/callback?code=abc", nil)
		rec := httptest.NewRecorder()

		h.Callback(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, settingsPath+"?error=missing_params", rec.Header().Get("Location"))
	})

	t.Run("lost handoff", func(t *testing.T) {
		h, _, _ := newOAuthFixture(t, nil)

		req := httptest.NewRequest("GET", "/oauth/google/callback?code=abc&state=gone", nil)
		rec := httptest.NewRecorder()

		h.Callback(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, settingsPath+"?error=session_lost", rec.Header().Get("Location"))
	})

	t.Run("successful exchange redirects to settings", func(t *testing.T) {
		idToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
			"email": "clinic@example.com",
		}).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		h, connRepo, store := newOAuthFixture(t, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "/token", r.URL.Path)
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"access_token":"at","refresh_token":"rt","token_type":"Bearer","expires_in":3600,"id_token":"` + idToken + `"}`))
		})

		require.NoError(t, store.Set(context.Background(), "state-1", handoff.Record{
			UserID:      "user-1",
			Integration: model.IntegrationCalendar,
		}))

		connRepo.On("FindActive", mock.Anything, "user-1", model.IntegrationCalendar, "clinic@example.com").
			Return(nil, nil)
		connRepo.On("Create", mock.Anything, mock.Anything).
			Return(testConnection("user-1"), nil)

		req := httptest.NewRequest("GET", "/oauth/google/callback?code=abc&state=state-1", nil)
		rec := httptest.NewRecorder()

		h.Callback(rec, req)

		require.Equal(t, http.StatusTemporaryRedirect, rec.Code)
		assert.Equal(t, settingsPath+"?connected=calendar", rec.Header().Get("Location"))
		connRepo.AssertExpectations(t)
	})
}
