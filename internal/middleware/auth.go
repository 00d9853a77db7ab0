package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/model"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/repository"
	"github.com/cristianqx/viva-reputacao-clinicas-sub000/internal/util"
)

type contextKey string

const (
	UserContextKey          contextKey = "user"
	ServiceCallerContextKey contextKey = "serviceCaller"
)

const ServiceKeyHeader = "X-Service-Key"

func GetUser(ctx context.Context) *model.User {
	if user, ok := ctx.Value(UserContextKey).(*model.User); ok {
		return user
	}
	return nil
}

// IsServiceCaller reports whether the request authenticated with the service
// key rather than a user bearer token.
func IsServiceCaller(ctx context.Context) bool {
	caller, ok := ctx.Value(ServiceCallerContextKey).(bool)
	return ok && caller
}

type AuthMiddleware struct {
	userRepo       repository.UserRepository
	serviceKeyHash string
}

func NewAuthMiddleware(userRepo repository.UserRepository, serviceKeyHash string) *AuthMiddleware {
	return &AuthMiddleware{userRepo: userRepo, serviceKeyHash: serviceKeyHash}
}

// RequireUser admits bearer-token callers only.
func (m *AuthMiddleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := m.authenticateUser(w, r)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUserOrServiceKey admits either a bearer-token user (identity comes
// from the token) or a trusted service-key caller, which must name the target
// user explicitly in its request body. Anything else is a 401.
func (m *AuthMiddleware) RequireUserOrServiceKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if key := r.Header.Get(ServiceKeyHeader); key != "" {
			if m.serviceKeyHash == "" || !util.CheckKeyHash(key, m.serviceKeyHash) {
				log.Warn().Msg("auth middleware: invalid service key attempt")
				writeJSON(w, http.StatusUnauthorized, map[string]string{
					"error": "Invalid service key",
				})
				return
			}
			ctx := context.WithValue(r.Context(), ServiceCallerContextKey, true)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		user, ok := m.authenticateUser(w, r)
		if !ok {
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *AuthMiddleware) authenticateUser(w http.ResponseWriter, r *http.Request) (*model.User, bool) {
	token := extractToken(r)
	if token == "" {
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "Missing authentication token",
		})
		return nil, false
	}

	tokenHash := util.HashToken(token)
	user, err := m.userRepo.FindByTokenHash(r.Context(), tokenHash)
	if err != nil {
		log.Error().Err(err).Msg("auth middleware: database error")
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "Authentication failed",
		})
		return nil, false
	}

	if user == nil {
		log.Warn().Msg("auth middleware: invalid token attempt")
		writeJSON(w, http.StatusUnauthorized, map[string]string{
			"error": "Invalid token",
		})
		return nil, false
	}

	return user, true
}

func extractToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}
