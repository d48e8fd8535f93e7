package devbackend

import (
	"context"
	"net/http"
	"strings"

	"github.com/jrsteele09/academy-admin/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

// ContextKeyUser stores the authenticated *users.User
const ContextKeyUser ContextKey = "user"

const msgPermissionDenied = "You do not have permission to access this resource"

func ChainMiddleware(routeFunction http.HandlerFunc, mw ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	chainedHandler := routeFunction
	// Apply middleware in reverse order
	for i := len(mw) - 1; i >= 0; i-- {
		chainedHandler = mw[i](chainedHandler)
	}
	return chainedHandler
}

func (s *Server) LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.env != "DEV" {
			next(w, r)
			return
		}
		log.Info().
			Str("method", colourMethod(r.Method)).
			Str("path", r.URL.Path).
			Str("request_id", r.Header.Get("X-Request-ID")).
			Msg("request")
		next(w, r)
	}
}

func (s *Server) RecoverMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panicked")
				writeError(w, http.StatusInternalServerError, "Internal server error", "")
			}
		}()
		next(w, r)
	}
}

// RequireAuth validates the bearer access token and loads its user.
func (s *Server) RequireAuth() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			scheme, token, found := strings.Cut(r.Header.Get("Authorization"), " ")
			if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
				writeError(w, http.StatusUnauthorized, "Not authorized, no token", "")
				return
			}

			userID, err := s.tokens.ParseAccessToken(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Not authorized, token failed", "")
				return
			}
			user, err := s.users.GetByID(userID)
			if err != nil || user == nil {
				writeError(w, http.StatusUnauthorized, "Not authorized, user not found", "")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next(w, r.WithContext(ctx))
		}
	}
}

// RequireAdmin must be chained after RequireAuth.
func (s *Server) RequireAdmin() func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user := userFromContext(r.Context())
			if user == nil || user.Role != s.adminRole {
				writeError(w, http.StatusForbidden, msgPermissionDenied, CodePermissionDenied)
				return
			}
			next(w, r)
		}
	}
}

func userFromContext(ctx context.Context) *users.User {
	u, _ := ctx.Value(ContextKeyUser).(*users.User)
	return u
}
