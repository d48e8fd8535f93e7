package devbackend

import (
	"crypto/rand"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/jrsteele09/academy-admin/users"
	"github.com/rs/zerolog/log"
)

const (
	defaultAccessTokenTTL  = 15 * time.Minute
	defaultRefreshTokenTTL = 7 * 24 * time.Hour
)

// Server is an in-memory academy backend for local development and integration tests.
type Server struct {
	env    string
	mux    *http.ServeMux
	routes []string

	users  users.UserRepo
	tokens *tokenManager
	now    func() time.Time

	secret              []byte
	accessTTL           time.Duration
	refreshTTL          time.Duration
	rotateRefreshTokens bool
	adminRole           users.RoleType

	items map[string]*collection // fixed at construction

	logins    atomic.Int64
	refreshes atomic.Int64
}

type Option func(*Server)

// WithEnv enables request logging in DEV.
func WithEnv(env string) Option {
	return func(s *Server) { s.env = env }
}

func WithSecret(secret []byte) Option {
	return func(s *Server) { s.secret = secret }
}

func WithAccessTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.accessTTL = d }
}

func WithRefreshTokenTTL(d time.Duration) Option {
	return func(s *Server) { s.refreshTTL = d }
}

// WithRefreshTokenRotation makes the refresh endpoint issue a new refresh token each time.
func WithRefreshTokenRotation() Option {
	return func(s *Server) { s.rotateRefreshTokens = true }
}

// WithClock replaces time.Now for token issue and expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

func New(userRepo users.UserRepo, opts ...Option) (*Server, error) {
	s := &Server{
		env:        "TEST",
		mux:        http.NewServeMux(),
		users:      userRepo,
		now:        time.Now,
		accessTTL:  defaultAccessTokenTTL,
		refreshTTL: defaultRefreshTokenTTL,
		adminRole:  users.RoleAdmin,
		items:      make(map[string]*collection),
	}
	for _, opt := range opts {
		opt(s)
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := rand.Read(s.secret); err != nil {
			return nil, fmt.Errorf("[devbackend New] failed to generate signing secret: %w", err)
		}
	}
	s.tokens = newTokenManager(s.secret, s.accessTTL, s.refreshTTL, s.now)
	for name := range collections {
		s.items[name] = newCollection(s.now)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler http.HandlerFunc) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Logins and Refreshes count successful calls, for tests.
func (s *Server) Logins() int64 {
	return s.logins.Load()
}

func (s *Server) Refreshes() int64 {
	return s.refreshes.Load()
}

// RevokeSessions drops every refresh token of the user, the next refresh fails.
func (s *Server) RevokeSessions(userID string) {
	s.tokens.RevokeUser(userID)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		method, path, found := strings.Cut(route, " ")
		if !found {
			method, path = "", route
		}
		log.Debug().Str("method", method).Str("path", path).Msg("route registered")
	}
}
