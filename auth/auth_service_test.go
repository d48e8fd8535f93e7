package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/academy-admin/auth"
	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "admin@academy.test"
	testPassword = "Str0ngPass"
)

type testFixture struct {
	store   *credentials.InMemoryStore
	service *auth.Service
	calls   map[string]int
	auth    map[string]string
}

func newFixture(t *testing.T, role string) *testFixture {
	t.Helper()
	f := &testFixture{
		store: credentials.NewInMemoryStore(),
		calls: map[string]int{},
		auth:  map[string]string{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		f.calls["login"]++
		f.auth["login"] = r.Header.Get("Authorization")
		var body auth.LoginRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body.Email != testEmail || body.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Invalid email or password"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"user":         map[string]string{"_id": "u1", "name": "Ana", "email": testEmail, "role": role},
			"accessToken":  "access-1",
			"refreshToken": "refresh-1",
		}})
	})
	mux.HandleFunc("POST /auth/refresh-token", func(w http.ResponseWriter, r *http.Request) {
		f.calls["refresh"]++
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]string{"accessToken": "access-2"}})
	})
	mux.HandleFunc("GET /users/me", func(w http.ResponseWriter, r *http.Request) {
		f.calls["me"]++
		if r.Header.Get("Authorization") != "Bearer access-1" {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Not authenticated"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": map[string]any{
			"user": map[string]string{"_id": "u1", "email": testEmail, "role": role},
		}})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	f.service = auth.NewService(client.New(srv.URL, f.store))
	return f
}

func TestLogin(t *testing.T) {
	t.Run("returns the credential set without persisting it", func(t *testing.T) {
		f := newFixture(t, "admin")
		resp, err := f.service.Login(context.Background(), "  "+testEmail+" ", testPassword)
		require.NoError(t, err)
		require.Equal(t, "access-1", resp.AccessToken)
		require.Equal(t, "refresh-1", resp.RefreshToken)
		require.Equal(t, "u1", resp.User.ID)
		require.True(t, resp.User.IsAdmin())
		require.Empty(t, f.auth["login"])

		_, ok := f.store.Get(credentials.KeyAccessToken)
		require.False(t, ok)
	})

	t.Run("bad credentials are an authentication error", func(t *testing.T) {
		f := newFixture(t, "admin")
		require.NoError(t, f.store.Set(credentials.KeyAccessToken, "old"))
		require.NoError(t, f.store.Set(credentials.KeyRefreshToken, "old-refresh"))

		_, err := f.service.Login(context.Background(), testEmail, "wrong")
		require.Equal(t, client.KindAuthentication, client.Classify(err))
		require.NotErrorIs(t, err, client.ErrSessionEnded)
		require.Zero(t, f.calls["refresh"])

		_, ok := f.store.Get(credentials.KeyAccessToken)
		require.True(t, ok)
	})

	t.Run("input is validated locally", func(t *testing.T) {
		f := newFixture(t, "admin")
		_, err := f.service.Login(context.Background(), "", testPassword)
		require.ErrorIs(t, err, auth.ErrMissingCredentials)
		_, err = f.service.Login(context.Background(), testEmail, "")
		require.ErrorIs(t, err, auth.ErrMissingCredentials)
		_, err = f.service.Login(context.Background(), "not-an-email", testPassword)
		require.ErrorIs(t, err, auth.ErrInvalidEmail)
		require.Zero(t, f.calls["login"])
	})
}

func TestRefresh(t *testing.T) {
	f := newFixture(t, "admin")
	resp, err := f.service.Refresh(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-2", resp.AccessToken)

	_, err = f.service.Refresh(context.Background(), "")
	require.ErrorIs(t, err, client.ErrRefreshTokenMissing)
	require.Equal(t, 1, f.calls["refresh"])
}

func TestCurrentUser(t *testing.T) {
	f := newFixture(t, "coach")
	require.NoError(t, f.store.Set(credentials.KeyAccessToken, "access-1"))

	u, err := f.service.CurrentUser(context.Background())
	require.NoError(t, err)
	require.Equal(t, "u1", u.ID)
	require.False(t, u.IsAdmin())
}
