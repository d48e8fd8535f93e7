package credentials_test

import (
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/academy-admin/credentials"
	"github.com/stretchr/testify/require"
)

func TestTokenSourceReadsStoreOnEveryCall(t *testing.T) {
	s := credentials.NewInMemoryStore()
	ts := credentials.NewTokenSource(s)

	_, err := ts.Token()
	require.ErrorIs(t, err, credentials.ErrNoAccessToken)

	require.NoError(t, s.Set(credentials.KeyAccessToken, "opaque-1"))
	tok, err := ts.Token()
	require.NoError(t, err)

	req, _ := http.NewRequest(http.MethodGet, "http://backend.test", nil)
	tok.SetAuthHeader(req)
	require.Equal(t, "Bearer opaque-1", req.Header.Get("Authorization"))

	require.NoError(t, s.Set(credentials.KeyAccessToken, "opaque-2"))
	tok, err = ts.Token()
	require.NoError(t, err)
	require.Equal(t, "opaque-2", tok.AccessToken)
	require.True(t, tok.Expiry.IsZero())
}

func TestInspectAccessToken(t *testing.T) {
	exp := time.Now().Add(15 * time.Minute).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  "u1",
		"role": "admin",
		"exp":  exp.Unix(),
		"iat":  time.Now().Unix(),
	}).SignedString([]byte("any-secret"))
	require.NoError(t, err)

	claims, err := credentials.InspectAccessToken(signed)
	require.NoError(t, err)
	require.Equal(t, "u1", claims.Subject)
	require.Equal(t, "admin", claims.Role)
	require.True(t, claims.ExpiresAt.Equal(exp))
	require.False(t, claims.Expired(time.Now()))
	require.True(t, claims.Expired(exp.Add(time.Second)))

	_, err = credentials.InspectAccessToken("opaque-token")
	require.Error(t, err)

	s := credentials.NewInMemoryStore()
	require.NoError(t, s.Set(credentials.KeyAccessToken, signed))
	tok, err := credentials.NewTokenSource(s).Token()
	require.NoError(t, err)
	require.True(t, tok.Expiry.Equal(exp))
}
