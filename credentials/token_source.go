package credentials

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

// ErrNoAccessToken is returned by the token source when nothing is stored.
var ErrNoAccessToken = errors.New("no access token stored")

type storeTokenSource struct {
	store Store
}

// NewTokenSource exposes the stored access token as an oauth2.TokenSource. The token is
// read from the store on every call so a refreshed token is picked up immediately.
func NewTokenSource(store Store) oauth2.TokenSource {
	return storeTokenSource{store: store}
}

func (s storeTokenSource) Token() (*oauth2.Token, error) {
	access, ok := s.store.Get(KeyAccessToken)
	if !ok || access == "" {
		return nil, ErrNoAccessToken
	}

	tok := &oauth2.Token{AccessToken: access, TokenType: "Bearer"}
	tok.RefreshToken, _ = s.store.Get(KeyRefreshToken)
	if claims, err := InspectAccessToken(access); err == nil {
		tok.Expiry = claims.ExpiresAt
	}
	return tok, nil
}

// TokenClaims are the informational claims of a JWT access token.
type TokenClaims struct {
	Subject   string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token carries an expiry that lies before now.
func (c TokenClaims) Expired(now time.Time) bool {
	return !c.ExpiresAt.IsZero() && now.After(c.ExpiresAt)
}

// InspectAccessToken reads the claims of a JWT access token without verifying it.
// The result is only used for display; opaque tokens return an error.
func InspectAccessToken(raw string) (*TokenClaims, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, errors.Wrap(err, "[InspectAccessToken] parse")
	}

	var out TokenClaims
	out.Subject, _ = claims.GetSubject()
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		out.ExpiresAt = exp.Time
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		out.IssuedAt = iat.Time
	}
	if role, ok := claims["role"].(string); ok {
		out.Role = role
	}
	return &out, nil
}
