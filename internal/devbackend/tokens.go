package devbackend

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/academy-admin/users"
)

const refreshTokenBytes = 32

// storedRefreshToken is the server side record of an opaque refresh token.
type storedRefreshToken struct {
	Token  string
	UserID string
	Iat    time.Time
}

// tokenManager signs HS256 access tokens and keeps refresh tokens in memory, one per user.
type tokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time

	lock    sync.RWMutex
	tokens  map[string]*storedRefreshToken
	userIDs map[string]string // user ID to token
}

func newTokenManager(secret []byte, accessTTL, refreshTTL time.Duration, now func() time.Time) *tokenManager {
	return &tokenManager{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        now,
		tokens:     make(map[string]*storedRefreshToken),
		userIDs:    make(map[string]string),
	}
}

func (m *tokenManager) CreateAccessToken(user *users.User) (string, error) {
	now := m.now()
	claims := jwtlib.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"iat":  now.Unix(),
		"exp":  now.Add(m.accessTTL).Unix(),
		"jti":  uuid.New().String(),
	}
	signed, err := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, nil
}

// ParseAccessToken verifies the signature and expiry and returns the subject.
func (m *tokenManager) ParseAccessToken(raw string) (string, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims, func(t *jwtlib.Token) (any, error) {
		return m.secret, nil
	}, jwtlib.WithValidMethods([]string{jwtlib.SigningMethodHS256.Alg()}), jwtlib.WithTimeFunc(m.now))
	if err != nil {
		return "", err
	}
	return claims.GetSubject()
}

// CreateRefreshToken replaces any refresh token the user already holds.
func (m *tokenManager) CreateRefreshToken(userID string) (string, error) {
	tokenBytes := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	token := hex.EncodeToString(tokenBytes)

	m.lock.Lock()
	defer m.lock.Unlock()
	if existing, ok := m.userIDs[userID]; ok {
		delete(m.tokens, existing)
	}
	m.tokens[token] = &storedRefreshToken{Token: token, UserID: userID, Iat: m.now()}
	m.userIDs[userID] = token
	return token, nil
}

// LookupRefreshToken returns the owner of a live refresh token. Expired tokens are removed.
func (m *tokenManager) LookupRefreshToken(token string) (string, bool) {
	m.lock.Lock()
	defer m.lock.Unlock()

	rt, ok := m.tokens[token]
	if !ok {
		return "", false
	}
	if m.now().Sub(rt.Iat) > m.refreshTTL {
		delete(m.tokens, token)
		delete(m.userIDs, rt.UserID)
		return "", false
	}
	return rt.UserID, true
}

func (m *tokenManager) RevokeRefreshToken(token string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if rt, ok := m.tokens[token]; ok {
		delete(m.userIDs, rt.UserID)
		delete(m.tokens, token)
	}
}

// RevokeUser drops the refresh token of a user, if any.
func (m *tokenManager) RevokeUser(userID string) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if token, ok := m.userIDs[userID]; ok {
		delete(m.tokens, token)
		delete(m.userIDs, userID)
	}
}
