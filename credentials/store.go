package credentials

import (
	"encoding/json"
	"strings"

	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/pkg/errors"
)

// Persisted keys. They match the keys the browser client kept in local storage so a
// credential file can be populated from an exported browser session.
const (
	KeyAccessToken  = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// SessionKeys are the keys that together form a Credential Set.
var SessionKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// IsSessionKey reports whether key is part of the Credential Set.
func IsSessionKey(key string) bool {
	for _, k := range SessionKeys {
		if k == key {
			return true
		}
	}
	return false
}

// ChangeEvent is emitted for every write or removal of a key.
type ChangeEvent struct {
	Key      string
	Value    string // New value, empty when Removed
	Removed  bool
	External bool // Change was made by another process sharing the same storage
}

// Store is the durable key-value storage behind the Credential Set.
// Get never fails; writers replace whole values.
type Store interface {
	// Get returns the stored value and whether it exists
	Get(key string) (string, bool)

	// Set overwrites key and notifies subscribers
	Set(key, value string) error

	// Remove deletes key, removing a missing key is not an error
	Remove(key string) error

	// SetSession writes the access token, refresh token and profile as one step
	SetSession(set CredentialSet) error

	// ClearSession removes the access token, refresh token and profile
	ClearSession() error

	// Subscribe returns a channel of change events and a func to stop receiving them
	Subscribe() (<-chan ChangeEvent, func())
}

// CredentialSet is the tuple (access token, refresh token, profile) defining a session.
type CredentialSet struct {
	AccessToken  string
	RefreshToken string
	User         *users.User
}

// Complete reports whether every member of the set is present.
func (s CredentialSet) Complete() bool {
	return strings.TrimSpace(s.AccessToken) != "" &&
		strings.TrimSpace(s.RefreshToken) != "" &&
		s.User != nil
}

// LoadSession reads whatever part of the Credential Set is stored. An unreadable
// profile is reported as ErrCredentialsCorrupted alongside the tokens that were read.
func LoadSession(store Store) (CredentialSet, error) {
	var set CredentialSet
	set.AccessToken, _ = store.Get(KeyAccessToken)
	set.RefreshToken, _ = store.Get(KeyRefreshToken)

	raw, ok := store.Get(KeyUser)
	if !ok || strings.TrimSpace(raw) == "" {
		return set, nil
	}
	var u users.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return set, errors.Wrap(apperrors.ErrCredentialsCorrupted, err.Error())
	}
	set.User = &u
	return set, nil
}

// encodeSession converts a complete set to the values written under SessionKeys.
func encodeSession(set CredentialSet) (map[string]string, error) {
	if !set.Complete() {
		return nil, errors.Wrap(apperrors.ErrInvalidInput, "[credentials.encodeSession] incomplete credential set")
	}
	profile, err := json.Marshal(set.User)
	if err != nil {
		return nil, errors.Wrap(err, "[credentials.encodeSession] marshal user")
	}
	return map[string]string{
		KeyAccessToken:  set.AccessToken,
		KeyRefreshToken: set.RefreshToken,
		KeyUser:         string(profile),
	}, nil
}
