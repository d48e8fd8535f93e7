package errors

import (
	"errors"
)

// Common error types for the academy admin client
var (
	// Authentication errors
	ErrNotAdmin              = errors.New("user is not an admin")
	ErrAuthenticationNeeded  = errors.New("authentication required")
	ErrRefreshTokenMissing   = errors.New("refresh token missing")
	ErrRefreshFailed         = errors.New("token refresh failed")
	ErrSessionEnded          = errors.New("session ended")
	ErrAlreadyAuthenticated  = errors.New("already authenticated")
	ErrRequestPayloadTooBig  = errors.New("request payload exceeds the configured limit")
	ErrResponsePayloadTooBig = errors.New("response payload exceeds the configured limit")

	// Credential store errors
	ErrCredentialsCorrupted = errors.New("stored credentials are unreadable")
	ErrPassphraseRequired   = errors.New("credentials file is encrypted, passphrase required")
	ErrInvalidPassphrase    = errors.New("invalid credentials passphrase")

	// Input errors
	ErrInvalidInput = errors.New("invalid input")
	ErrMissingID    = errors.New("id is required")
	ErrInvalidImage = errors.New("invalid image")
)
