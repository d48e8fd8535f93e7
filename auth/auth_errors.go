package auth

import "errors"

var (
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrUnexpectedResponse = errors.New("unexpected response from the auth endpoint")
	ErrNoAccessToken      = errors.New("login response carried no access token")
	ErrNoRefreshToken     = errors.New("login response carried no refresh token")
	ErrNoUser             = errors.New("response carried no user")
)
