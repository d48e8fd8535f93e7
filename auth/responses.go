package auth

import "github.com/jrsteele09/academy-admin/users"

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the data of a successful POST /auth/login.
type LoginResponse struct {
	// User is the authenticated profile. Only role "admin" may open an admin session.
	User *users.User `json:"user"`

	// AccessToken is sent as "Authorization: Bearer <accessToken>" on every request.
	// Short-lived, replaced through the refresh endpoint.
	AccessToken string `json:"accessToken"`

	// RefreshToken is only ever sent to POST /auth/refresh-token.
	RefreshToken string `json:"refreshToken"`
}

// RefreshResponse is the data of a successful POST /auth/refresh-token.
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	// RefreshToken is set when the backend rotates refresh tokens.
	RefreshToken string `json:"refreshToken,omitempty"`
}

// CurrentUserResponse is the data of GET /users/me.
type CurrentUserResponse struct {
	User *users.User `json:"user"`
}
