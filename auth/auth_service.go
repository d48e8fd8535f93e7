package auth

import (
	"context"
	"net/http"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/pkg/errors"
)

const (
	loginPath       = "/auth/login"
	refreshPath     = "/auth/refresh-token"
	currentUserPath = "/users/me"
)

// API is the part of the access layer the auth service needs.
type API interface {
	Do(ctx context.Context, r *client.Request) (*client.Response, error)
}

// Service wraps the backend auth endpoints. It never touches the credential store,
// persisting a session is the session controller's job.
type Service struct {
	api       API
	validator *Validator
}

func NewService(api API) *Service {
	return &Service{api: api, validator: NewValidator()}
}

// Login exchanges email and password for a credential set. The request is anonymous so
// a 401 for bad credentials is returned as is and never touches the stored session.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	req := LoginRequest{Email: email, Password: password}
	if err := s.validator.ValidateLogin(&req); err != nil {
		return nil, err
	}

	resp, err := s.api.Do(ctx, &client.Request{
		Method:    http.MethodPost,
		Path:      loginPath,
		Body:      req,
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	var out LoginResponse
	if err := resp.DecodeData(&out); err != nil {
		return nil, errors.Wrap(ErrUnexpectedResponse, err.Error())
	}
	switch {
	case out.User == nil:
		return nil, ErrNoUser
	case out.AccessToken == "":
		return nil, ErrNoAccessToken
	case out.RefreshToken == "":
		return nil, ErrNoRefreshToken
	}
	return &out, nil
}

// Refresh exchanges a refresh token for a new access token without touching the store.
// The access layer refreshes on its own, this is for explicit renewal.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	if refreshToken == "" {
		return nil, client.ErrRefreshTokenMissing
	}
	resp, err := s.api.Do(ctx, &client.Request{
		Method:    http.MethodPost,
		Path:      refreshPath,
		Body:      map[string]string{"refreshToken": refreshToken},
		Anonymous: true,
	})
	if err != nil {
		return nil, err
	}

	var out RefreshResponse
	if err := resp.DecodeData(&out); err != nil {
		return nil, errors.Wrap(ErrUnexpectedResponse, err.Error())
	}
	if out.AccessToken == "" {
		return nil, ErrNoAccessToken
	}
	return &out, nil
}

// CurrentUser fetches the profile the stored access token belongs to.
func (s *Service) CurrentUser(ctx context.Context) (*users.User, error) {
	resp, err := s.api.Do(ctx, &client.Request{Method: http.MethodGet, Path: currentUserPath})
	if err != nil {
		return nil, err
	}

	var out CurrentUserResponse
	if err := resp.DecodeData(&out); err != nil {
		return nil, errors.Wrap(ErrUnexpectedResponse, err.Error())
	}
	if out.User == nil {
		return nil, ErrNoUser
	}
	return out.User, nil
}
