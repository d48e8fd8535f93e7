package client

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

var (
	ErrRefreshTokenMissing = apperrors.ErrRefreshTokenMissing
	ErrRefreshFailed       = apperrors.ErrRefreshFailed
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type refreshResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

// refresh exchanges refreshToken for a new access token and stores it. Concurrent
// callers holding the same refresh token share one backend call.
func (c *Client) refresh(ctx context.Context, logger zerolog.Logger, refreshToken string) error {
	ch := c.refreshes.DoChan(refreshToken, func() (any, error) {
		// Detached so that one caller giving up does not fail the others.
		return nil, c.callRefresh(context.WithoutCancel(ctx), logger, refreshToken)
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) callRefresh(ctx context.Context, logger zerolog.Logger, refreshToken string) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return errors.Wrap(ErrRefreshFailed, err.Error())
		}
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return errors.Wrap(err, "[Client.callRefresh] marshal")
	}
	// Sent without the interception of Do so a rejected refresh cannot recurse.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.refreshPath, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "[Client.callRefresh] build request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.exchange(req)
	if err != nil {
		return errors.Wrap(ErrRefreshFailed, err.Error())
	}
	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := newAPIError(resp, "")
		logger.Info().Int("status", resp.StatusCode).Str("message", apiErr.Message).Msg("refresh rejected")
		return errors.Wrap(ErrRefreshFailed, apiErr.Error())
	}

	var result refreshResult
	if err := resp.DecodeData(&result); err != nil {
		return errors.Wrap(ErrRefreshFailed, err.Error())
	}
	if result.AccessToken == "" {
		return errors.Wrap(ErrRefreshFailed, "no access token in refresh response")
	}

	if err := c.store.Set(credentials.KeyAccessToken, result.AccessToken); err != nil {
		return errors.Wrap(err, "[Client.callRefresh] store access token")
	}
	if result.RefreshToken != "" && result.RefreshToken != refreshToken {
		if err := c.store.Set(credentials.KeyRefreshToken, result.RefreshToken); err != nil {
			return errors.Wrap(err, "[Client.callRefresh] store refresh token")
		}
	}
	logger.Info().Msg("access token refreshed")
	return nil
}
