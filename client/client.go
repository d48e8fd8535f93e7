package client

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/academy-admin/credentials"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Client is the authenticated access layer in front of the academy backend. It attaches
// the stored access token to every request, refreshes it once on a 401 and ends the
// session when the refresh cannot help.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	timeout          time.Duration
	store            credentials.Store
	tokens           oauth2.TokenSource
	refreshPath      string
	maxContentLength int64
	forbidden        ForbiddenPolicy
	limiter          *rate.Limiter
	newRequestID     func() string

	refreshes singleflight.Group

	listenersM sync.RWMutex
	listeners  map[int]func(error)
	nextID     int
}

// New creates a client for the backend at baseURL (e.g. http://localhost:5000/api/v1).
func New(baseURL string, store credentials.Store, opts ...Option) *Client {
	c := &Client{
		baseURL:          strings.TrimRight(baseURL, "/"),
		store:            store,
		tokens:           credentials.NewTokenSource(store),
		refreshPath:      defaultRefreshPath,
		maxContentLength: defaultMaxContentLength,
		forbidden:        DefaultForbiddenPolicy(),
		newRequestID:     uuid.NewString,
		listeners:        make(map[int]func(error)),
	}
	for _, opt := range opts {
		opt(c)
	}
	switch {
	case c.httpClient == nil:
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		c.httpClient = &http.Client{Timeout: timeout}
	case c.timeout > 0:
		// The caller's client may be shared, the timeout goes on a copy.
		hc := *c.httpClient
		hc.Timeout = c.timeout
		c.httpClient = &hc
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Store() credentials.Store {
	return c.store
}

// OnSessionEnded registers fn to be called, with the cause, whenever the access layer
// ends the session. The returned func removes the listener.
func (c *Client) OnSessionEnded(fn func(cause error)) func() {
	c.listenersM.Lock()
	defer c.listenersM.Unlock()

	id := c.nextID
	c.nextID++
	c.listeners[id] = fn
	return func() {
		c.listenersM.Lock()
		defer c.listenersM.Unlock()
		delete(c.listeners, id)
	}
}

func (c *Client) Get(ctx context.Context, path string, params map[string][]string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Params: params})
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPatch, Path: path, Body: body})
}

func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// Do sends r. A 401 is answered with at most one refresh and one replay; a second 401,
// a missing refresh token, a failed refresh or a permission 403 clear the credential
// set and return an error matching ErrSessionEnded. Everything else is returned as is.
func (c *Client) Do(ctx context.Context, r *Request) (*Response, error) {
	body, err := r.encodeBody()
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > c.maxContentLength {
		return nil, errors.Wrapf(ErrRequestTooLarge, "%d bytes, limit %d", len(body), c.maxContentLength)
	}

	requestID := c.newRequestID()
	logger := log.With().
		Str("request_id", requestID).
		Str("method", r.Method).
		Str("path", r.Path).
		Logger()

	for attempt := 0; ; attempt++ {
		resp, sentToken, err := c.send(ctx, r, body, requestID)
		if err != nil {
			logger.Debug().Err(err).Int("attempt", attempt).Msg("request failed")
			return nil, err
		}
		logger.Debug().Int("attempt", attempt).Int("status", resp.StatusCode).Msg("request completed")

		if resp.StatusCode < http.StatusBadRequest {
			return resp, nil
		}
		apiErr := newAPIError(resp, requestID)
		if r.Anonymous {
			return nil, apiErr
		}

		switch resp.StatusCode {
		case http.StatusUnauthorized:
			if attempt > 0 {
				return nil, c.endSession(logger, apiErr)
			}
			if err := c.renewAccessToken(ctx, logger, sentToken); err != nil {
				if ctx.Err() != nil {
					return nil, newNetworkError(ctx.Err())
				}
				return nil, c.endSession(logger, err)
			}
			continue

		case http.StatusForbidden:
			if c.forbidden.EndsSession(apiErr) {
				return nil, c.endSession(logger, apiErr)
			}
		}
		return nil, apiErr
	}
}

// renewAccessToken makes a fresh access token available for the replay. When another
// request already replaced the token that was rejected, no refresh call is made.
func (c *Client) renewAccessToken(ctx context.Context, logger zerolog.Logger, rejected string) error {
	if current, ok := c.store.Get(credentials.KeyAccessToken); ok && current != "" && current != rejected {
		logger.Debug().Msg("access token already renewed, replaying")
		return nil
	}

	refreshToken, ok := c.store.Get(credentials.KeyRefreshToken)
	if !ok || refreshToken == "" {
		return ErrRefreshTokenMissing
	}
	return c.refresh(ctx, logger, refreshToken)
}

func (c *Client) endSession(logger zerolog.Logger, cause error) error {
	if err := c.store.ClearSession(); err != nil {
		logger.Err(err).Msg("unable to clear credentials")
	}
	logger.Warn().Err(cause).Msg("session ended")

	c.listenersM.RLock()
	listeners := make([]func(error), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersM.RUnlock()

	for _, fn := range listeners {
		fn(cause)
	}
	return &SessionEndedError{Cause: cause}
}

// send performs a single HTTP exchange and returns the access token it carried.
func (c *Client) send(ctx context.Context, r *Request, body []byte, requestID string) (*Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", newNetworkError(err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, r.url(c.baseURL), bytes.NewReader(body))
	if err != nil {
		return nil, "", errors.Wrap(err, "[Client.send] build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var sentToken string
	if !r.Anonymous {
		if tok, err := c.tokens.Token(); err == nil {
			tok.SetAuthHeader(req)
			sentToken = tok.AccessToken
		}
	}

	resp, err := c.exchange(req)
	return resp, sentToken, err
}

func (c *Client) exchange(req *http.Request) (*Response, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, newNetworkError(err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, c.maxContentLength+1))
	if err != nil {
		return nil, newNetworkError(err)
	}
	if int64(len(data)) > c.maxContentLength {
		return nil, errors.Wrapf(ErrResponseTooLarge, "limit %d", c.maxContentLength)
	}

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}
