package client

import (
	"net/http"
	"time"

	"github.com/jrsteele09/academy-admin/internal/config"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout          = 60 * time.Second
	defaultMaxContentLength = 50 * 1024 * 1024
	defaultRefreshPath      = "/auth/refresh-token"
)

type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client, its Timeout is kept unless
// WithTimeout is also given. hc itself is never modified; nil is ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithMaxContentLength bounds request and response bodies.
func WithMaxContentLength(n int64) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxContentLength = n
		}
	}
}

func WithRefreshPath(path string) Option {
	return func(c *Client) {
		if path != "" {
			c.refreshPath = path
		}
	}
}

func WithForbiddenPolicy(p ForbiddenPolicy) Option {
	return func(c *Client) {
		c.forbidden = p
	}
}

// WithRateLimit spaces outbound requests, refreshes included. perSecond <= 0 disables it.
func WithRateLimit(perSecond float64, burst int) Option {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithRequestIDs overrides how request ids are generated.
func WithRequestIDs(next func() string) Option {
	return func(c *Client) {
		if next != nil {
			c.newRequestID = next
		}
	}
}

// OptionsFromConfig turns the client configuration into options.
func OptionsFromConfig(cfg config.ClientConfig) []Option {
	policy := DefaultForbiddenPolicy()
	policy.LegacyMessageMatch = cfg.GetLegacyPermissionMatch()

	opts := []Option{
		WithTimeout(cfg.GetRequestTimeout()),
		WithMaxContentLength(cfg.GetMaxContentLength()),
		WithRefreshPath(cfg.GetRefreshPath()),
		WithForbiddenPolicy(policy),
	}
	if rps := cfg.GetRateLimit(); rps > 0 {
		opts = append(opts, WithRateLimit(rps, int(rps)+1))
	}
	return opts
}
