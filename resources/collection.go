package resources

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/academy-admin/client"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
)

// API is the part of the access layer the facades need.
type API interface {
	Do(ctx context.Context, r *client.Request) (*client.Response, error)
}

// Collection is the REST shape shared by most resources:
// GET /path, GET /path/:id, POST /path, PATCH /path/:id, DELETE /path/:id.
type Collection struct {
	api  API
	path string
}

func NewCollection(api API, path string) Collection {
	return Collection{api: api, path: path}
}

func (c Collection) Path() string {
	return c.path
}

func (c Collection) List(ctx context.Context, params url.Values) (*client.Response, error) {
	return c.api.Do(ctx, &client.Request{Method: http.MethodGet, Path: c.path, Params: params})
}

func (c Collection) Get(ctx context.Context, id string) (*client.Response, error) {
	p, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}
	return c.api.Do(ctx, &client.Request{Method: http.MethodGet, Path: p})
}

func (c Collection) Create(ctx context.Context, body any) (*client.Response, error) {
	return c.api.Do(ctx, &client.Request{Method: http.MethodPost, Path: c.path, Body: body})
}

// Update sends a partial update.
func (c Collection) Update(ctx context.Context, id string, body any) (*client.Response, error) {
	p, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}
	return c.api.Do(ctx, &client.Request{Method: http.MethodPatch, Path: p, Body: body})
}

func (c Collection) Delete(ctx context.Context, id string) (*client.Response, error) {
	p, err := c.itemPath(id)
	if err != nil {
		return nil, err
	}
	return c.api.Do(ctx, &client.Request{Method: http.MethodDelete, Path: p})
}

// do sends method to the item sub path, e.g. do(ctx, PATCH, id, nil, "approve").
func (c Collection) do(ctx context.Context, method, id string, body any, sub ...string) (*client.Response, error) {
	p, err := c.itemPath(id, sub...)
	if err != nil {
		return nil, err
	}
	return c.api.Do(ctx, &client.Request{Method: method, Path: p, Body: body})
}

func (c Collection) query(ctx context.Context, params url.Values, sub ...string) (*client.Response, error) {
	return c.api.Do(ctx, &client.Request{Method: http.MethodGet, Path: joinPath(c.path, sub...), Params: params})
}

func (c Collection) itemPath(id string, sub ...string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", errors.Wrapf(apperrors.ErrMissingID, "[%s]", c.path)
	}
	return joinPath(c.path+"/"+url.PathEscape(id), sub...), nil
}

func joinPath(base string, sub ...string) string {
	for _, s := range sub {
		base += "/" + s
	}
	return base
}
