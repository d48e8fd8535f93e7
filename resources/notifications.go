package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/internal/validation"
)

type Notifications struct {
	col Collection
}

func NewNotifications(api API) *Notifications {
	return &Notifications{col: NewCollection(api, notificationsPath)}
}

func (n *Notifications) List(ctx context.Context, params url.Values) (*client.Response, error) {
	return n.col.List(ctx, params)
}

func (n *Notifications) Get(ctx context.Context, id string) (*client.Response, error) {
	return n.col.Get(ctx, id)
}

func (n *Notifications) Delete(ctx context.Context, id string) (*client.Response, error) {
	return n.col.Delete(ctx, id)
}

func (n *Notifications) MarkRead(ctx context.Context, id string) (*client.Response, error) {
	return n.col.do(ctx, http.MethodPatch, id, nil, "read")
}

func (n *Notifications) MarkAllRead(ctx context.Context) (*client.Response, error) {
	return n.col.api.Do(ctx, &client.Request{Method: http.MethodPatch, Path: joinPath(notificationsPath, "mark-all-read")})
}

func (n *Notifications) DeleteRead(ctx context.Context) (*client.Response, error) {
	return n.col.api.Do(ctx, &client.Request{Method: http.MethodDelete, Path: joinPath(notificationsPath, "delete-read")})
}

func (n *Notifications) UnreadCount(ctx context.Context) (*client.Response, error) {
	return n.col.query(ctx, nil, "unread-count")
}

// CreateSystem broadcasts a system notification. RecipientType defaults to all.
func (n *Notifications) CreateSystem(ctx context.Context, in NotificationInput) (*client.Response, error) {
	if in.RecipientType == "" {
		in.RecipientType = RecipientsAll
	}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return n.col.api.Do(ctx, &client.Request{Method: http.MethodPost, Path: joinPath(notificationsPath, "system"), Body: in})
}
