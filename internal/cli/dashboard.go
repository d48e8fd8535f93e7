package cli

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/resources"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// dashboardSources are fetched concurrently, keyed by their name in the output.
var dashboardSources = map[string]func(ctx context.Context, res *resources.Services) (*client.Response, error){
	"users": func(ctx context.Context, res *resources.Services) (*client.Response, error) {
		return res.Users.Stats(ctx)
	},
	"subscriptions": func(ctx context.Context, res *resources.Services) (*client.Response, error) {
		return res.Subscriptions.Stats(ctx)
	},
	"activities": func(ctx context.Context, res *resources.Services) (*client.Response, error) {
		return res.Activities.Stats(ctx, nil)
	},
	"unreadNotifications": func(ctx context.Context, res *resources.Services) (*client.Response, error) {
		return res.Notifications.UnreadCount(ctx)
	},
	"tournaments": func(ctx context.Context, res *resources.Services) (*client.Response, error) {
		return res.Tournaments.List(ctx, nil)
	},
}

func (a *App) dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the academy statistics at a glance",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.requireSession(); err != nil {
				return err
			}
			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			stats, err := a.dashboard(ctx)
			if err != nil {
				return explain(err)
			}
			return newPrinter(cmd.OutOrStdout(), a.output).Print(stats)
		},
	}
}

// dashboard fails as a whole when any source fails; the first error cancels the rest.
func (a *App) dashboard(ctx context.Context) (map[string]json.RawMessage, error) {
	var (
		mu  sync.Mutex
		out = make(map[string]json.RawMessage, len(dashboardSources))
	)
	g, ctx := errgroup.WithContext(ctx)
	for name, fetch := range dashboardSources {
		g.Go(func() error {
			resp, err := fetch(ctx, a.res)
			if err != nil {
				return err
			}
			var data json.RawMessage
			if err := resp.DecodeData(&data); err != nil {
				return err
			}
			mu.Lock()
			out[name] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
