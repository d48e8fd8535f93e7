package cli

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/academy-admin/internal/devbackend"
	fakeuserrepo "github.com/jrsteele09/academy-admin/users/repofake"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *App) devserverCmd() *cobra.Command {
	var (
		addr      string
		accessTTL time.Duration
		rotate    bool
		noSamples bool
	)
	cmd := &cobra.Command{
		Use:   "devserver",
		Short: "Run an in-memory academy backend for local development",
		Long: `devserver serves the academy API from memory under the path of ACADEMY_API_URL.
Seeded logins: admin@academy.local / Admin1234, coach@academy.local / Coach1234,
student@academy.local / Student1234.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			displayAppname(cmd.OutOrStdout(), a.cfg.GetAppName())

			handler, err := a.devHandler(accessTTL, rotate, !noSamples)
			if err != nil {
				return err
			}
			if addr == "" {
				addr = a.cfg.GetDevServerPort()
			}
			server := &http.Server{Addr: addr, Handler: handler, ReadHeaderTimeout: 10 * time.Second}

			ctx, cancel := signalContext(cmd.Context())
			defer cancel()

			errs := make(chan error, 1)
			go func() { errs <- listenAndServe(server) }()

			select {
			case err := <-errs:
				return err
			case <-ctx.Done():
			}
			return shutdown(server)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default DEVSERVER_PORT)")
	cmd.Flags().DurationVar(&accessTTL, "access-ttl", 15*time.Minute, "Access token lifetime")
	cmd.Flags().BoolVar(&rotate, "rotate-refresh", false, "Issue a new refresh token on every refresh")
	cmd.Flags().BoolVar(&noSamples, "empty", false, "Do not seed sample categories and tournaments")
	return cmd
}

// devHandler mounts the backend under the path of the configured API URL, e.g. /api/v1.
func (a *App) devHandler(accessTTL time.Duration, rotate, samples bool) (http.Handler, error) {
	repo := fakeuserrepo.NewFakeUserRepo()
	if _, err := devbackend.Seed(repo, devbackend.DefaultAccounts...); err != nil {
		return nil, err
	}

	opts := []devbackend.Option{devbackend.WithEnv(a.cfg.GetEnv()), devbackend.WithAccessTokenTTL(accessTTL)}
	if rotate {
		opts = append(opts, devbackend.WithRefreshTokenRotation())
	}
	backend, err := devbackend.New(repo, opts...)
	if err != nil {
		return nil, err
	}
	if samples {
		backend.SeedSamples()
	}

	base := a.apiURL
	if base == "" {
		base = a.cfg.GetAPIURL()
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, errors.Wrap(err, "[devHandler] parse api url")
	}
	prefix := strings.TrimSuffix(u.Path, "/")
	if prefix == "" {
		return backend, nil
	}
	mux := http.NewServeMux()
	mux.Handle(prefix+"/", http.StripPrefix(prefix, backend))
	return mux, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("devserver listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	log.Info().Msg("devserver stopped")
	return nil
}
