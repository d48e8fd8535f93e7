package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/jrsteele09/academy-admin/auth"
	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	"github.com/jrsteele09/academy-admin/internal/config"
	"github.com/jrsteele09/academy-admin/resources"
	"github.com/jrsteele09/academy-admin/sessions"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/pkg/errors"
)

// App holds what the commands of one invocation share. The session is only
// opened by commands that talk to the backend.
type App struct {
	cfg config.Config

	apiURL          string
	credentialsFile string
	output          string
	logLevel        string

	store      credentials.Store
	ownedStore io.Closer
	api        *client.Client
	ctrl       *sessions.Controller
	res        *resources.Services

	readPassword func(in io.Reader, out io.Writer) (string, error)
}

type AppOption func(*App)

// WithStore replaces the credentials file, e.g. with an in-memory store.
func WithStore(store credentials.Store) AppOption {
	return func(a *App) { a.store = store }
}

// WithPasswordReader replaces the interactive password prompt.
func WithPasswordReader(fn func(in io.Reader, out io.Writer) (string, error)) AppOption {
	return func(a *App) { a.readPassword = fn }
}

func newApp(cfg config.Config, opts ...AppOption) *App {
	a := &App{cfg: cfg, readPassword: promptPassword}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// connect opens the credential store, the access layer and the session controller,
// then resolves the session from the store.
func (a *App) connect() error {
	if a.ctrl != nil {
		return nil
	}

	if a.store == nil {
		path := a.credentialsFile
		if path == "" {
			path = a.cfg.GetCredentialsFile()
		}
		var opts []credentials.FileStoreOption
		if pass := a.cfg.GetCredentialsPassphrase(); pass != "" {
			opts = append(opts, credentials.WithPassphrase(pass))
		}
		fs, err := credentials.NewFileStore(path, opts...)
		if err != nil {
			return errors.Wrap(err, "[App.connect] open credentials")
		}
		a.store, a.ownedStore = fs, fs
	}

	baseURL := a.apiURL
	if baseURL == "" {
		baseURL = a.cfg.GetAPIURL()
	}
	a.api = client.New(baseURL, a.store, client.OptionsFromConfig(a.cfg)...)
	a.ctrl = sessions.NewController(a.store, auth.NewService(a.api),
		sessions.WithAdminRole(users.RoleType(a.cfg.GetAdminRole())),
		sessions.WithAccessLayer(a.api),
	)
	a.res = resources.New(a.api, a.store)
	a.ctrl.Check()
	return nil
}

// requireSession connects and fails unless an admin session is held.
func (a *App) requireSession() error {
	if err := a.connect(); err != nil {
		return err
	}
	if a.ctrl.State() != sessions.StateAuthenticated {
		return errNotLoggedIn
	}
	return nil
}

func (a *App) close() error {
	if a.ctrl != nil {
		a.ctrl.Close()
	}
	if a.ownedStore != nil {
		return a.ownedStore.Close()
	}
	return nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
