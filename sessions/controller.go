package sessions

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/jrsteele09/academy-admin/auth"
	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/jrsteele09/academy-admin/users"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Authenticator is the backend side of login and profile lookups.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (*auth.LoginResponse, error)
	CurrentUser(ctx context.Context) (*users.User, error)
}

// SessionEndNotifier is implemented by the access layer.
type SessionEndNotifier interface {
	OnSessionEnded(fn func(cause error)) func()
}

// Controller owns the authentication state of one client. Several controllers can
// share a store, each one follows the others through store change events.
type Controller struct {
	store     credentials.Store
	auth      Authenticator
	adminRole users.RoleType

	mu    sync.Mutex
	state State
	user  *users.User

	listenersM sync.RWMutex
	listeners  map[int]func(StateChange)
	nextID     int

	detach []func()
}

type Option func(*Controller)

// WithAdminRole overrides the role required for a session.
func WithAdminRole(role users.RoleType) Option {
	return func(c *Controller) {
		if role != "" {
			c.adminRole = role
		}
	}
}

// WithAccessLayer makes the controller follow the access layer's session ended signal.
func WithAccessLayer(n SessionEndNotifier) Option {
	return func(c *Controller) {
		c.detach = append(c.detach, n.OnSessionEnded(c.HandleSessionEnded))
	}
}

func NewController(store credentials.Store, authenticator Authenticator, opts ...Option) *Controller {
	c := &Controller{
		store:     store,
		auth:      authenticator,
		adminRole: users.RoleAdmin,
		state:     StateUnknown,
		listeners: make(map[int]func(StateChange)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Close detaches the controller from the access layer.
func (c *Controller) Close() {
	c.mu.Lock()
	detach := c.detach
	c.detach = nil
	c.mu.Unlock()

	for _, fn := range detach {
		fn()
	}
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// User returns a copy of the authenticated profile, nil unless Authenticated.
func (c *Controller) User() *users.User {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return nil
	}
	u := *c.user
	return &u
}

// OnStateChange registers fn for state changes. Observers run outside the controller lock.
func (c *Controller) OnStateChange(fn func(StateChange)) func() {
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

// Check resolves the state from the store alone, without a network call. The session is
// valid only with both tokens and an admin profile. A cached non-admin profile ends the
// session; an unreadable profile is discarded. Observers see the controller pass through
// Checking before the resolved state.
func (c *Controller) Check() State {
	c.mu.Lock()
	checking := &StateChange{From: c.state, To: StateChecking, Reason: ReasonCheck}
	c.state = StateChecking
	c.mu.Unlock()

	c.notify(checking)

	c.mu.Lock()
	to, user := c.resolve()
	change := c.transitionLocked(c.state, to, user, ReasonCheck)
	c.mu.Unlock()

	c.notify(change)
	return to
}

func (c *Controller) resolve() (State, *users.User) {
	set, err := credentials.LoadSession(c.store)
	if err != nil {
		log.Err(err).Msg("discarding unreadable cached profile")
		if rmErr := c.store.Remove(credentials.KeyUser); rmErr != nil {
			log.Err(rmErr).Msg("unable to remove cached profile")
		}
		return StateUnauthenticated, nil
	}
	if !set.Complete() {
		return StateUnauthenticated, nil
	}
	if set.User.Role != c.adminRole {
		log.Warn().Str("role", string(set.User.Role)).Msg("cached profile is not an admin, clearing credentials")
		if clrErr := c.store.ClearSession(); clrErr != nil {
			log.Err(clrErr).Msg("unable to clear credentials")
		}
		return StateUnauthenticated, nil
	}
	return StateAuthenticated, set.User
}

// Login is only valid while not authenticated. A non-admin account is refused without
// persisting anything. Failures are returned as *LoginError.
func (c *Controller) Login(ctx context.Context, email, password string) (*users.User, error) {
	c.mu.Lock()
	if c.state == StateAuthenticated {
		c.mu.Unlock()
		return nil, apperrors.ErrAlreadyAuthenticated
	}
	c.mu.Unlock()

	resp, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return nil, loginError(err)
	}
	if resp.User == nil {
		return nil, &LoginError{Reason: LoginServer, Message: msgLoginFailed, Err: auth.ErrNoUser}
	}
	if resp.User.Role != c.adminRole {
		log.Warn().Str("email", resp.User.Email).Str("role", string(resp.User.Role)).Msg("non-admin login refused")
		return nil, &LoginError{Reason: LoginNotAdmin, Message: msgNotAdmin, Err: apperrors.ErrNotAdmin}
	}
	// A caller that gave up must not find itself logged in.
	if err := ctx.Err(); err != nil {
		return nil, &LoginError{Reason: LoginNetwork, Message: msgLoginFailed, Err: err}
	}

	c.mu.Lock()
	if err := c.store.SetSession(credentials.CredentialSet{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		User:         resp.User,
	}); err != nil {
		c.mu.Unlock()
		return nil, errors.Wrap(err, "[Controller.Login] persist session")
	}
	change := c.transitionLocked(c.state, StateAuthenticated, resp.User, ReasonLogin)
	c.mu.Unlock()

	c.notify(change)
	log.Info().Str("email", resp.User.Email).Msg("admin logged in")

	u := *resp.User
	return &u, nil
}

// Logout clears the credential set, valid from any state.
func (c *Controller) Logout() error {
	return c.end(ReasonLogout)
}

// HandleSessionEnded is called by the access layer after it gave up on the session.
func (c *Controller) HandleSessionEnded(cause error) {
	log.Info().Err(cause).Msg("access layer ended the session")
	if err := c.end(ReasonSessionEnded); err != nil {
		log.Err(err).Msg("unable to clear credentials after session end")
	}
}

func (c *Controller) end(reason string) error {
	c.mu.Lock()
	err := c.store.ClearSession()
	change := c.transitionLocked(c.state, StateUnauthenticated, nil, reason)
	c.mu.Unlock()

	c.notify(change)
	return errors.Wrap(err, "[Controller.end] clear session")
}

// VerifyRemote asks the backend who the stored token belongs to. An admin refreshes the
// cached profile, anyone else is logged out. Network failures leave the session as is.
func (c *Controller) VerifyRemote(ctx context.Context) (*users.User, error) {
	if c.State() != StateAuthenticated {
		return nil, apperrors.ErrAuthenticationNeeded
	}

	u, err := c.auth.CurrentUser(ctx)
	if err != nil {
		if client.Classify(err) == client.KindNetwork {
			log.Warn().Err(err).Msg("unable to verify session, keeping cached profile")
		}
		return nil, err
	}

	if u.Role != c.adminRole {
		log.Warn().Str("role", string(u.Role)).Msg("backend reports a non-admin profile, logging out")
		if err := c.end(ReasonNotAdmin); err != nil {
			return nil, err
		}
		return nil, apperrors.ErrNotAdmin
	}

	profile, err := json.Marshal(u)
	if err != nil {
		return nil, errors.Wrap(err, "[Controller.VerifyRemote] marshal profile")
	}

	c.mu.Lock()
	if c.state != StateAuthenticated {
		c.mu.Unlock()
		return nil, apperrors.ErrAuthenticationNeeded
	}
	if err := c.store.Set(credentials.KeyUser, string(profile)); err != nil {
		c.mu.Unlock()
		return nil, errors.Wrap(err, "[Controller.VerifyRemote] store profile")
	}
	change := c.transitionLocked(c.state, StateAuthenticated, u, ReasonProfile)
	c.mu.Unlock()

	c.notify(change)
	out := *u
	return &out, nil
}

// transitionLocked applies the new state and returns the change to report, if any.
func (c *Controller) transitionLocked(from, to State, user *users.User, reason string) *StateChange {
	c.state = to
	prev := c.user
	c.user = user

	if from == to && sameUser(prev, user) {
		return nil
	}
	change := &StateChange{From: from, To: to, Reason: reason}
	if user != nil {
		u := *user
		change.User = &u
	}
	return change
}

func (c *Controller) notify(change *StateChange) {
	if change == nil {
		return
	}
	log.Info().
		Str("from", change.From.String()).
		Str("to", change.To.String()).
		Str("reason", change.Reason).
		Msg("session state changed")

	c.listenersM.RLock()
	listeners := make([]func(StateChange), 0, len(c.listeners))
	for _, fn := range c.listeners {
		listeners = append(listeners, fn)
	}
	c.listenersM.RUnlock()

	for _, fn := range listeners {
		fn(*change)
	}
}

func sameUser(a, b *users.User) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.ID == b.ID && a.Name == b.Name && a.Email == b.Email &&
		a.Role == b.Role && a.PhoneNumber() == b.PhoneNumber()
}

// loginError turns an auth failure into its displayable form.
func loginError(err error) *LoginError {
	switch {
	case errors.Is(err, auth.ErrMissingCredentials):
		return &LoginError{Reason: LoginInvalidInput, Message: msgMissingCredentials, Err: err}
	case errors.Is(err, auth.ErrInvalidEmail):
		return &LoginError{Reason: LoginInvalidInput, Message: msgInvalidEmail, Err: err}
	}

	var apiErr *client.APIError
	switch client.Classify(err) {
	case client.KindNetwork:
		return &LoginError{Reason: LoginNetwork, Message: msgLoginFailed, Err: err}
	case client.KindAuthentication, client.KindAuthorization, client.KindValidation:
		msg := msgLoginFailed
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &LoginError{Reason: LoginBadCredentials, Message: msg, Err: err}
	default:
		msg := msgLoginFailed
		if errors.As(err, &apiErr) && apiErr.Message != "" {
			msg = apiErr.Message
		}
		return &LoginError{Reason: LoginServer, Message: msg, Err: err}
	}
}
