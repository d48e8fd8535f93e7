package devbackend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/academy-admin/auth"
	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	"github.com/jrsteele09/academy-admin/internal/devbackend"
	"github.com/jrsteele09/academy-admin/resources"
	"github.com/jrsteele09/academy-admin/sessions"
	"github.com/jrsteele09/academy-admin/users"
	fakeuserrepo "github.com/jrsteele09/academy-admin/users/repofake"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	backend *devbackend.Server
	clock   *clock
	store   *credentials.InMemoryStore
	api     *client.Client
	ctrl    *sessions.Controller
	res     *resources.Services
	admin   *users.User
	coach   *users.User
}

func newFixture(t *testing.T, opts ...devbackend.Option) *fixture {
	t.Helper()
	repo := fakeuserrepo.NewFakeUserRepo()
	seeded, err := devbackend.Seed(repo, devbackend.DefaultAccounts...)
	require.NoError(t, err)

	clk := &clock{now: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	opts = append([]devbackend.Option{devbackend.WithClock(clk.Now), devbackend.WithSecret([]byte("test-secret"))}, opts...)
	backend, err := devbackend.New(repo, opts...)
	require.NoError(t, err)

	srv := httptest.NewServer(backend)
	t.Cleanup(srv.Close)

	store := credentials.NewInMemoryStore()
	api := client.New(srv.URL, store, client.WithTimeout(5*time.Second))
	ctrl := sessions.NewController(store, auth.NewService(api), sessions.WithAccessLayer(api))
	t.Cleanup(ctrl.Close)

	return &fixture{
		backend: backend,
		clock:   clk,
		store:   store,
		api:     api,
		ctrl:    ctrl,
		res:     resources.New(api, store),
		admin:   seeded[0],
		coach:   seeded[1],
	}
}

func (f *fixture) loginAdmin(t *testing.T) {
	t.Helper()
	_, err := f.ctrl.Login(context.Background(), "admin@academy.local", "Admin1234")
	require.NoError(t, err)
	require.Equal(t, sessions.StateAuthenticated, f.ctrl.State())
}

func TestSeedRejectsWeakPasswords(t *testing.T) {
	_, err := devbackend.Seed(fakeuserrepo.NewFakeUserRepo(), devbackend.Account{
		Name: "Weak", Email: "weak@academy.local", Password: "password", Role: users.RoleAdmin,
	})
	require.Error(t, err)

	_, err = devbackend.Seed(fakeuserrepo.NewFakeUserRepo(), devbackend.Account{
		Name: "Nobody", Email: "nobody@academy.local", Password: "Strong1234", Role: "parent",
	})
	require.Error(t, err)
}

func TestLogin(t *testing.T) {
	t.Run("admin gets a session", func(t *testing.T) {
		f := newFixture(t)
		f.loginAdmin(t)

		set, err := credentials.LoadSession(f.store)
		require.NoError(t, err)
		require.True(t, set.Complete())
		require.Equal(t, f.admin.ID, set.User.ID)

		claims, err := credentials.InspectAccessToken(set.AccessToken)
		require.NoError(t, err)
		require.Equal(t, f.admin.ID, claims.Subject)
		require.Equal(t, "admin", claims.Role)

		me, err := f.ctrl.VerifyRemote(context.Background())
		require.NoError(t, err)
		require.Equal(t, "admin@academy.local", me.Email)
	})

	t.Run("coach is refused", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ctrl.Login(context.Background(), "coach@academy.local", "Coach1234")
		var loginErr *sessions.LoginError
		require.ErrorAs(t, err, &loginErr)
		require.Equal(t, sessions.LoginNotAdmin, loginErr.Reason)
		_, ok := f.store.Get(credentials.KeyAccessToken)
		require.False(t, ok)
	})

	t.Run("wrong password", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ctrl.Login(context.Background(), "admin@academy.local", "nope")
		var loginErr *sessions.LoginError
		require.ErrorAs(t, err, &loginErr)
		require.Equal(t, sessions.LoginBadCredentials, loginErr.Reason)
		require.Equal(t, "Invalid email or password", loginErr.Message)
		require.Equal(t, int64(0), f.backend.Logins())
	})
}

func TestExpiredAccessTokenIsRefreshedOnce(t *testing.T) {
	f := newFixture(t, devbackend.WithAccessTokenTTL(time.Minute))
	f.loginAdmin(t)
	before, _ := f.store.Get(credentials.KeyAccessToken)

	f.clock.Advance(2 * time.Minute)

	resp, err := f.res.Students.List(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, int64(1), f.backend.Refreshes())

	after, _ := f.store.Get(credentials.KeyAccessToken)
	require.NotEqual(t, before, after)
	require.Equal(t, sessions.StateAuthenticated, f.ctrl.State())

	// The new token is used as is on the next call.
	_, err = f.res.Students.List(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, int64(1), f.backend.Refreshes())
}

func TestRefreshTokenRotation(t *testing.T) {
	f := newFixture(t, devbackend.WithAccessTokenTTL(time.Minute), devbackend.WithRefreshTokenRotation())
	f.loginAdmin(t)
	before, _ := f.store.Get(credentials.KeyRefreshToken)

	f.clock.Advance(2 * time.Minute)
	_, err := f.res.Coaches.List(context.Background(), nil)
	require.NoError(t, err)

	after, _ := f.store.Get(credentials.KeyRefreshToken)
	require.NotEqual(t, before, after)
}

func TestRevokedSessionEnds(t *testing.T) {
	f := newFixture(t, devbackend.WithAccessTokenTTL(time.Minute))
	f.loginAdmin(t)

	var changes []sessions.StateChange
	f.ctrl.OnStateChange(func(c sessions.StateChange) { changes = append(changes, c) })

	f.backend.RevokeSessions(f.admin.ID)
	f.clock.Advance(2 * time.Minute)

	_, err := f.res.Students.List(context.Background(), nil)
	require.ErrorIs(t, err, client.ErrSessionEnded)
	require.Equal(t, client.KindAuthentication, client.Classify(err))
	require.Equal(t, sessions.StateUnauthenticated, f.ctrl.State())
	require.Len(t, changes, 1)
	require.Equal(t, sessions.ReasonSessionEnded, changes[0].Reason)

	for _, key := range credentials.SessionKeys {
		_, ok := f.store.Get(key)
		require.False(t, ok, key)
	}
}

func TestNonAdminTokenIsForbidden(t *testing.T) {
	f := newFixture(t)
	resp, err := auth.NewService(f.api).Login(context.Background(), "coach@academy.local", "Coach1234")
	require.NoError(t, err)
	require.NoError(t, f.store.SetSession(credentials.CredentialSet{
		AccessToken: resp.AccessToken, RefreshToken: resp.RefreshToken, User: resp.User,
	}))

	_, err = f.res.Students.List(context.Background(), nil)
	require.ErrorIs(t, err, client.ErrSessionEnded)

	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	require.Equal(t, devbackend.CodePermissionDenied, apiErr.Code)

	_, ok := f.store.Get(credentials.KeyAccessToken)
	require.False(t, ok)
}

func TestMissingBearer(t *testing.T) {
	f := newFixture(t)
	_, err := f.api.Do(context.Background(), &client.Request{Method: http.MethodGet, Path: "/students", Anonymous: true})
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Not authorized, no token", apiErr.Message)
}

func TestCollections(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	created, err := f.res.SportCategories.Create(ctx, resources.SportCategoryInput{Name: "Judo", Description: "Martial arts"})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, created.StatusCode)
	var category map[string]any
	require.NoError(t, created.DecodeData(&category))
	id, _ := category["_id"].(string)
	require.NotEmpty(t, id)

	updated, err := f.res.SportCategories.Update(ctx, id, map[string]any{"description": "Olympic judo"})
	require.NoError(t, err)
	require.NoError(t, updated.DecodeData(&category))
	require.Equal(t, "Olympic judo", category["description"])
	require.Equal(t, id, category["_id"])

	list, err := f.res.SportCategories.List(ctx, url.Values{"name": {"Judo"}})
	require.NoError(t, err)
	var categories []map[string]any
	require.NoError(t, list.DecodeData(&categories))
	require.Len(t, categories, 1)

	_, err = f.res.SportCategories.Delete(ctx, id)
	require.NoError(t, err)
	_, err = f.res.SportCategories.Get(ctx, id)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	require.Equal(t, sessions.StateAuthenticated, f.ctrl.State())
}

func TestCoachLifecycle(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	resp, err := f.res.Coaches.Create(ctx, resources.CoachInput{
		Name:             "Sam Coach",
		Email:            "sam@academy.local",
		Password:         "secret1",
		PasswordConfirm:  "secret1",
		SportsCategories: []string{"Tennis"},
	})
	require.NoError(t, err)
	var coach map[string]any
	require.NoError(t, resp.DecodeData(&coach))
	require.NotContains(t, coach, "password")
	require.Equal(t, "pending", coach["status"])
	id := coach["_id"].(string)

	resp, err = f.res.Coaches.Approve(ctx, id)
	require.NoError(t, err)
	require.NoError(t, resp.DecodeData(&coach))
	require.Equal(t, "approved", coach["status"])

	_, err = f.res.Coaches.AssignStudent(ctx, id, "student-1")
	require.NoError(t, err)
	resp, err = f.res.Coaches.Students(ctx, id)
	require.NoError(t, err)
	var students []string
	require.NoError(t, resp.DecodeData(&students))
	require.Equal(t, []string{"student-1"}, students)

	_, err = f.res.Coaches.RemoveStudent(ctx, id, "student-1")
	require.NoError(t, err)
	resp, err = f.res.Coaches.Students(ctx, id)
	require.NoError(t, err)
	require.NoError(t, resp.DecodeData(&students))
	require.Empty(t, students)

	// The coach account can log in but is not an admin.
	_, err = auth.NewService(f.api).Login(ctx, "sam@academy.local", "secret1")
	require.NoError(t, err)

	resp, err = f.res.Users.List(ctx, url.Values{"role": {"coach"}})
	require.NoError(t, err)
	var coaches []users.User
	require.NoError(t, resp.DecodeData(&coaches))
	require.Len(t, coaches, 2)
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	_, err := f.res.Notifications.CreateSystem(ctx, resources.NotificationInput{Title: "Closed", Message: "Pool closed today"})
	require.NoError(t, err)

	tournament, err := f.res.Tournaments.Create(ctx, resources.TournamentInput{
		Name:                 "Summer Cup",
		SportCategory:        "Tennis",
		StartDate:            time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:              time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC),
		RegistrationDeadline: time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC),
		Location:             resources.Location{Name: "Court 1"},
		Organizer:            "Academy",
	})
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, tournament.DecodeData(&doc))
	_, err = f.res.Tournaments.Notify(ctx, doc["_id"].(string), resources.NotificationInput{Title: "Draw", Message: "Draw is out"})
	require.NoError(t, err)

	count := func() int {
		resp, err := f.res.Notifications.UnreadCount(ctx)
		require.NoError(t, err)
		var out struct{ Count int }
		require.NoError(t, resp.DecodeData(&out))
		return out.Count
	}
	require.Equal(t, 2, count())

	_, err = f.res.Notifications.MarkAllRead(ctx)
	require.NoError(t, err)
	require.Equal(t, 0, count())

	resp, err := f.res.Notifications.DeleteRead(ctx)
	require.NoError(t, err)
	var deleted struct{ Deleted int }
	require.NoError(t, resp.DecodeData(&deleted))
	require.Equal(t, 2, deleted.Deleted)
}

func TestStatsAndReports(t *testing.T) {
	f := newFixture(t)
	f.loginAdmin(t)
	ctx := context.Background()

	resp, err := f.res.Users.Stats(ctx)
	require.NoError(t, err)
	var stats struct {
		Total  int
		ByRole map[string]int
	}
	require.NoError(t, resp.DecodeData(&stats))
	require.Equal(t, 3, stats.Total)
	require.Equal(t, 1, stats.ByRole["admin"])

	resp, err = f.res.Users.List(ctx, url.Values{"role": {"Coach"}})
	require.NoError(t, err)
	var coaches []users.User
	require.NoError(t, resp.DecodeData(&coaches))
	require.Len(t, coaches, 1)
	require.Equal(t, "coach@academy.local", coaches[0].Email)

	_, err = f.res.Users.List(ctx, url.Values{"role": {"janitor"}})
	require.Equal(t, http.StatusBadRequest, client.StatusCode(err))

	resp, err = f.res.Reports.Generate(ctx, "attendance", map[string]string{"month": "2026-02"})
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, err = f.res.Subscriptions.Stats(ctx)
	require.NoError(t, err)
	var total struct{ Total int }
	require.NoError(t, resp.DecodeData(&total))
	require.Equal(t, 0, total.Total)

	_, err = f.api.Get(ctx, "/unknown", nil)
	var apiErr *client.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}
