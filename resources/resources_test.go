package resources_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/jrsteele09/academy-admin/resources"
	"github.com/stretchr/testify/require"
)

// recordingAPI captures every request and answers with err or an empty 200.
type recordingAPI struct {
	requests []*client.Request
	err      error
}

func (r *recordingAPI) Do(_ context.Context, req *client.Request) (*client.Response, error) {
	r.requests = append(r.requests, req)
	if r.err != nil {
		return nil, r.err
	}
	return &client.Response{StatusCode: http.StatusOK, Body: []byte(`{"data":{}}`)}, nil
}

func (r *recordingAPI) last(t *testing.T) *client.Request {
	t.Helper()
	require.NotEmpty(t, r.requests)
	return r.requests[len(r.requests)-1]
}

func loggedInStore(t *testing.T) credentials.Store {
	t.Helper()
	s := credentials.NewInMemoryStore()
	require.NoError(t, s.Set(credentials.KeyAccessToken, "access"))
	return s
}

func TestRoutes(t *testing.T) {
	ctx := context.Background()
	api := &recordingAPI{}
	svc := resources.New(api, loggedInStore(t))
	params := url.Values{"page": {"1"}}

	tests := []struct {
		name   string
		call   func() (*client.Response, error)
		method string
		path   string
	}{
		{"users list", func() (*client.Response, error) { return svc.Users.List(ctx, params) }, http.MethodGet, "/users"},
		{"users get", func() (*client.Response, error) { return svc.Users.Get(ctx, "u1") }, http.MethodGet, "/users/u1"},
		{"users update", func() (*client.Response, error) { return svc.Users.Update(ctx, "u1", map[string]string{"name": "x"}) }, http.MethodPatch, "/users/u1"},
		{"users delete", func() (*client.Response, error) { return svc.Users.Delete(ctx, "u1") }, http.MethodDelete, "/users/u1"},
		{"users stats", func() (*client.Response, error) { return svc.Users.Stats(ctx) }, http.MethodGet, "/users/stats"},
		{"coach approve", func() (*client.Response, error) { return svc.Coaches.Approve(ctx, "c1") }, http.MethodPatch, "/coaches/c1/approve"},
		{"coach suspend", func() (*client.Response, error) { return svc.Coaches.Suspend(ctx, "c1") }, http.MethodPatch, "/coaches/c1/suspend"},
		{"coach performance", func() (*client.Response, error) { return svc.Coaches.Performance(ctx, "c1") }, http.MethodGet, "/coaches/c1/performance"},
		{"coach schedule", func() (*client.Response, error) { return svc.Coaches.Schedule(ctx, "c1") }, http.MethodGet, "/coaches/c1/schedule"},
		{"coach update schedule", func() (*client.Response, error) { return svc.Coaches.UpdateSchedule(ctx, "c1", map[string]any{}) }, http.MethodPost, "/coaches/c1/schedule"},
		{"coach students", func() (*client.Response, error) { return svc.Coaches.Students(ctx, "c1") }, http.MethodGet, "/coaches/c1/students"},
		{"coach assign", func() (*client.Response, error) { return svc.Coaches.AssignStudent(ctx, "c1", "s1") }, http.MethodPost, "/coaches/c1/students/s1"},
		{"coach remove", func() (*client.Response, error) { return svc.Coaches.RemoveStudent(ctx, "c1", "s1") }, http.MethodDelete, "/coaches/c1/students/s1"},
		{"students list", func() (*client.Response, error) { return svc.Students.List(ctx, params) }, http.MethodGet, "/students"},
		{"student progress", func() (*client.Response, error) { return svc.Students.Progress(ctx, "s1") }, http.MethodGet, "/students/s1/progress"},
		{"student activities", func() (*client.Response, error) { return svc.Students.Activities(ctx, "s1", params) }, http.MethodGet, "/students/s1/activities"},
		{"subscription stats", func() (*client.Response, error) { return svc.Subscriptions.Stats(ctx) }, http.MethodGet, "/subscriptions/stats"},
		{"subscription create", func() (*client.Response, error) { return svc.Subscriptions.Create(ctx, map[string]any{"plan": "gold"}) }, http.MethodPost, "/subscriptions"},
		{"content get", func() (*client.Response, error) { return svc.Content.Get(ctx, "a1") }, http.MethodGet, "/content/a1"},
		{"reports list", func() (*client.Response, error) { return svc.Reports.List(ctx, nil) }, http.MethodGet, "/reports"},
		{"reports generate", func() (*client.Response, error) { return svc.Reports.Generate(ctx, "attendance", nil) }, http.MethodPost, "/reports/generate/attendance"},
		{"diet plan assign", func() (*client.Response, error) { return svc.DietPlans.Assign(ctx, "d1", []string{"s1", "s2"}) }, http.MethodPatch, "/diet-plans/d1/assign"},
		{"activity stats", func() (*client.Response, error) { return svc.Activities.Stats(ctx, params) }, http.MethodGet, "/activities/stats"},
		{"activity area", func() (*client.Response, error) { return svc.Activities.TrackArea(ctx, "a1", map[string]any{"km2": 1}) }, http.MethodPatch, "/activities/a1/area"},
		{"notification read", func() (*client.Response, error) { return svc.Notifications.MarkRead(ctx, "n1") }, http.MethodPatch, "/notifications/n1/read"},
		{"notification read all", func() (*client.Response, error) { return svc.Notifications.MarkAllRead(ctx) }, http.MethodPatch, "/notifications/mark-all-read"},
		{"notification delete read", func() (*client.Response, error) { return svc.Notifications.DeleteRead(ctx) }, http.MethodDelete, "/notifications/delete-read"},
		{"notification unread", func() (*client.Response, error) { return svc.Notifications.UnreadCount(ctx) }, http.MethodGet, "/notifications/unread-count"},
		{"sport categories list", func() (*client.Response, error) { return svc.SportCategories.List(ctx, nil) }, http.MethodGet, "/sport-categories"},
		{"tournament participants", func() (*client.Response, error) { return svc.Tournaments.Participants(ctx, "t1") }, http.MethodGet, "/tournaments/t1/participants"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.call()
			require.NoError(t, err)
			req := api.last(t)
			require.Equal(t, tt.method, req.Method)
			require.Equal(t, tt.path, req.Path)
			require.False(t, req.Anonymous)
		})
	}
}

func TestIDsAreRequiredAndEscaped(t *testing.T) {
	api := &recordingAPI{}
	svc := resources.New(api, loggedInStore(t))

	_, err := svc.Users.Get(context.Background(), " ")
	require.ErrorIs(t, err, apperrors.ErrMissingID)
	require.Equal(t, client.KindValidation, client.Classify(err))
	_, err = svc.Coaches.AssignStudent(context.Background(), "c1", "")
	require.ErrorIs(t, err, apperrors.ErrMissingID)
	require.Empty(t, api.requests)

	_, err = svc.Users.Get(context.Background(), "a/b")
	require.NoError(t, err)
	require.Equal(t, "/users/a%2Fb", api.last(t).Path)
}

func TestInputValidation(t *testing.T) {
	ctx := context.Background()
	api := &recordingAPI{}
	svc := resources.New(api, loggedInStore(t))

	t.Run("sport category", func(t *testing.T) {
		_, err := svc.SportCategories.Create(ctx, resources.SportCategoryInput{})
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.ErrorContains(t, err, "name is required")

		_, err = svc.SportCategories.Create(ctx, resources.SportCategoryInput{Name: "Tennis", SportImage: "not-an-image"})
		require.ErrorContains(t, err, "sportImage must be a data URI")

		_, err = svc.SportCategories.Create(ctx, resources.SportCategoryInput{Name: "Tennis", SportImage: "data:image/png;base64,iVBORw0KGgo="})
		require.NoError(t, err)
	})

	t.Run("coach", func(t *testing.T) {
		in := resources.CoachInput{
			Name:             "Sarah Williams",
			Email:            "sarah@academy.test",
			Password:         "secret1",
			PasswordConfirm:  "secret1",
			SportsCategories: []string{"tennis"},
		}
		_, err := svc.Coaches.Create(ctx, in)
		require.NoError(t, err)

		bad := in
		bad.PasswordConfirm = "other"
		bad.SportsCategories = nil
		bad.ExperienceYears = -1
		_, err = svc.Coaches.Create(ctx, bad)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.ErrorContains(t, err, "passwordConfirm must match password")
		require.ErrorContains(t, err, "sportsCategories")
		require.ErrorContains(t, err, "experienceYears")
	})

	t.Run("notification", func(t *testing.T) {
		_, err := svc.Notifications.CreateSystem(ctx, resources.NotificationInput{Title: "Closed", Message: "Holiday"})
		require.NoError(t, err)
		var sent resources.NotificationInput
		body, _ := json.Marshal(api.last(t).Body)
		require.NoError(t, json.Unmarshal(body, &sent))
		require.Equal(t, resources.RecipientsAll, sent.RecipientType)

		_, err = svc.Notifications.CreateSystem(ctx, resources.NotificationInput{Title: "Hi", Message: "x", RecipientType: resources.RecipientsSpecific})
		require.ErrorContains(t, err, "recipientIds is required")

		_, err = svc.Notifications.CreateSystem(ctx, resources.NotificationInput{Title: "Hi", Message: "x", Priority: "urgent"})
		require.ErrorContains(t, err, "priority must be one of")
	})

	t.Run("diet plan assignment", func(t *testing.T) {
		n := len(api.requests)
		_, err := svc.DietPlans.Assign(ctx, "d1", nil)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.Len(t, api.requests, n)
	})
}

func TestTournaments(t *testing.T) {
	ctx := context.Background()
	start := time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)
	valid := resources.TournamentInput{
		Name:                 "Summer Open",
		SportCategory:        "tennis",
		StartDate:            start,
		EndDate:              start.Add(48 * time.Hour),
		RegistrationDeadline: start.Add(-72 * time.Hour),
		Location:             resources.Location{Name: "Court 1"},
		Organizer:            "u1",
	}

	t.Run("authentication required", func(t *testing.T) {
		api := &recordingAPI{}
		tournaments := resources.NewTournaments(api, credentials.NewInMemoryStore())

		_, err := tournaments.List(ctx, nil)
		require.ErrorIs(t, err, apperrors.ErrAuthenticationNeeded)
		_, err = tournaments.Create(ctx, valid)
		require.ErrorIs(t, err, apperrors.ErrAuthenticationNeeded)
		_, err = tournaments.Update(ctx, "t1", map[string]any{"name": "x"})
		require.ErrorIs(t, err, apperrors.ErrAuthenticationNeeded)
		require.Equal(t, client.KindAuthentication, client.Classify(err))
		require.Empty(t, api.requests)
	})

	t.Run("create validates dates", func(t *testing.T) {
		api := &recordingAPI{}
		tournaments := resources.NewTournaments(api, loggedInStore(t))

		_, err := tournaments.Create(ctx, valid)
		require.NoError(t, err)

		bad := valid
		bad.EndDate = start.Add(-time.Hour)
		bad.RegistrationDeadline = start.Add(time.Hour)
		bad.Location.Name = ""
		_, err = tournaments.Create(ctx, bad)
		require.ErrorIs(t, err, apperrors.ErrInvalidInput)
		require.ErrorContains(t, err, "endDate must not be before startDate")
		require.ErrorContains(t, err, "registrationDeadline must not be after startDate")
		require.ErrorContains(t, err, "location.name is required")
		require.Len(t, api.requests, 1)
	})

	t.Run("update requires an id", func(t *testing.T) {
		api := &recordingAPI{}
		tournaments := resources.NewTournaments(api, loggedInStore(t))
		_, err := tournaments.Update(ctx, "", map[string]any{"name": "x"})
		require.ErrorIs(t, err, apperrors.ErrMissingID)
		require.ErrorContains(t, err, "tournament ID is required for update")
	})

	t.Run("update stringifies location", func(t *testing.T) {
		api := &recordingAPI{}
		tournaments := resources.NewTournaments(api, loggedInStore(t))
		fields := map[string]any{"name": "Open", "location": map[string]any{"name": "Court 1"}}

		_, err := tournaments.Update(ctx, "t1", fields)
		require.NoError(t, err)

		req := api.last(t)
		require.Equal(t, http.MethodPatch, req.Method)
		require.Equal(t, "/tournaments/t1", req.Path)
		var sent map[string]any
		require.NoError(t, json.Unmarshal(req.Body.(json.RawMessage), &sent))
		require.Equal(t, `{"name":"Court 1"}`, sent["location"])
		require.IsType(t, map[string]any{}, fields["location"], "caller's map is left untouched")
	})

	t.Run("update wraps backend failures", func(t *testing.T) {
		api := &recordingAPI{err: &client.APIError{StatusCode: 413, Message: "Payload too large"}}
		tournaments := resources.NewTournaments(api, loggedInStore(t))

		_, err := tournaments.Update(ctx, "t1", map[string]any{"tournamentImage": strings.Repeat("A", 16)})
		require.EqualError(t, err, "failed to update tournament (413): Payload too large: Payload too large (status 413)")
		require.Equal(t, 413, client.StatusCode(err))
	})

	t.Run("notify", func(t *testing.T) {
		api := &recordingAPI{}
		tournaments := resources.NewTournaments(api, loggedInStore(t))
		_, err := tournaments.Notify(ctx, "t1", resources.NotificationInput{Title: "Draw", Message: "Draw is out"})
		require.NoError(t, err)
		require.Equal(t, "/tournaments/t1/notify", api.last(t).Path)
		require.Equal(t, http.MethodPost, api.last(t).Method)
	})
}
