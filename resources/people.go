package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/internal/validation"
)

type Users struct {
	Collection
}

func NewUsers(api API) *Users {
	return &Users{Collection: NewCollection(api, usersPath)}
}

func (u *Users) Stats(ctx context.Context) (*client.Response, error) {
	return u.query(ctx, nil, "stats")
}

type Coaches struct {
	Collection
}

func NewCoaches(api API) *Coaches {
	return &Coaches{Collection: NewCollection(api, coachesPath)}
}

// Create validates the coach locally before sending it.
func (c *Coaches) Create(ctx context.Context, in CoachInput) (*client.Response, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return c.Collection.Create(ctx, in)
}

func (c *Coaches) Approve(ctx context.Context, id string) (*client.Response, error) {
	return c.do(ctx, http.MethodPatch, id, nil, "approve")
}

func (c *Coaches) Suspend(ctx context.Context, id string) (*client.Response, error) {
	return c.do(ctx, http.MethodPatch, id, nil, "suspend")
}

func (c *Coaches) Performance(ctx context.Context, id string) (*client.Response, error) {
	return c.do(ctx, http.MethodGet, id, nil, "performance")
}

func (c *Coaches) Schedule(ctx context.Context, id string) (*client.Response, error) {
	return c.do(ctx, http.MethodGet, id, nil, "schedule")
}

// UpdateSchedule replaces the schedule, the backend takes it as a POST.
func (c *Coaches) UpdateSchedule(ctx context.Context, id string, schedule any) (*client.Response, error) {
	return c.do(ctx, http.MethodPost, id, schedule, "schedule")
}

func (c *Coaches) Students(ctx context.Context, id string) (*client.Response, error) {
	return c.do(ctx, http.MethodGet, id, nil, "students")
}

func (c *Coaches) AssignStudent(ctx context.Context, coachID, studentID string) (*client.Response, error) {
	if err := requireID(studentID, "student"); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, coachID, nil, "students", url.PathEscape(studentID))
}

func (c *Coaches) RemoveStudent(ctx context.Context, coachID, studentID string) (*client.Response, error) {
	if err := requireID(studentID, "student"); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodDelete, coachID, nil, "students", url.PathEscape(studentID))
}

// Students is read only, accounts are created through Users.
type Students struct {
	col Collection
}

func NewStudents(api API) *Students {
	return &Students{col: NewCollection(api, studentsPath)}
}

func (s *Students) List(ctx context.Context, params url.Values) (*client.Response, error) {
	return s.col.List(ctx, params)
}

func (s *Students) Get(ctx context.Context, id string) (*client.Response, error) {
	return s.col.Get(ctx, id)
}

func (s *Students) Progress(ctx context.Context, id string) (*client.Response, error) {
	return s.col.do(ctx, http.MethodGet, id, nil, "progress")
}

// Activities lists the activities recorded for one student.
func (s *Students) Activities(ctx context.Context, id string, params url.Values) (*client.Response, error) {
	p, err := s.col.itemPath(id, "activities")
	if err != nil {
		return nil, err
	}
	return s.col.api.Do(ctx, &client.Request{Method: http.MethodGet, Path: p, Params: params})
}
