package resources

import (
	"context"
	"net/http"
	"net/url"

	"github.com/jrsteele09/academy-admin/client"
	"github.com/jrsteele09/academy-admin/internal/validation"
)

type Subscriptions struct {
	Collection
}

func NewSubscriptions(api API) *Subscriptions {
	return &Subscriptions{Collection: NewCollection(api, subscriptionsPath)}
}

func (s *Subscriptions) Stats(ctx context.Context) (*client.Response, error) {
	return s.query(ctx, nil, "stats")
}

// Content holds announcements.
type Content struct {
	Collection
}

func NewContent(api API) *Content {
	return &Content{Collection: NewCollection(api, contentPath)}
}

type Reports struct {
	col Collection
}

func NewReports(api API) *Reports {
	return &Reports{col: NewCollection(api, reportsPath)}
}

func (r *Reports) List(ctx context.Context, params url.Values) (*client.Response, error) {
	return r.col.List(ctx, params)
}

// Generate asks the backend to build a report of the given type.
func (r *Reports) Generate(ctx context.Context, reportType string, params any) (*client.Response, error) {
	if err := requireID(reportType, "report type"); err != nil {
		return nil, err
	}
	return r.col.api.Do(ctx, &client.Request{
		Method: http.MethodPost,
		Path:   joinPath(reportsPath, "generate", url.PathEscape(reportType)),
		Body:   params,
	})
}

type DietPlans struct {
	Collection
}

func NewDietPlans(api API) *DietPlans {
	return &DietPlans{Collection: NewCollection(api, dietPlansPath)}
}

// Assign gives the plan to every listed student.
func (d *DietPlans) Assign(ctx context.Context, id string, studentIDs []string) (*client.Response, error) {
	in := DietPlanAssignment{StudentIDs: studentIDs}
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return d.do(ctx, http.MethodPatch, id, in, "assign")
}

type Activities struct {
	Collection
}

func NewActivities(api API) *Activities {
	return &Activities{Collection: NewCollection(api, activitiesPath)}
}

func (a *Activities) Stats(ctx context.Context, params url.Values) (*client.Response, error) {
	return a.query(ctx, params, "stats")
}

// TrackArea records the area covered during an activity.
func (a *Activities) TrackArea(ctx context.Context, id string, area any) (*client.Response, error) {
	return a.do(ctx, http.MethodPatch, id, area, "area")
}

type SportCategories struct {
	Collection
}

func NewSportCategories(api API) *SportCategories {
	return &SportCategories{Collection: NewCollection(api, sportCategoriesPath)}
}

func (s *SportCategories) Create(ctx context.Context, in SportCategoryInput) (*client.Response, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	return s.Collection.Create(ctx, in)
}
