package resources

import (
	"strings"

	"github.com/jrsteele09/academy-admin/credentials"
	apperrors "github.com/jrsteele09/academy-admin/internal/errors"
	"github.com/pkg/errors"
)

// Services bundles every resource facade over one access layer.
type Services struct {
	Users           *Users
	Coaches         *Coaches
	Students        *Students
	Subscriptions   *Subscriptions
	Tournaments     *Tournaments
	Content         *Content
	Reports         *Reports
	DietPlans       *DietPlans
	Activities      *Activities
	Notifications   *Notifications
	SportCategories *SportCategories
}

func New(api API, store credentials.Store) *Services {
	return &Services{
		Users:           NewUsers(api),
		Coaches:         NewCoaches(api),
		Students:        NewStudents(api),
		Subscriptions:   NewSubscriptions(api),
		Tournaments:     NewTournaments(api, store),
		Content:         NewContent(api),
		Reports:         NewReports(api),
		DietPlans:       NewDietPlans(api),
		Activities:      NewActivities(api),
		Notifications:   NewNotifications(api),
		SportCategories: NewSportCategories(api),
	}
}

func requireID(id, what string) error {
	if strings.TrimSpace(id) == "" {
		return errors.Wrapf(apperrors.ErrMissingID, "%s", what)
	}
	return nil
}
