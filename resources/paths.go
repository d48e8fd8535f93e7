package resources

const (
	usersPath           = "/users"
	coachesPath         = "/coaches"
	studentsPath        = "/students"
	subscriptionsPath   = "/subscriptions"
	tournamentsPath     = "/tournaments"
	contentPath         = "/content"
	reportsPath         = "/reports"
	dietPlansPath       = "/diet-plans"
	activitiesPath      = "/activities"
	notificationsPath   = "/notifications"
	sportCategoriesPath = "/sport-categories"
)
