package devbackend

// Route path constants
const (
	// Auth Routes
	RouteAuthLogin   = "/auth/login"
	RouteAuthRefresh = "/auth/refresh-token"
	RouteAuthLogout  = "/auth/logout"
	RouteCurrentUser = "/users/me"

	// Admin API Routes
	RouteUsers               = "/users"
	RouteUser                = "/users/{id}"
	RouteCoaches             = "/coaches"
	RouteReportGenerate      = "/reports/generate/{type}"
	RouteNotificationSystem  = "/notifications/system"
	RouteNotificationAllRead = "/notifications/mark-all-read"
	RouteNotificationDelRead = "/notifications/delete-read"
	RouteNotificationUnread  = "/notifications/unread-count"

	// Generic collection routes (patterns)
	RouteCollection     = "/{collection}"
	RouteItem           = "/{collection}/{id}"
	RouteItemAction     = "/{collection}/{id}/{action}"
	RouteItemActionItem = "/{collection}/{id}/{action}/{sub}"
)

// collections served by the generic handlers. Users are backed by the user repo.
var collections = map[string]bool{
	"coaches":          true,
	"students":         true,
	"subscriptions":    true,
	"tournaments":      true,
	"content":          true,
	"reports":          true,
	"diet-plans":       true,
	"activities":       true,
	"notifications":    true,
	"sport-categories": true,
}
