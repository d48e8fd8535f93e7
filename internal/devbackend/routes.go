package devbackend

import "net/http"

func (s *Server) initRoutes() {
	std := []func(http.HandlerFunc) http.HandlerFunc{s.LoggingMiddleware, s.RecoverMiddleware}
	authed := append(std[:len(std):len(std)], s.RequireAuth())
	admin := append(authed[:len(authed):len(authed)], s.RequireAdmin())

	// AUTH
	s.RegisterRouteFunc("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), std...))
	s.RegisterRouteFunc("POST "+RouteAuthRefresh, ChainMiddleware(s.RefreshHandler(), std...))
	s.RegisterRouteFunc("POST "+RouteAuthLogout, ChainMiddleware(s.LogoutHandler(), authed...))
	s.RegisterRouteFunc("GET "+RouteCurrentUser, ChainMiddleware(s.CurrentUserHandler(), authed...))

	// Users come from the user repo
	s.RegisterRouteFunc("GET "+RouteUsers, ChainMiddleware(s.ListUsersHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteUser, ChainMiddleware(s.GetUserHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteCoaches, ChainMiddleware(s.CreateCoachHandler(), admin...))

	s.RegisterRouteFunc("POST "+RouteReportGenerate, ChainMiddleware(s.GenerateReportHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteNotificationSystem, ChainMiddleware(s.SystemNotificationHandler(), admin...))
	s.RegisterRouteFunc("PATCH "+RouteNotificationAllRead, ChainMiddleware(s.MarkAllReadHandler(), admin...))
	s.RegisterRouteFunc("DELETE "+RouteNotificationDelRead, ChainMiddleware(s.DeleteReadHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteNotificationUnread, ChainMiddleware(s.UnreadCountHandler(), admin...))

	// Generic collections
	s.RegisterRouteFunc("GET "+RouteCollection, ChainMiddleware(s.ListHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteCollection, ChainMiddleware(s.CreateHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteItem, ChainMiddleware(s.GetHandler(), admin...))
	s.RegisterRouteFunc("PATCH "+RouteItem, ChainMiddleware(s.UpdateHandler(), admin...))
	s.RegisterRouteFunc("PUT "+RouteItem, ChainMiddleware(s.UpdateHandler(), admin...))
	s.RegisterRouteFunc("DELETE "+RouteItem, ChainMiddleware(s.DeleteHandler(), admin...))
	s.RegisterRouteFunc("GET "+RouteItemAction, ChainMiddleware(s.GetActionHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteItemAction, ChainMiddleware(s.ActionHandler(), admin...))
	s.RegisterRouteFunc("PATCH "+RouteItemAction, ChainMiddleware(s.ActionHandler(), admin...))
	s.RegisterRouteFunc("POST "+RouteItemActionItem, ChainMiddleware(s.LinkHandler(true), admin...))
	s.RegisterRouteFunc("DELETE "+RouteItemActionItem, ChainMiddleware(s.LinkHandler(false), admin...))
}
