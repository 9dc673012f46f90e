package server

import "net/http"

func (s *Server) initRoutes() {
	// Anonymous routes
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteHealthz, ChainMiddleware(s.HealthzHandler(), s.APIMiddleware()...))

	// Identity routes. The refresh endpoint accepts an expired access token;
	// every other protected route requires a live one.
	s.registerProtected("POST "+RouteRefreshToken, ControllerAuth, ActionRefreshToken, s.RefreshTokenHandler(), s.RequireAuthAllowExpired())
	s.registerProtected("POST "+RouteRegister, ControllerAuth, ActionRegister, s.RegisterHandler(), s.RequireAuth())
	s.registerProtected("POST "+RouteLogout, ControllerAuth, ActionLogout, s.LogoutHandler(), s.RequireAuth())
	s.registerProtected("GET "+RouteMe, ControllerAuth, ActionMe, s.MeHandler(), s.RequireAuth())

	// Tenant routes
	s.registerProtected("POST "+RouteTenant, ControllerTenant, ActionCreate, s.TenantCreateHandler(), s.RequireAuth())
	s.registerProtected("PUT "+RouteTenant, ControllerTenant, ActionUpdate, s.TenantUpdateHandler(), s.RequireAuth())
	s.registerProtected("GET "+RouteTenant, ControllerTenant, ActionGetAll, s.TenantListHandler(), s.RequireAuth())
	s.registerProtected("GET "+RouteTenantByID, ControllerTenant, ActionGetByID, s.TenantGetHandler(), s.RequireAuth())
	s.registerProtected("DELETE "+RouteTenantByID, ControllerTenant, ActionDelete, s.TenantDeleteHandler(), s.RequireAuth())
}

// registerProtected wires a route through the API chain, bearer auth, and
// the endpoint role check for the given controller/action pair.
func (s *Server) registerProtected(pattern, controller, action string, handler http.HandlerFunc, authMiddleware func(http.HandlerFunc) http.HandlerFunc) {
	middleware := append(s.APIMiddleware(), authMiddleware, s.Authorize(controller, action))
	s.RegisterRouteHandler(pattern, ChainMiddleware(handler, middleware...))
}
