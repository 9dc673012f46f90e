package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Identity routes
	RouteRegister     = "/api/v1/auth/register"
	RouteLogin        = "/api/v1/auth/login"
	RouteRefreshToken = "/api/v1/auth/refresh-token"
	RouteLogout       = "/api/v1/auth/logout"
	RouteMe           = "/api/v1/auth/me"

	// Tenant routes
	RouteTenant     = "/api/v1/tenant"
	RouteTenantByID = "/api/v1/tenant/{id}"

	// Operational routes
	RouteHealthz = "/healthz"
)

// Canonical controller and action names used by the endpoint role table.
// Every protected route is registered with its pair at compile time; there
// is no runtime discovery of handler names.
const (
	ControllerAuth   = "auth"
	ControllerTenant = "tenant"

	ActionRegister     = "register"
	ActionRefreshToken = "refresh_token"
	ActionLogout       = "logout"
	ActionMe           = "me"

	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionGetByID = "get_by_id"
	ActionGetAll  = "get_all"
)
