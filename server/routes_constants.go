package server

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Admin auth
	RouteAdminAuth         = "/api/admin/auth"
	RouteAdminAuthGoogle   = "/api/admin/auth/google"
	RouteAdminAuthCallback = "/api/admin/auth/callback"
	RouteAdminAuthSession  = "/api/admin/auth/session"
	RouteAdminAudit        = "/api/admin/audit"

	// Site content
	RouteConfig = "/api/config"
	RouteRSVP   = "/api/rsvp"

	// Images
	RouteUpload = "/api/upload"
	RouteImages = "/api/images/"

	RouteHealth = "/healthz"
)
