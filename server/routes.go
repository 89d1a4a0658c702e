package server

func (s *Server) initRoutes() {
	// ADMIN AUTH
	s.RegisterRouteFunc("POST "+RouteAdminAuth, s.PasswordLoginHandler())
	s.RegisterRouteFunc("GET "+RouteAdminAuthGoogle, s.GoogleLoginHandler())
	s.RegisterRouteFunc("GET "+RouteAdminAuthCallback, s.OAuthCallbackHandler())
	s.RegisterRouteFunc("GET "+RouteAdminAuthSession, ChainMiddleware(s.SessionHandler(), s.RequireAdmin))
	s.RegisterRouteFunc("GET "+RouteAdminAudit, ChainMiddleware(s.AuditHandler(), s.RequireAdmin))

	// SITE CONFIG
	s.RegisterRouteFunc("GET "+RouteConfig, s.GetConfigHandler())
	s.RegisterRouteFunc("PUT "+RouteConfig, ChainMiddleware(s.PutConfigHandler(), s.RequireAdmin))

	// RSVP
	s.RegisterRouteFunc("POST "+RouteRSVP, s.SubmitRSVPHandler())
	s.RegisterRouteFunc("GET "+RouteRSVP, ChainMiddleware(s.ListRSVPsHandler(), s.RequireAdmin))
	s.RegisterRouteFunc("DELETE "+RouteRSVP, ChainMiddleware(s.DeleteRSVPHandler(), s.RequireAdmin))

	// IMAGES
	s.RegisterRouteFunc("POST "+RouteUpload, ChainMiddleware(s.UploadImageHandler(), s.RequireAdmin))
	s.RegisterRouteFunc("DELETE "+RouteUpload, ChainMiddleware(s.DeleteImageHandler(), s.RequireAdmin))
	s.RegisterRouteFunc("GET "+RouteImages+"{key...}", s.ServeImageHandler())

	s.RegisterRouteFunc("GET "+RouteHealth, s.HealthHandler())
}
