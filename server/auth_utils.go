package server

import (
	"net"
	"net/http"
	"net/url"
	"strings"
)

const (
	// oauthStateCookie holds the CSRF state between the redirect to Google
	// and the callback.
	oauthStateCookie = "oauth_state"
	oauthStateMaxAge = 600
)

// origin is the public scheme://host of the site. The configured SITE_ORIGIN
// wins; otherwise it is derived from the request.
func (s *Server) origin(r *http.Request) string {
	if o := s.config.GetSiteOrigin(); o != "" {
		return o
	}
	return getScheme(r) + "://" + r.Host
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		scheme, _, _ = strings.Cut(scheme, ",")
		return strings.ToLower(strings.TrimSpace(scheme))
	}
	return "http"
}

func (s *Server) callbackURL(r *http.Request) string {
	return s.origin(r) + RouteAdminAuthCallback
}

// adminURL is where the browser lands after the OAuth callback. The result
// travels in the fragment so it never reaches server logs.
func (s *Server) adminURL(r *http.Request, fragment string) string {
	return s.origin(r) + s.config.GetAdminPath() + "#" + fragment
}

// isLocalHTTP reports whether origin is plain http on a loopback host, the
// only case where cookies go without the Secure flag.
func isLocalHTTP(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil || u.Scheme != "http" {
		return false
	}
	host := u.Hostname()
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func (s *Server) setStateCookie(w http.ResponseWriter, r *http.Request, state string) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     RouteAdminAuth,
		MaxAge:   oauthStateMaxAge,
		HttpOnly: true,
		Secure:   !isLocalHTTP(s.origin(r)),
		SameSite: http.SameSiteLaxMode,
	})
}

// clearStateCookie expires the state cookie (Max-Age=0) on the same path.
func (s *Server) clearStateCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     RouteAdminAuth,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   !isLocalHTTP(s.origin(r)),
		SameSite: http.SameSiteLaxMode,
	})
}

func stateFromCookie(r *http.Request) string {
	c, err := r.Cookie(oauthStateCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// remoteAddr is the client IP. X-Forwarded-For is only read when the server
// sits behind a proxy that sets it (TRUST_PROXY).
func (s *Server) remoteAddr(r *http.Request) string {
	if s.config.TrustProxy() {
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
