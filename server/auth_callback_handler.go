package server

import (
	"net/http"

	"github.com/jrsteele09/wedding-site/auth"
	"github.com/rs/zerolog/log"
)

// GoogleLoginHandler starts the Google sign-in: it stores a fresh CSRF state
// in a cookie and redirects to the consent page.
func (s *Server) GoogleLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.oauthReady(w) {
			return
		}

		state, authURL := s.oauth.Begin(s.callbackURL(r))
		s.setStateCookie(w, r, state)
		http.Redirect(w, r, authURL, http.StatusFound)
	}
}

// OAuthCallbackHandler finishes the Google sign-in. Every outcome clears the
// state cookie. Configured deployments then redirect to the admin page with
// either #token= or #error=<reason>.
func (s *Server) OAuthCallbackHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.clearStateCookie(w, r)
		if !s.oauthReady(w) {
			return
		}

		q := r.URL.Query()
		params := auth.CallbackParams{
			Code:        q.Get("code"),
			State:       q.Get("state"),
			Error:       q.Get("error"),
			CookieState: stateFromCookie(r),
			RedirectURI: s.callbackURL(r),
			RemoteAddr:  s.remoteAddr(r),
		}

		tok, err := s.oauth.Complete(r.Context(), params)
		if err != nil {
			reason := auth.ReasonOf(err)
			log.Info().Str("reason", string(reason)).Msg("Google sign-in denied")
			http.Redirect(w, r, s.adminURL(r, "error="+string(reason)), http.StatusFound)
			return
		}
		http.Redirect(w, r, s.adminURL(r, "token="+tok), http.StatusFound)
	}
}

// oauthReady answers 500 when Google sign-in cannot run with the current
// configuration.
func (s *Server) oauthReady(w http.ResponseWriter) bool {
	if s.config.GetAuthSecret() == "" {
		log.Error().Msg("AUTH_SECRET is not configured; Google sign-in disabled")
		writeError(w, http.StatusInternalServerError, msgAuthSecretMissing)
		return false
	}
	if s.oauth == nil || s.config.GetGoogleClientSecret() == "" {
		log.Error().Msg("Google sign-in is not configured")
		writeError(w, http.StatusInternalServerError, msgGoogleMissing)
		return false
	}
	return true
}
