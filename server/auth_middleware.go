package server

import (
	"net/http"

	"github.com/rs/zerolog/log"
)

// RequireAdmin only lets through requests carrying a valid admin bearer
// token. Every kind of denial gets the same 401 body.
func (s *Server) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.GetAuthSecret() == "" {
			log.Error().Str("path", r.URL.Path).Msg("AUTH_SECRET is not configured; refusing admin request")
			writeError(w, http.StatusInternalServerError, msgAuthSecretMissing)
			return
		}
		if !s.gate.Authorize(r.Header).Allowed {
			writeError(w, http.StatusUnauthorized, msgUnauthorized)
			return
		}
		next(w, r)
	}
}
