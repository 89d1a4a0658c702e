package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jrsteele09/wedding-site/auth"
	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/rs/zerolog/log"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type tokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// PasswordLoginHandler handles POST /api/admin/auth with {"password": "..."}.
func (s *Server) PasswordLoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.config.GetAuthSecret() == "" {
			log.Error().Msg("AUTH_SECRET is not configured; password login disabled")
			writeError(w, http.StatusInternalServerError, msgAuthSecretMissing)
			return
		}

		var body map[string]any
		if err := decodeJSON(w, r, &body); err != nil {
			log.Err(err).Msg("Failed to decode login request")
			writeError(w, http.StatusInternalServerError, msgAuthFailed)
			return
		}
		password, _ := body["password"].(string)

		tok, err := s.passwordLogin.Login(password)
		switch {
		case err == nil:
			s.recordLogin(r, auth.LoginAttempt{Method: auth.LoginMethodPassword, Success: true})
			writeJSON(w, http.StatusOK, tokenResponse{Success: true, Token: tok})
		case errors.Is(err, errors.ErrInvalidCredentials):
			s.recordLogin(r, auth.LoginAttempt{Method: auth.LoginMethodPassword, Reason: "invalid_password"})
			writeError(w, http.StatusUnauthorized, msgInvalidPassword)
		case errors.Is(err, errors.ErrConfiguration):
			log.Err(err).Msg("Password login is not configured")
			writeError(w, http.StatusInternalServerError, msgPasswordMissing)
		default:
			log.Err(err).Msg("Password login failed")
			writeError(w, http.StatusInternalServerError, msgAuthFailed)
		}
	}
}

// SessionHandler lets the admin UI check a stored token is still valid.
func (s *Server) SessionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

type auditResponse struct {
	Success  bool                `json:"success"`
	Attempts []auth.LoginAttempt `json:"attempts"`
}

// AuditHandler lists recent login attempts, newest first (?limit=N).
func (s *Server) AuditHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.repos.Audit == nil {
			writeJSON(w, http.StatusOK, auditResponse{Success: true, Attempts: []auth.LoginAttempt{}})
			return
		}

		limit := defaultAuditLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				writeError(w, http.StatusBadRequest, "Invalid limit")
				return
			}
			limit = min(n, maxAuditLimit)
		}

		attempts, err := s.repos.Audit.ListLoginAttempts(r.Context(), limit)
		if err != nil {
			log.Err(err).Msg("Failed to list login attempts")
			writeError(w, http.StatusInternalServerError, "Failed to fetch login attempts")
			return
		}
		writeJSON(w, http.StatusOK, auditResponse{Success: true, Attempts: attempts})
	}
}

func (s *Server) recordLogin(r *http.Request, attempt auth.LoginAttempt) {
	if s.repos.Audit == nil {
		return
	}
	attempt.RemoteAddr = s.remoteAddr(r)
	attempt.CreatedAt = time.Now().UTC()
	if err := s.repos.Audit.RecordLoginAttempt(r.Context(), attempt); err != nil {
		log.Err(err).Msg("Failed to record login attempt")
	}
}
