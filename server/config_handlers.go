package server

import (
	"encoding/json"
	"net/http"

	"github.com/jrsteele09/wedding-site/internal/errors"
	"github.com/jrsteele09/wedding-site/siteconfig"
	"github.com/rs/zerolog/log"
)

type configResponse struct {
	Success bool            `json:"success"`
	Config  json.RawMessage `json:"config"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetConfigHandler returns the site content, or null before the first save.
func (s *Server) GetConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doc, err := s.repos.SiteConfig.Get(r.Context())
		switch {
		case errors.Is(err, errors.ErrNotFound):
			writeJSON(w, http.StatusOK, configResponse{Success: true, Config: json.RawMessage("null")})
		case err != nil:
			log.Err(err).Msg("Config fetch failed")
			writeError(w, http.StatusInternalServerError, "Failed to fetch config")
		default:
			writeJSON(w, http.StatusOK, configResponse{Success: true, Config: json.RawMessage(doc)})
		}
	}
}

// PutConfigHandler replaces the site content with body.config.
func (s *Server) PutConfigHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Config json.RawMessage `json:"config"`
		}
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidRequestBody)
			return
		}

		doc, err := siteconfig.Normalize(body.Config)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid config format")
			return
		}

		if err := s.repos.SiteConfig.Put(r.Context(), doc); err != nil {
			log.Err(err).Msg("Config save failed")
			writeError(w, http.StatusInternalServerError, "Failed to save config")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Config saved"})
	}
}
