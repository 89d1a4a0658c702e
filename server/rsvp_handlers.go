package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/jrsteele09/wedding-site/rsvps"
	"github.com/rs/zerolog/log"
)

type rsvpListResponse struct {
	Success     bool         `json:"success"`
	RSVPs       []rsvps.RSVP `json:"rsvps"`
	Total       int          `json:"total"`
	TotalGuests int          `json:"totalGuests"`
}

// SubmitRSVPHandler is the public RSVP form endpoint.
func (s *Server) SubmitRSVPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := decodeJSON(w, r, &body); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidRequestBody)
			return
		}

		rsvp, details := rsvps.Parse(body)
		if len(details) > 0 {
			writeValidationError(w, details)
			return
		}

		if err := s.repos.RSVPs.Create(r.Context(), &rsvp); err != nil {
			log.Err(err).Msg("RSVP submission failed")
			writeError(w, http.StatusInternalServerError, "Failed to save RSVP. Please try again.")
			return
		}
		writeJSON(w, http.StatusCreated, messageResponse{Success: true, Message: "RSVP received successfully"})
	}
}

func (s *Server) ListRSVPsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := s.repos.RSVPs.List(r.Context())
		if err != nil {
			log.Err(err).Msg("RSVP list failed")
			writeError(w, http.StatusInternalServerError, "Failed to fetch RSVPs")
			return
		}
		writeJSON(w, http.StatusOK, rsvpListResponse{
			Success:     true,
			RSVPs:       list,
			Total:       len(list),
			TotalGuests: rsvps.TotalGuests(list),
		})
	}
}

// DeleteRSVPHandler handles DELETE /api/rsvp?id=N.
func (s *Server) DeleteRSVPHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.ParseInt(strings.TrimSpace(r.URL.Query().Get("id")), 10, 64)
		if err != nil || id <= 0 {
			writeError(w, http.StatusBadRequest, "Invalid RSVP ID")
			return
		}

		if err := s.repos.RSVPs.Delete(r.Context(), id); err != nil {
			log.Err(err).Int64("id", id).Msg("RSVP delete failed")
			writeError(w, http.StatusInternalServerError, "Failed to delete RSVP")
			return
		}
		writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "RSVP deleted"})
	}
}
