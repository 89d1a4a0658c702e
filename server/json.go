package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"
)

const maxJSONBodyBytes = 1 << 20

// Client-facing messages. Details stay in the server log.
const (
	msgUnauthorized       = "Unauthorized"
	msgInvalidPassword    = "Invalid password"
	msgAuthFailed         = "Authentication failed"
	msgInternalError      = "Internal server error"
	msgInvalidRequestBody = "Invalid request body"
	msgNotFound           = "Not found"

	msgAuthSecretMissing = "Server misconfigured: AUTH_SECRET is not set"
	msgPasswordMissing   = "Server misconfigured: ADMIN_PASSWORD is not set"
	msgGoogleMissing     = "Server misconfigured: Google sign-in requires GOOGLE_CLIENT_ID and GOOGLE_CLIENT_SECRET"
)

type errorResponse struct {
	Success bool     `json:"success"`
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Err(err).Msg("Failed to encode JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeValidationError(w http.ResponseWriter, details []string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Validation failed", Details: details})
}

// decodeJSON reads a bounded JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}
