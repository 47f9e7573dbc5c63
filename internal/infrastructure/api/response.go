package api

import (
	"encoding/json"
	"net/http"

	"courier-shopify-layer/internal/domain"

	"github.com/rs/zerolog"
)

type errorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeError maps classified errors to their status. Anything unclassified is a 500 with a
// generic message; the cause is only logged.
func writeError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	de := domain.AsError(err)
	if de == nil {
		logger.Error().Err(err).Str("path", r.URL.Path).Msg("Request failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	status := de.Kind.HTTPStatus()
	if status >= http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", r.URL.Path).Str("kind", string(de.Kind)).Msg("Request failed")
	}
	writeJSON(w, status, errorResponse{Error: de.Message, Details: de.Details})
}
