package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"courier-shopify-layer/internal/domain"
	"courier-shopify-layer/internal/ports"

	"github.com/rs/zerolog"
)

// BearerAuth verifies the id token in the Authorization header and stores its user id
// in the request context.
func BearerAuth(verifier ports.IdentityVerifier, logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(raw) < 7 || !strings.EqualFold(raw[:7], "bearer ") {
				unauthorized(w, "missing bearer token")
				return
			}
			token := strings.TrimSpace(raw[7:])
			if token == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			userID, err := verifier.Verify(r.Context(), token)
			if err != nil {
				logger.Warn().Err(err).Str("path", r.URL.Path).Msg("Rejected bearer token")
				unauthorized(w, "invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(domain.WithUserID(r.Context(), userID)))
		})
	}
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
