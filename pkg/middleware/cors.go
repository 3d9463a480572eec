package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS lets browser clients call the API. Credentials travel in the
// Authorization header, never cookies. No origins means any origin.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}

	return cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"},
		ExposedHeaders: []string{"Retry-After", "Idempotent-Replayed", "X-Request-ID"},
		MaxAge:         300,
	})
}
