package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a middleware that admits browser calls from allowedOrigins.
// Each entry must be a full origin (scheme + host, no trailing slash). The
// API only serves GET and POST, plus the preflight OPTIONS.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:         600,
	})
	return c.Handler
}
