package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// CORS returns a middleware that sets Access-Control-* headers and answers preflight.
// "*" in allowedOrigins allows any origin; an empty list disables CORS entirely.
func CORS(allowedOrigins []string) func(next http.Handler) http.Handler {
	if len(allowedOrigins) == 0 {
		return noopMiddleware
	}
	c := cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         86400,
	})
	return c.Handler
}
