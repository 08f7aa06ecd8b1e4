// Package middleware provides reusable HTTP middleware for the room reservation API.
package middleware

import (
	"net/http"

	"github.com/rs/cors"
)

// Response headers set by this package that browsers may read cross-origin.
const (
	headerRetryAfter         = "Retry-After"
	headerRateLimitLimit     = "X-RateLimit-Limit"
	headerRateLimitRemaining = "X-RateLimit-Remaining"
)

// NewCORSHandler allows the listed origins (scheme + host, no trailing slash)
// to call the API with bearer tokens. Preflight results are cached for ten
// minutes.
func NewCORSHandler(allowedOrigins []string) func(http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
		ExposedHeaders: []string{headerRetryAfter, headerRateLimitLimit, headerRateLimitRemaining, "X-Request-Id"},
		MaxAge:         600,
	}).Handler
}
