package middleware

import (
	"net/http"

	"github.com/rs/cors"

	"github.com/davidbz/troubleshooter/internal/config"
)

// exposedHeaders lets browser clients read correlation and throttling headers.
//
//nolint:gochecknoglobals // Read-only header list
var exposedHeaders = []string{"X-Request-Id", "X-Trace-Id", "Retry-After"}

// CORS lets browser front ends call the troubleshoot endpoints from another origin.
// A nil config disables the middleware.
func CORS(cfg *config.CORSConfig) Middleware {
	if cfg == nil {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	policy := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   cfg.AllowedMethods,
		AllowedHeaders:   cfg.AllowedHeaders,
		ExposedHeaders:   exposedHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           cfg.MaxAge,
	})

	return policy.Handler
}
