package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"

	"github.com/davidbz/troubleshooter/internal/observability"
)

// Limiter decides whether a client may issue another request.
type Limiter interface {
	// Allow records a request for key and reports whether it is within budget.
	Allow(ctx context.Context, key string) (bool, error)
}

// NoopLimiter allows every request.
type NoopLimiter struct{}

// Allow always returns true.
func (NoopLimiter) Allow(context.Context, string) (bool, error) {
	return true, nil
}

// RateLimit rejects POST requests over the client's budget with 429.
// Limiter failures are logged and the request proceeds.
func RateLimit(limiter Limiter) Middleware {
	if limiter == nil {
		limiter = NoopLimiter{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()

			allowed, err := limiter.Allow(ctx, clientKey(r))
			if err != nil {
				observability.FromContext(ctx).Warn("rate limiter unavailable, allowing request",
					observability.Error(err))
				allowed = true
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("Retry-After", "60")
				w.WriteHeader(http.StatusTooManyRequests)
				_ = json.NewEncoder(w).Encode(map[string]string{"error": "rate limit exceeded"})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientKey identifies the caller by remote IP.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
