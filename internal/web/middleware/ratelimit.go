package middleware

import (
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/restgen/internal/web/ratelimit"
	"github.com/conduit-lang/restgen/internal/web/response"
)

// RateLimitConfig holds configuration for rate limiting middleware
type RateLimitConfig struct {
	Limiter ratelimit.Limiter
	// KeyFunc extracts the rate limit key from the request
	KeyFunc func(*http.Request) string
	// FailOpen lets requests through when the limiter returns an error
	FailOpen bool
	Logger   *zap.Logger
}

// RateLimit creates a rate limiting middleware keyed by client IP that fails open
func RateLimit(limiter ratelimit.Limiter, logger *zap.Logger) Middleware {
	return RateLimitWithConfig(RateLimitConfig{
		Limiter:  limiter,
		KeyFunc:  IPKeyFunc,
		FailOpen: true,
		Logger:   logger,
	})
}

// RateLimitWithConfig creates a rate limiting middleware with custom configuration
func RateLimitWithConfig(config RateLimitConfig) Middleware {
	if config.KeyFunc == nil {
		config.KeyFunc = IPKeyFunc
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := config.KeyFunc(r)

			d, err := config.Limiter.Allow(r.Context(), key)
			if err != nil {
				config.Logger.Warn("rate limit check failed", zap.String("key", key), zap.Error(err))
				if config.FailOpen {
					next.ServeHTTP(w, r)
				} else {
					response.InternalServerError(w)
				}
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))

			if !d.Allowed {
				w.Header().Set("Retry-After", strconv.FormatInt(d.RetryAfter(time.Now()), 10))
				response.WriteError(w, http.StatusTooManyRequests, response.CodeTooManyRequests, "Rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// IPKeyFunc keys requests by client IP. X-Forwarded-For and X-Real-IP are
// consulted before RemoteAddr.
func IPKeyFunc(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
