// Package ratelimit limits the request rate per client key. The in-memory
// token bucket serves single instances; the Redis sliding window is shared
// between instances.
package ratelimit

import (
	"context"
	"time"
)

// Limiter decides whether a request identified by key may proceed
type Limiter interface {
	Allow(ctx context.Context, key string) (*Decision, error)
}

// Decision is the outcome of a rate limit check
type Decision struct {
	// Limit is the maximum number of requests allowed in the window
	Limit int
	// Remaining is the number of requests left in the current window
	Remaining int
	// ResetAt is when a request will be allowed again
	ResetAt time.Time
	Allowed bool
}

// RetryAfter returns the whole seconds until ResetAt, never negative
func (d *Decision) RetryAfter(now time.Time) int64 {
	secs := int64(d.ResetAt.Sub(now).Seconds())
	if secs < 0 {
		return 0
	}
	return secs
}
