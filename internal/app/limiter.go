package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/conduit-lang/restgen/internal/config"
	"github.com/conduit-lang/restgen/internal/web/ratelimit"
)

// NewLimiter creates the configured rate limiter and the function releasing it
func NewLimiter(cfg config.RateLimitConfig) (ratelimit.Limiter, func(context.Context) error, error) {
	switch cfg.Backend {
	case "memory", "":
		tb := ratelimit.NewTokenBucket(ratelimit.TokenBucketConfig{
			Capacity:        cfg.Limit,
			Window:          cfg.Window,
			CleanupInterval: 5 * cfg.Window,
		})
		return tb, func(context.Context) error { return tb.Close() }, nil

	case "redis":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		limiter, err := ratelimit.NewRedisLimiter(ratelimit.RedisLimiterConfig{
			Client: client,
			Limit:  cfg.Limit,
			Window: cfg.Window,
		})
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return limiter, func(context.Context) error { return client.Close() }, nil
	}
	return nil, nil, fmt.Errorf("unsupported rate limit backend: %s", cfg.Backend)
}
