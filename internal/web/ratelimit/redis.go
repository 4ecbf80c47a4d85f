package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// slidingWindow keeps one sorted-set member per accepted request, scored by
// its time in nanoseconds.
var slidingWindow = redis.NewScript(`
	local key = KEYS[1]
	local now = tonumber(ARGV[1])
	local window_start = tonumber(ARGV[2])
	local limit = tonumber(ARGV[3])
	local ttl = tonumber(ARGV[4])
	local member = ARGV[5]

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start)
	local current = redis.call('ZCARD', key)

	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('PEXPIRE', key, ttl)
		return {1, current + 1, 0}
	end

	local oldest = redis.call('ZRANGE', key, 0, 0, 'WITHSCORES')
	return {0, current, tonumber(oldest[2])}
`)

// RedisLimiter is a sliding window limiter shared by all instances using the same Redis
type RedisLimiter struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

// RedisLimiterConfig holds configuration for the Redis limiter
type RedisLimiterConfig struct {
	Client redis.UniversalClient
	Limit  int
	Window time.Duration
	// Prefix is prepended to every Redis key
	Prefix string
}

// NewRedisLimiter creates a Redis limiter
func NewRedisLimiter(config RedisLimiterConfig) (*RedisLimiter, error) {
	if config.Client == nil {
		return nil, errors.New("redis client is required")
	}
	if config.Limit <= 0 {
		return nil, errors.New("limit must be greater than 0")
	}
	if config.Window <= 0 {
		return nil, errors.New("window must be greater than 0")
	}
	if config.Prefix == "" {
		config.Prefix = "restgen:ratelimit:"
	}

	return &RedisLimiter{
		client: config.Client,
		limit:  config.Limit,
		window: config.Window,
		prefix: config.Prefix,
	}, nil
}

// Allow records a request for key if the window has room for it
func (r *RedisLimiter) Allow(ctx context.Context, key string) (*Decision, error) {
	now := time.Now()

	result, err := slidingWindow.Run(ctx, r.client, []string{r.prefix + key},
		now.UnixNano(),
		now.Add(-r.window).UnixNano(),
		r.limit,
		r.window.Milliseconds(),
		uuid.NewString(),
	).Int64Slice()
	if err != nil {
		return nil, fmt.Errorf("redis rate limit check failed: %w", err)
	}
	if len(result) != 3 {
		return nil, fmt.Errorf("unexpected redis script result %v", result)
	}

	d := &Decision{
		Limit:     r.limit,
		Remaining: r.limit - int(result[1]),
		Allowed:   result[0] == 1,
		ResetAt:   now,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.ResetAt = time.Unix(0, result[2]).Add(r.window)
	}
	return d, nil
}

// Reset removes all rate limit data for key
func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

// Count returns the number of requests recorded for key in the current window
func (r *RedisLimiter) Count(ctx context.Context, key string) (int, error) {
	redisKey := r.prefix + key
	windowStart := time.Now().Add(-r.window).UnixNano()

	pipe := r.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprint(windowStart))
	countCmd := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("failed to get count: %w", err)
	}

	return int(countCmd.Val()), nil
}
