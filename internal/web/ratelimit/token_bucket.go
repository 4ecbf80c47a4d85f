package ratelimit

import (
	"context"
	"sync"
	"time"
)

// TokenBucket is an in-memory limiter. Each key owns a bucket of Capacity
// tokens that refills completely over Window.
type TokenBucket struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	capacity int
	window   time.Duration
	now      func() time.Time

	cleanup *time.Ticker
	done    chan struct{}
	once    sync.Once
}

type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// TokenBucketConfig holds configuration for the token bucket limiter
type TokenBucketConfig struct {
	Capacity int
	Window   time.Duration
	// CleanupInterval is how often idle buckets are dropped; zero disables cleanup
	CleanupInterval time.Duration
}

// DefaultTokenBucketConfig allows 100 requests per minute
func DefaultTokenBucketConfig() TokenBucketConfig {
	return TokenBucketConfig{
		Capacity:        100,
		Window:          time.Minute,
		CleanupInterval: 5 * time.Minute,
	}
}

// NewTokenBucket creates a token bucket limiter
func NewTokenBucket(config TokenBucketConfig) *TokenBucket {
	tb := &TokenBucket{
		buckets:  make(map[string]*bucket),
		capacity: config.Capacity,
		window:   config.Window,
		now:      time.Now,
		done:     make(chan struct{}),
	}

	if config.CleanupInterval > 0 {
		tb.cleanup = time.NewTicker(config.CleanupInterval)
		go tb.cleanupLoop()
	}

	return tb
}

// Allow takes one token from the bucket of key
func (tb *TokenBucket) Allow(ctx context.Context, key string) (*Decision, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	b, exists := tb.buckets[key]
	if !exists {
		b = &bucket{tokens: float64(tb.capacity), lastRefill: now}
		tb.buckets[key] = b
	} else if elapsed := now.Sub(b.lastRefill); elapsed > 0 {
		b.tokens += float64(tb.capacity) * elapsed.Seconds() / tb.window.Seconds()
		if b.tokens > float64(tb.capacity) {
			b.tokens = float64(tb.capacity)
		}
		b.lastRefill = now
	}

	d := &Decision{Limit: tb.capacity}
	if b.tokens >= 1 {
		b.tokens--
		d.Allowed = true
	}
	d.Remaining = int(b.tokens)
	d.ResetAt = now.Add(tb.untilNextToken(b.tokens))
	return d, nil
}

func (tb *TokenBucket) untilNextToken(tokens float64) time.Duration {
	if tokens >= 1 {
		return 0
	}
	perToken := tb.window.Seconds() / float64(tb.capacity)
	return time.Duration((1 - tokens) * perToken * float64(time.Second))
}

func (tb *TokenBucket) cleanupLoop() {
	for {
		select {
		case <-tb.cleanup.C:
			tb.dropIdle()
		case <-tb.done:
			return
		}
	}
}

// dropIdle removes buckets that have been full for at least a window
func (tb *TokenBucket) dropIdle() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	now := tb.now()
	for key, b := range tb.buckets {
		if now.Sub(b.lastRefill) > 2*tb.window {
			delete(tb.buckets, key)
		}
	}
}

// Close stops the cleanup goroutine
func (tb *TokenBucket) Close() error {
	tb.once.Do(func() {
		close(tb.done)
		if tb.cleanup != nil {
			tb.cleanup.Stop()
		}
	})
	return nil
}
