package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/davidbz/troubleshooter/internal/observability"
)

const keyPrefix = "ratelimit:"

// Limiter implements a fixed-window request limiter backed by Redis.
type Limiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	now    func() time.Time
}

// NewLimiter creates a new Redis limiter allowing limit requests per window.
func NewLimiter(client *redis.Client, limit int, window time.Duration) (*Limiter, error) {
	if client == nil {
		return nil, errors.New("redis client cannot be nil")
	}

	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}

	if window <= 0 {
		return nil, fmt.Errorf("window must be positive, got %s", window)
	}

	return &Limiter{
		client: client,
		limit:  limit,
		window: window,
		now:    time.Now,
	}, nil
}

// Allow records one request for key and reports whether it fits in the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	logger := observability.FromContext(ctx)

	windowKey := l.windowKey(key)

	pipe := l.client.TxPipeline()
	count := pipe.Incr(ctx, windowKey)
	pipe.Expire(ctx, windowKey, l.window)

	if _, execErr := pipe.Exec(ctx); execErr != nil {
		logger.Error("rate limit update failed",
			observability.Error(execErr),
			observability.String("key", windowKey))
		return false, fmt.Errorf("failed to update rate limit: %w", execErr)
	}

	allowed := count.Val() <= int64(l.limit)
	if !allowed {
		logger.Info("rate limit exceeded",
			observability.String("key", windowKey),
			observability.Int("limit", l.limit))
	}

	return allowed, nil
}

// windowKey buckets key into the current fixed window.
func (l *Limiter) windowKey(key string) string {
	window := l.now().UnixNano() / int64(l.window)
	return fmt.Sprintf("%s%s:%d", keyPrefix, key, window)
}

// Close releases the underlying Redis connection pool.
func (l *Limiter) Close() error {
	return l.client.Close()
}
