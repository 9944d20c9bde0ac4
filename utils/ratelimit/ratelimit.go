package ratelimit

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Limiter defines the interface for rate limiting operations.
type Limiter interface {
	// Allow checks if a request should be allowed based on rate limits.
	// Returns true if allowed, false if rate limit exceeded.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)

	// Reset resets the rate limit counter for a key.
	Reset(ctx context.Context, key string) error
}

// WindowLimiter implements rate limiting using time-bucketed counters in
// Redis. Atomic INCR keeps it correct across multiple service instances.
type WindowLimiter struct {
	redisClient *redis.Client
	logger      *zap.Logger
	fallback    bool // If true, allow requests when Redis is unavailable (fail-open)
}

// NewWindowLimiter creates a fixed-window limiter. With fallback enabled it
// fails open: requests pass when Redis is down.
func NewWindowLimiter(redisClient *redis.Client, logger *zap.Logger, fallback bool) *WindowLimiter {
	return &WindowLimiter{
		redisClient: redisClient,
		logger:      logger,
		fallback:    fallback,
	}
}

// Allow counts one request against the current window for key.
func (l *WindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if l.redisClient == nil {
		// Degraded deployment without Redis: no limiting.
		return true, nil
	}

	bucketKey := l.getBucketKey(key, time.Now(), window)

	pipe := l.redisClient.Pipeline()
	incrCmd := pipe.Incr(ctx, bucketKey)
	pipe.Expire(ctx, bucketKey, window+time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		if l.fallback {
			l.logger.Warn("rate limit check failed, allowing request (fail-open)",
				zap.String("key", key),
				zap.Error(err),
			)
			return true, nil
		}
		return false, fmt.Errorf("rate limit check failed: %w", err)
	}

	count := incrCmd.Val()
	allowed := count <= int64(limit)
	if !allowed {
		l.logger.Warn("rate limit exceeded",
			zap.String("key", key),
			zap.Int64("count", count),
			zap.Int("limit", limit),
			zap.Duration("window", window),
		)
	}
	return allowed, nil
}

// Reset clears the current and previous window buckets for a key.
func (l *WindowLimiter) Reset(ctx context.Context, key string) error {
	if l.redisClient == nil {
		return nil
	}

	now := time.Now()
	windows := []time.Duration{time.Minute, time.Hour, 24 * time.Hour}

	var keys []string
	for _, window := range windows {
		keys = append(keys, l.getBucketKey(key, now, window))
		keys = append(keys, l.getBucketKey(key, now.Add(-window), window))
	}

	if err := l.redisClient.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("failed to reset rate limit for key %s: %w", key, err)
	}
	return nil
}

// getBucketKey generates a time-based bucket key for rate limiting.
func (l *WindowLimiter) getBucketKey(key string, now time.Time, window time.Duration) string {
	var bucketTime int64
	switch {
	case window <= time.Minute:
		bucketTime = now.Unix() / int64(window.Seconds())
	case window <= time.Hour:
		bucketTime = now.Unix() / 60 / int64(window.Minutes())
	default:
		bucketTime = now.Unix() / 3600 / int64(window.Hours())
	}
	return fmt.Sprintf("ratelimit:%s:%d", key, bucketTime)
}
