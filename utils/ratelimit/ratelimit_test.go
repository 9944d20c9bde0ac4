package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestLimiter(t *testing.T, fallback bool) (*WindowLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewWindowLimiter(client, zap.NewNop(), fallback), mr
}

func TestAllow_UnderLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		allowed, err := limiter.Allow(ctx, "webhook:1.2.3.4", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}
}

func TestAllow_OverLimit(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := limiter.Allow(ctx, "api:1.2.3.4", 3, time.Minute)
		require.NoError(t, err)
	}

	allowed, err := limiter.Allow(ctx, "api:1.2.3.4", 3, time.Minute)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAllow_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "api:a", 1, time.Minute)
	require.NoError(t, err)
	blocked, err := limiter.Allow(ctx, "api:a", 1, time.Minute)
	require.NoError(t, err)
	assert.False(t, blocked)

	other, err := limiter.Allow(ctx, "api:b", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, other)
}

func TestAllow_FailOpenWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, true)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "api:x", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestAllow_FailClosedWhenRedisDown(t *testing.T) {
	limiter, mr := newTestLimiter(t, false)
	mr.Close()

	allowed, err := limiter.Allow(context.Background(), "api:x", 1, time.Minute)
	require.Error(t, err)
	assert.False(t, allowed)
}

func TestReset(t *testing.T) {
	limiter, _ := newTestLimiter(t, false)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "api:a", 1, time.Minute)
	require.NoError(t, err)
	blocked, _ := limiter.Allow(ctx, "api:a", 1, time.Minute)
	require.False(t, blocked)

	require.NoError(t, limiter.Reset(ctx, "api:a"))

	allowed, err := limiter.Allow(ctx, "api:a", 1, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}

func TestNilClientAllowsEverything(t *testing.T) {
	limiter := NewWindowLimiter(nil, zap.NewNop(), false)

	allowed, err := limiter.Allow(context.Background(), "api:x", 0, time.Minute)
	require.NoError(t, err)
	assert.True(t, allowed)
}
