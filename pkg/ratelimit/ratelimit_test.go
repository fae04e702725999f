package ratelimit_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/pkg/ratelimit"
)

func newLimiter(t *testing.T) *ratelimit.RedisRateLimiter {
	t.Helper()
	mr := miniredis.RunT(t)
	return ratelimit.NewRedisRateLimiter(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
}

func TestBurstExhausted(t *testing.T) {
	l := newLimiter(t)
	ctx := context.Background()
	limit := ratelimit.PerSecond(1, 2)

	for i := 0; i < 2; i++ {
		res, err := l.Allow(ctx, "ip:1.2.3.4", limit)
		require.NoError(t, err)
		assert.True(t, res.Allowed, "request %d", i)
	}
	res, err := l.Allow(ctx, "ip:1.2.3.4", limit)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)

	res, err = l.Allow(ctx, "ip:5.6.7.8", limit)
	require.NoError(t, err)
	assert.True(t, res.Allowed, "keys are independent")
}

func TestZeroRateDisablesLimit(t *testing.T) {
	l := newLimiter(t)
	res, err := l.Allow(context.Background(), "k", ratelimit.Limit{})
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}

func TestPerSecondDefaultsBurst(t *testing.T) {
	assert.Equal(t, 5, ratelimit.PerSecond(5, 0).Burst)
}
