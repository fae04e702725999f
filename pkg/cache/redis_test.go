package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/storefront/pkg/cache"
)

type item struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func TestJSONRoundTripAndExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	var got item
	ok, err := rc.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "miss on empty cache")

	require.NoError(t, rc.SetJSON(ctx, "k", item{ID: 7, Name: "lamp"}, time.Minute))
	ok, err = rc.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, item{ID: 7, Name: "lamp"}, got)

	mr.FastForward(2 * time.Minute)
	ok, err = rc.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	assert.False(t, ok, "expired")
}

func TestDelete(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := cache.NewFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	ctx := context.Background()

	require.NoError(t, rc.Set(ctx, "a", "1", 0))
	require.NoError(t, rc.Set(ctx, "b", "2", 0))
	require.NoError(t, rc.Delete(ctx, "a", "b", "missing"))
	require.NoError(t, rc.Delete(ctx))

	v, err := rc.Get(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, v)
}
