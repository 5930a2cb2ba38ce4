package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, ""), mr
}

func TestRedisStore_IncrStartsWindow(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	count, ttl, err := store.Incr(ctx, "client-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Equal(t, time.Minute, ttl)
	assert.True(t, mr.Exists("ratelimit:client-1"))
}

func TestRedisStore_IncrCountsWithinWindow(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		count, ttl, err := store.Incr(ctx, "client-1", time.Minute)
		require.NoError(t, err)
		assert.Equal(t, i, count)
		assert.Greater(t, ttl, time.Duration(0))
	}
}

func TestRedisStore_WindowExpiryResetsCount(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Incr(ctx, "client-1", time.Minute)
	require.NoError(t, err)
	_, _, err = store.Incr(ctx, "client-1", time.Minute)
	require.NoError(t, err)

	mr.FastForward(time.Minute + time.Second)

	count, _, err := store.Incr(ctx, "client-1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRedisStore_PeekDoesNotBump(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	count, ttl, err := store.Peek(ctx, "client-1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, ttl)

	_, _, err = store.Incr(ctx, "client-1", time.Minute)
	require.NoError(t, err)

	count, ttl, err = store.Peek(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Greater(t, ttl, time.Duration(0))

	count, _, err = store.Peek(ctx, "client-1")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestRedisStore_KeysShareNothing(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	_, _, err := store.Incr(ctx, "client-1", time.Minute)
	require.NoError(t, err)

	count, _, err := store.Peek(ctx, "client-2")
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestLimiter_OverRedisStore(t *testing.T) {
	store, _ := newRedisStore(t)
	limiter := New(store, 3, time.Minute)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		d, err := limiter.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	}
	d, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}
