package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock drives the limiter and the memory store from test time.
type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time { return f.now }

func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestLimiter(limit int, window time.Duration) (*Limiter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now
	limiter := New(store, limit, window)
	limiter.now = clock.Now
	return limiter, clock
}

func TestLimiter_AdmitsExactlyLimitPerWindow(t *testing.T) {
	limiter, _ := newTestLimiter(10, time.Minute)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		d, err := limiter.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed, "request %d should be admitted", i+1)
		assert.Equal(t, 10-(i+1), d.Remaining)
	}

	d, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
	assert.Greater(t, d.RetryAfter, time.Duration(0))
}

func TestLimiter_RemainingNeverNegative(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		d, err := limiter.Allow(ctx, "client-1")
		require.NoError(t, err)
		assert.GreaterOrEqual(t, d.Remaining, 0)
	}
}

func TestLimiter_WindowReset(t *testing.T) {
	limiter, clock := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		d, err := limiter.Allow(ctx, "client-1")
		require.NoError(t, err)
		require.True(t, d.Allowed)
	}
	d, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	clock.Advance(time.Minute)

	d, err = limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
}

func TestLimiter_KeysAreIndependent(t *testing.T) {
	limiter, _ := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	d, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	require.True(t, d.Allowed)

	d, err = limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)

	d, err = limiter.Allow(ctx, "client-2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_RetryAfterTracksRemainingWindow(t *testing.T) {
	limiter, clock := newTestLimiter(1, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)

	clock.Advance(45 * time.Second)

	d, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	require.False(t, d.Allowed)
	assert.Equal(t, 15*time.Second, d.RetryAfter)
	assert.Equal(t, clock.Now().Add(15*time.Second), d.ResetAt)
}

func TestLimiter_SnapshotDoesNotConsume(t *testing.T) {
	limiter, _ := newTestLimiter(2, time.Minute)
	ctx := context.Background()

	_, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		d, err := limiter.Snapshot(ctx, "client-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
		assert.Equal(t, 1, d.Remaining)
	}

	d, err := limiter.Allow(ctx, "client-1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter_SnapshotOfUnknownKey(t *testing.T) {
	limiter, _ := newTestLimiter(10, time.Minute)

	d, err := limiter.Snapshot(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Equal(t, 10, d.Remaining)
}

func TestMemoryStore_CleanupDropsExpiredWindows(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now

	_, _, err := store.Incr(context.Background(), "k1", time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)
	store.Cleanup()

	count, _, err := store.Peek(context.Background(), "k1")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, store.entries)
}

func TestMemoryStore_JanitorDropsExpiredWindows(t *testing.T) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	store := NewMemoryStore()
	store.now = clock.Now

	_, _, err := store.Incr(context.Background(), "k1", time.Minute)
	require.NoError(t, err)

	clock.Advance(2 * time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store.StartJanitor(ctx, time.Millisecond)

	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()
		return len(store.entries) == 0
	}, time.Second, 5*time.Millisecond)
}
