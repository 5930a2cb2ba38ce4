package ratelimit

import (
	"context"
	"time"
)

// CounterStore tracks fixed-window counters per opaque client key. An
// in-process implementation backs single-instance deployments; the Redis
// implementation shares counters across instances.
type CounterStore interface {
	// Incr bumps the counter for key, starting a fresh window of the given
	// duration when none is active, and returns the resulting count plus
	// the time remaining in the window.
	Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error)
	// Peek returns the current count and remaining window without bumping.
	Peek(ctx context.Context, key string) (int, time.Duration, error)
}

// Decision is the outcome of an admission check, carrying everything the
// HTTP layer needs for X-RateLimit headers.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

// Limiter is a fixed-window request limiter keyed by client identity. Keys
// are treated opaquely; deriving them is the caller's concern.
type Limiter struct {
	store  CounterStore
	limit  int
	window time.Duration
	now    func() time.Time
}

const (
	// DefaultLimit is the number of requests admitted per window.
	DefaultLimit = 10
	// DefaultWindow is the fixed window duration.
	DefaultWindow = 60 * time.Second
)

// New constructs a limiter over the given store. Non-positive limit or
// window fall back to the defaults.
func New(store CounterStore, limit int, window time.Duration) *Limiter {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if window <= 0 {
		window = DefaultWindow
	}
	return &Limiter{store: store, limit: limit, window: window, now: time.Now}
}

// Allow counts a request against key and decides admission. Exactly limit
// requests are admitted per window; further requests are rejected until the
// window resets.
func (l *Limiter) Allow(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := l.store.Incr(ctx, key, l.window)
	if err != nil {
		return Decision{}, err
	}
	return l.decision(count, ttl), nil
}

// Snapshot reports the current window state for key without consuming a
// request, for observability headers on non-limited responses.
func (l *Limiter) Snapshot(ctx context.Context, key string) (Decision, error) {
	count, ttl, err := l.store.Peek(ctx, key)
	if err != nil {
		return Decision{}, err
	}
	d := l.decision(count, ttl)
	d.Allowed = true
	d.RetryAfter = 0
	return d, nil
}

// Limit returns the configured per-window maximum.
func (l *Limiter) Limit() int { return l.limit }

// Window returns the configured window duration.
func (l *Limiter) Window() time.Duration { return l.window }

func (l *Limiter) decision(count int, ttl time.Duration) Decision {
	if ttl < 0 {
		ttl = 0
	}
	remaining := l.limit - count
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{
		Allowed:   count <= l.limit,
		Limit:     l.limit,
		Remaining: remaining,
		ResetAt:   l.now().Add(ttl),
	}
	if !d.Allowed {
		d.RetryAfter = ttl
	}
	return d
}
