package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps per-key window counters in process memory. Counters are
// lost on restart and not shared across instances; use RedisStore for
// multi-instance deployments.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time
}

type windowEntry struct {
	count   int
	resetAt time.Time
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Incr implements CounterStore.
func (s *MemoryStore) Incr(_ context.Context, key string, window time.Duration) (int, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.resetAt) {
		ent = &windowEntry{count: 1, resetAt: now.Add(window)}
		s.entries[key] = ent
		return ent.count, window, nil
	}
	ent.count++
	return ent.count, ent.resetAt.Sub(now), nil
}

// Peek implements CounterStore.
func (s *MemoryStore) Peek(_ context.Context, key string) (int, time.Duration, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	ent, ok := s.entries[key]
	if !ok || !now.Before(ent.resetAt) {
		return 0, 0, nil
	}
	return ent.count, ent.resetAt.Sub(now), nil
}

// StartJanitor runs Cleanup every interval until ctx is cancelled. Without
// it, expired windows for one-shot client keys accumulate for the process
// lifetime.
func (s *MemoryStore) StartJanitor(ctx context.Context, interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Cleanup()
			}
		}
	}()
}

// Cleanup drops expired windows.
func (s *MemoryStore) Cleanup() {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for key, ent := range s.entries {
		if !now.Before(ent.resetAt) {
			delete(s.entries, key)
		}
	}
}
