package ratelimit

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore shares fixed-window counters across process instances through
// Redis. Each key lives under a common prefix with a TTL equal to the
// remaining window.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore wraps an existing client. An empty prefix defaults to
// "ratelimit:".
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Incr implements CounterStore via INCR plus a window-length expiry set on
// the first hit of each window.
func (s *RedisStore) Incr(ctx context.Context, key string, window time.Duration) (int, time.Duration, error) {
	k := s.prefix + key

	count, err := s.client.Incr(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if count == 1 {
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		return int(count), window, nil
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		// Key survived without an expiry (e.g. expire call lost); restore it
		// so the window cannot live forever.
		if err := s.client.PExpire(ctx, k, window).Err(); err != nil {
			return 0, 0, err
		}
		ttl = window
	}
	return int(count), ttl, nil
}

// Peek implements CounterStore.
func (s *RedisStore) Peek(ctx context.Context, key string) (int, time.Duration, error) {
	k := s.prefix + key

	count, err := s.client.Get(ctx, k).Int()
	if err == redis.Nil {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, err
	}

	ttl, err := s.client.PTTL(ctx, k).Result()
	if err != nil {
		return 0, 0, err
	}
	if ttl < 0 {
		ttl = 0
	}
	return count, ttl, nil
}
