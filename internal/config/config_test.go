package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lead-service", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:8080", cfg.App.Addr())
	assert.Equal(t, 30*time.Second, cfg.App.RequestTimeout())
	assert.Equal(t, "127.0.0.1:6379", cfg.Redis.Addr)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 10, cfg.RateLimit.MaxPerWindow)
	assert.Equal(t, 60*time.Second, cfg.RateLimit.Window())
	assert.False(t, cfg.RateLimit.UseRedis)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("APP_NAME", "lead-service-test")
	t.Setenv("APP_PORT", "9090")
	t.Setenv("RATE_LIMIT_MAX_PER_WINDOW", "25")
	t.Setenv("RATE_LIMIT_WINDOW_SECONDS", "120")
	t.Setenv("RATE_LIMIT_USE_REDIS", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "lead-service-test", cfg.App.Name)
	assert.Equal(t, "0.0.0.0:9090", cfg.App.Addr())
	assert.Equal(t, 25, cfg.RateLimit.MaxPerWindow)
	assert.Equal(t, 2*time.Minute, cfg.RateLimit.Window())
	assert.True(t, cfg.RateLimit.UseRedis)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")

	_, err := Load()
	require.Error(t, err)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT_MAX_PER_WINDOW", "lots")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.RateLimit.MaxPerWindow)
}

func TestRateLimitConfig_WindowGuardsNonPositive(t *testing.T) {
	cfg := RateLimitConfig{WindowSeconds: 0}
	assert.Equal(t, 60*time.Second, cfg.Window())
}
