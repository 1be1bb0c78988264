package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	assert.True(t, cfg.Enabled)
	assert.Equal(t, 60, cfg.Capacity)
	assert.Equal(t, "rl", cfg.Prefix)
	assert.Equal(t, "ip_user_route", cfg.KeyStrategy)
}

func TestLoadLoginRateLimitConfigOverrides(t *testing.T) {
	t.Setenv("LOGIN_RATE_LIMIT_BURST", "3")
	t.Setenv("LOGIN_RATE_LIMIT_REFILL_EVERY", "1m")
	t.Setenv("LOGIN_RATE_LIMIT_TTL", "1s")

	cfg := LoadLoginRateLimitConfig()
	assert.Equal(t, 3, cfg.Capacity)
	assert.Equal(t, 1, cfg.RefillTokens)
	assert.Equal(t, time.Minute, cfg.RefillInterval)
	// TTL is raised to cover at least five refill intervals.
	assert.Equal(t, 5*time.Minute, cfg.TTL)
	assert.Equal(t, "rl:login", cfg.Prefix)
}

func TestEnvBool(t *testing.T) {
	t.Setenv("X_FLAG", "off")
	assert.False(t, envBool("X_FLAG", true))
	t.Setenv("X_FLAG", "maybe")
	assert.True(t, envBool("X_FLAG", true))
}

func TestLoadCacheConfig(t *testing.T) {
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "bogus")
	cfg := LoadCacheConfig()
	assert.True(t, cfg.Methods["GET"])
	assert.True(t, cfg.Methods["HEAD"])
	assert.False(t, cfg.Methods["POST"])
	assert.Equal(t, 5*time.Minute, cfg.TTL)
}
