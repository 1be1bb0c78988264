package config

import (
	"os"
	"strconv"
	"time"
)

// RateLimitConfig describes one token bucket. KeyStrategy is an
// underscore-separated subset of ip, user and route.
type RateLimitConfig struct {
	Enabled        bool
	Capacity       int
	RefillTokens   int
	RefillInterval time.Duration
	TTL            time.Duration
	KeyStrategy    string
	Prefix         string
}

// LoadRateLimitConfig returns the bucket applied to every request.
func LoadRateLimitConfig() RateLimitConfig {
	return loadRateLimit("RATE_LIMIT", RateLimitConfig{
		Enabled:        true,
		Capacity:       60,
		RefillTokens:   1,
		RefillInterval: time.Second,
		TTL:            10 * time.Minute,
		KeyStrategy:    "ip_user_route",
		Prefix:         "rl",
	})
}

// LoadLoginRateLimitConfig returns the stricter bucket guarding POST /login.
// Keys are per IP so one client cannot cycle through passwords.
func LoadLoginRateLimitConfig() RateLimitConfig {
	return loadRateLimit("LOGIN_RATE_LIMIT", RateLimitConfig{
		Enabled:        true,
		Capacity:       5,
		RefillTokens:   1,
		RefillInterval: 30 * time.Second,
		TTL:            15 * time.Minute,
		KeyStrategy:    "ip_route",
		Prefix:         "rl:login",
	})
}

func loadRateLimit(ns string, def RateLimitConfig) RateLimitConfig {
	def.Enabled = envBool(ns+"_ENABLED", def.Enabled)
	def.Capacity = envInt(ns+"_CAPACITY", def.Capacity)
	def.RefillTokens = envInt(ns+"_REFILL_TOKENS", def.RefillTokens)
	def.RefillInterval = envDur(ns+"_REFILL_INTERVAL", def.RefillInterval)
	def.TTL = envDur(ns+"_TTL", def.TTL)
	def.KeyStrategy = envStr(ns+"_KEY_STRATEGY", def.KeyStrategy)
	def.Prefix = envStr(ns+"_PREFIX", def.Prefix)
	if b := envInt(ns+"_BURST", -1); b > 0 {
		def.Capacity = b
	}
	if every := envDur(ns+"_REFILL_EVERY", 0); every > 0 {
		def.RefillTokens = 1
		def.RefillInterval = every
	}

	if def.Capacity < 1 {
		def.Capacity = 1
	}
	if def.RefillTokens < 1 {
		def.RefillTokens = 1
	}
	if def.RefillInterval <= 0 {
		def.RefillInterval = time.Second
	}
	// Keep the key alive long enough for a drained bucket to refill.
	if minTTL := 5 * def.RefillInterval; def.TTL < minTTL {
		def.TTL = minTTL
	}
	return def
}

func envStr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envBool(k string, d bool) bool {
	switch os.Getenv(k) {
	case "1", "true", "TRUE", "True", "yes", "YES", "on", "ON":
		return true
	case "0", "false", "FALSE", "False", "no", "NO", "off", "OFF":
		return false
	}
	return d
}

func envInt(k string, d int) int {
	if n, err := strconv.Atoi(os.Getenv(k)); err == nil {
		return n
	}
	return d
}

func envDur(k string, d time.Duration) time.Duration {
	if dur, err := time.ParseDuration(os.Getenv(k)); err == nil {
		return dur
	}
	return d
}
