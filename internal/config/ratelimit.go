package config

import "time"

// RateLimitConfig holds the token bucket settings for the booking endpoints.
type RateLimitConfig struct {
	Enabled     bool
	Capacity    int           // tokens in a full bucket
	RefillEvery time.Duration // one token is added per interval
	Prefix      string
	KeyStrategy string // "ip", "user" or "ip_user_route"
	FailOpen    bool   // allow requests when Redis is unreachable
}

// LoadRateLimitConfig reads the RATE_LIMIT_* environment variables.
func LoadRateLimitConfig() RateLimitConfig {
	return RateLimitConfig{
		Enabled:     envBool("RATE_LIMIT_ENABLED", true),
		Capacity:    envInt("RATE_LIMIT_CAPACITY", 20),
		RefillEvery: envDur("RATE_LIMIT_REFILL_EVERY", 3*time.Second),
		Prefix:      envStr("RATE_LIMIT_PREFIX", "rail:rl"),
		KeyStrategy: envStr("RATE_LIMIT_KEY_STRATEGY", "ip_user_route"),
		FailOpen:    envBool("RATE_LIMIT_FAIL_OPEN", true),
	}
}
