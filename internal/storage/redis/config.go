package redis

import "time"

// Config holds Redis connection and behavior settings
type Config struct {
	// URL is the Redis connection URL (e.g., redis://localhost:6379)
	URL string

	// Pool settings
	PoolSize     int
	MinIdleConns int

	// TTL settings per key namespace; zero means no expiry
	SessionTTL time.Duration
	ScoresTTL  time.Duration
	VolumeTTL  time.Duration
}

// DefaultConfig returns sensible defaults for Redis configuration
func DefaultConfig() Config {
	return Config{
		URL:          "redis://localhost:6379",
		PoolSize:     10,
		MinIdleConns: 2,
		SessionTTL:   30 * 24 * time.Hour,
		ScoresTTL:    90 * 24 * time.Hour,
		VolumeTTL:    90 * 24 * time.Hour,
	}
}
