package redis

import (
	"fmt"
	"time"

	"github.com/mcoot/chefgenie/internal/storage"
)

// Key prefix for all game-related data
const keyPrefix = "chefgenie"

// redisKey returns the Redis key for a storage key
func redisKey(key storage.Key) string {
	return fmt.Sprintf("%s:%s", keyPrefix, key.String())
}

// ttlFor returns the expiry applied to keys in the given namespace.
// The users collection never expires.
func (c Config) ttlFor(ns storage.Namespace) time.Duration {
	switch ns {
	case storage.NamespaceSession:
		return c.SessionTTL
	case storage.NamespaceScores:
		return c.ScoresTTL
	case storage.NamespaceVolume:
		return c.VolumeTTL
	default:
		return 0
	}
}
