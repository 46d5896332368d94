// Package cache provides the translation result cache. Two implementations
// exist: a redis-backed one and an in-process one used when no redis
// address is configured.
package cache

import "time"

// Cache stores JSON-serializable values under string keys with a TTL.
type Cache interface {
	// Get reads a value into result and reports whether the key was present.
	Get(key string, result any) (bool, error)
	// Set stores a value with the given expiration.
	Set(key string, value any, expiration time.Duration) error
	// Invalidate removes a key.
	Invalidate(key string) error
}
