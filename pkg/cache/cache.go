// Package cache defines a small TTL cache contract used to memoize external
// lookups such as eligibility scores.
package cache

import (
	"context"
	"time"
)

// Cache stores string values under string keys with a per-entry TTL.
type Cache interface {
	// Get returns the cached value and whether the key was present and fresh.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error

	// Delete removes key.
	Delete(ctx context.Context, key string) error
}
