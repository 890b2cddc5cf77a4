// Package cache holds the key-value backends used by client.CachingClient.
//
// Backends store opaque byte values with a time-to-live and own expiry and
// eviction. A ttl of zero or less means the value is not kept.
package cache

import (
	"context"
	"time"
)

// Cache is a key-value store with per-entry expiry.
type Cache interface {
	// Get returns the value stored under key. found is false when the key is
	// absent or expired; err is reserved for backend failures.
	Get(ctx context.Context, key string) (value []byte, found bool, err error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}
