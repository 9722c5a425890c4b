// Package cache provides the alert deduplication store used to suppress
// repeated low-stock notifications.
package cache

import (
	"context"
	"time"
)

// DedupStore suppresses repeats of a keyed alert for a TTL window
type DedupStore interface {
	// MarkAlerted records the key with a TTL. Returns true if the key was
	// newly marked, false if an unexpired mark already existed.
	MarkAlerted(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Close releases any resources held by the store
	Close() error
}
