package ports

import (
	"context"
	"time"
)

// KVStore is the opaque string-keyed byte store the Session Repository and
// the Idempotency Guard are both built on. setnx must be atomic at the
// backend; an implementation that can only fake it with a read-then-write
// is unsuitable for production.
type KVStore interface {
	// Get returns the stored value and true, or "", false if absent or expired.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set unconditionally writes value under key. A zero ttl means no expiry.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX writes value under key only if key is currently absent, returning
	// whether the caller won the race.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
}
