package ports

import (
	"context"
	"time"

	"acp-checkout-gateway/internal/core/domain"
)

// SessionRepository wraps the KV store with namespacing, serialization, and
// the session TTL. Get returns (nil, nil) on miss or expiry; it never
// fabricates a zero-value session.
type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.CheckoutSession, error)
	Put(ctx context.Context, session *domain.CheckoutSession, ttl time.Duration) error
}
