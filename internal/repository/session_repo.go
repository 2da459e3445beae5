// Package repository implements the Session Repository: a typed, namespaced,
// TTL'd wrapper over the KV store.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"acp-checkout-gateway/internal/core/domain"
	"acp-checkout-gateway/internal/core/ports"
)

const sessionKeyPrefix = "acp:session:"

// DefaultSessionTTL is used when callers pass a zero ttl to Put.
const DefaultSessionTTL = 24 * time.Hour

// SessionRepository owns all session bytes in the KV store. No other
// component reads or writes the acp:session: namespace directly.
type SessionRepository struct {
	store ports.KVStore
}

// NewSessionRepository wraps store with the session namespace.
func NewSessionRepository(store ports.KVStore) *SessionRepository {
	return &SessionRepository{store: store}
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

// Get returns nil, nil on miss or expiry. A stored value that fails to
// parse is a fatal internal error, not a miss.
func (r *SessionRepository) Get(ctx context.Context, id string) (*domain.CheckoutSession, error) {
	raw, ok, err := r.store.Get(ctx, sessionKey(id))
	if err != nil {
		return nil, fmt.Errorf("session repository get: %w", err)
	}
	if !ok {
		return nil, nil
	}
	var session domain.CheckoutSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("session repository: corrupt session %s: %w", id, err)
	}
	return &session, nil
}

// Put stamps updated_at and writes the session under its namespaced key.
// The caller must not mutate session afterward without calling Put again.
func (r *SessionRepository) Put(ctx context.Context, session *domain.CheckoutSession, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	session.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("session repository: marshal session %s: %w", session.ID, err)
	}
	if err := r.store.Set(ctx, sessionKey(session.ID), string(raw), ttl); err != nil {
		return fmt.Errorf("session repository put: %w", err)
	}
	return nil
}

var _ ports.SessionRepository = (*SessionRepository)(nil)
