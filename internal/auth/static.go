// Package auth provides pluggable AuthVerifier implementations. The
// checkout engine and router depend only on ports.AuthVerifier; which
// concrete scheme is wired in is a deployment decision, never baked into
// the core.
package auth

import (
	"context"
	"fmt"

	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/security"
)

// StaticBearer verifies a single configured bearer token. The token is
// never stored or compared in plaintext: it is hashed with Argon2id at
// construction time, and Verify hashes the presented credential with the
// same salt before a constant-time comparison.
type StaticBearer struct {
	salt []byte
	hash []byte
}

// NewStaticBearer derives the verifier's stored hash from token.
func NewStaticBearer(token string) (*StaticBearer, error) {
	salt, err := security.NewSalt()
	if err != nil {
		return nil, fmt.Errorf("static bearer: %w", err)
	}
	return &StaticBearer{salt: salt, hash: security.HashToken(token, salt)}, nil
}

// Verify compares credential's hash against the configured token's hash.
func (b *StaticBearer) Verify(_ context.Context, credential string) error {
	if credential == "" {
		return fmt.Errorf("missing bearer credential")
	}
	candidate := security.HashToken(credential, b.salt)
	if !security.ConstantTimeEqual(candidate, b.hash) {
		return fmt.Errorf("bearer credential does not match")
	}
	return nil
}

var _ ports.AuthVerifier = (*StaticBearer)(nil)
