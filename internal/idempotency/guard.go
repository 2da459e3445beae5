// Package idempotency implements the single-flight Idempotency Guard: at
// most one compute closure executes per (key, store), with concurrent
// retries replaying the cached result instead of racing into compute.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/security"
)

const (
	pendingSentinel = "__pending__"
	failedSentinel  = "__failed__"
	failMarkerTTL   = 60 * time.Second
)

// backoffSchedule is the sequence of sleeps a losing racer waits through
// before giving up on a still-pending key.
var backoffSchedule = []time.Duration{
	50 * time.Millisecond,
	100 * time.Millisecond,
	200 * time.Millisecond,
	400 * time.Millisecond,
	800 * time.Millisecond,
}

// ErrPreviouslyFailed is returned when a key's prior compute run failed and
// the client must mint a new idempotency key to retry.
var ErrPreviouslyFailed = errors.New("idempotent request previously failed")

// ErrTimeout is returned when a losing racer exhausts the backoff schedule
// while the winner's compute is still pending.
var ErrTimeout = errors.New("timed out waiting for concurrent execution")

// Compute is the operation body the guard runs at most once per key. The
// returned string is the serialized result cached for replay.
type Compute func(ctx context.Context) (string, error)

// Result is what Run hands back to the caller.
type Result struct {
	Reused bool
	Value  string
}

// Guard wraps a KV store with the idempotency algorithm. TTL must be at
// least as long as the session TTL the compute closures touch, or an
// expired idempotency record could let a retried client re-execute a
// completed payment.
type Guard struct {
	store     ports.KVStore
	ttl       time.Duration
	encryptor *security.Encryptor
}

// New builds a Guard. encryptor may be nil to store results in the clear,
// useful for tests against an in-memory store.
func New(store ports.KVStore, ttl time.Duration, encryptor *security.Encryptor) *Guard {
	return &Guard{store: store, ttl: ttl, encryptor: encryptor}
}

// Run executes compute under the idempotency protocol for key. An empty
// key bypasses the guard entirely: compute runs inline, unreused.
func (g *Guard) Run(ctx context.Context, key string, compute Compute) (Result, error) {
	if key == "" {
		value, err := compute(ctx)
		if err != nil {
			return Result{}, err
		}
		return Result{Reused: false, Value: value}, nil
	}

	existing, ok, err := g.store.Get(ctx, key)
	if err != nil {
		return Result{}, fmt.Errorf("idempotency guard: get %s: %w", key, err)
	}
	if ok && existing != pendingSentinel && existing != failedSentinel {
		value, err := g.decode(existing)
		if err != nil {
			return Result{}, err
		}
		return Result{Reused: true, Value: value}, nil
	}

	won, err := g.store.SetNX(ctx, key, pendingSentinel, g.ttl)
	if err != nil {
		return Result{}, fmt.Errorf("idempotency guard: setnx %s: %w", key, err)
	}
	if won {
		return g.runCompute(ctx, key, compute)
	}
	return g.waitForWinner(ctx, key)
}

func (g *Guard) runCompute(ctx context.Context, key string, compute Compute) (Result, error) {
	value, err := compute(ctx)
	if err != nil {
		if setErr := g.store.Set(ctx, key, failedSentinel, failMarkerTTL); setErr != nil {
			return Result{}, fmt.Errorf("idempotency guard: mark failed %s: %w (compute error: %v)", key, setErr, err)
		}
		if markErr := g.store.Set(ctx, failMarkerKey(key), fmt.Sprintf("%d", time.Now().Unix()), failMarkerTTL); markErr != nil {
			return Result{}, fmt.Errorf("idempotency guard: write fail marker %s: %w", key, markErr)
		}
		return Result{}, err
	}
	encoded, err := g.encode(value)
	if err != nil {
		return Result{}, err
	}
	if err := g.store.Set(ctx, key, encoded, g.ttl); err != nil {
		return Result{}, fmt.Errorf("idempotency guard: cache result %s: %w", key, err)
	}
	return Result{Reused: false, Value: value}, nil
}

func (g *Guard) waitForWinner(ctx context.Context, key string) (Result, error) {
	for _, wait := range backoffSchedule {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(wait):
		}

		current, ok, err := g.store.Get(ctx, key)
		if err != nil {
			return Result{}, fmt.Errorf("idempotency guard: get %s: %w", key, err)
		}
		if !ok {
			// Key expired mid-wait; nothing more to observe.
			return Result{}, ErrTimeout
		}
		switch current {
		case pendingSentinel:
			continue
		case failedSentinel:
			return Result{}, ErrPreviouslyFailed
		default:
			value, err := g.decode(current)
			if err != nil {
				return Result{}, err
			}
			return Result{Reused: true, Value: value}, nil
		}
	}
	return Result{}, ErrTimeout
}

func (g *Guard) encode(value string) (string, error) {
	if g.encryptor == nil {
		return value, nil
	}
	return g.encryptor.Encrypt(value)
}

func (g *Guard) decode(value string) (string, error) {
	if g.encryptor == nil {
		return value, nil
	}
	return g.encryptor.Decrypt(value)
}

func failMarkerKey(key string) string {
	return key + ":fail"
}
