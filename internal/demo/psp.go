package demo

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"acp-checkout-gateway/internal/core/ports"
)

// PSP is a demo payment service provider: every authorize succeeds unless
// the delegated token equals the configured decline token or neither a
// token nor a payment method is supplied, and every capture of an intent
// that has not been voided succeeds. It exists to exercise the full
// authorize/capture/void sequence without a real payment network.
type PSP struct {
	mu           sync.Mutex
	captured     map[string]bool
	voided       map[string]bool
	declineOn    string
	captureCalls int
}

// NewPSP builds a demo PSP. declineOn, when non-empty, is the delegated
// token value that causes Authorize to fail — useful for exercising the
// payment_authorization_failed path deterministically.
func NewPSP(declineOn string) *PSP {
	return &PSP{
		captured:  make(map[string]bool),
		voided:    make(map[string]bool),
		declineOn: declineOn,
	}
}

// Authorize implements ports.PSPAdapter.
func (p *PSP) Authorize(_ context.Context, req ports.AuthorizeRequest) (ports.AuthResult, error) {
	if p.declineOn != "" && req.DelegatedToken == p.declineOn {
		return ports.AuthResult{OK: false, Reason: "Card declined"}, nil
	}
	if req.DelegatedToken == "" && req.Method == "" {
		return ports.AuthResult{OK: false, Reason: "no payment credential supplied"}, nil
	}
	return ports.AuthResult{OK: true, IntentID: "pi_" + uuid.NewString()}, nil
}

// Capture implements ports.PSPAdapter.
func (p *PSP) Capture(_ context.Context, intentID string) (ports.CaptureResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.captureCalls++
	if p.voided[intentID] {
		return ports.CaptureResult{OK: false, Reason: "intent has been voided"}, nil
	}
	p.captured[intentID] = true
	return ports.CaptureResult{OK: true}, nil
}

// CaptureCallCount reports how many times Capture has been invoked, for
// tests asserting the idempotency guard prevented a double capture.
func (p *PSP) CaptureCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.captureCalls
}

// Void implements ports.PSPAdapter.
func (p *PSP) Void(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.captured[intentID] {
		return fmt.Errorf("cannot void already-captured intent %s", intentID)
	}
	p.voided[intentID] = true
	return nil
}

var _ ports.PSPAdapter = (*PSP)(nil)
