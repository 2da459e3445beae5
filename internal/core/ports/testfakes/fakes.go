// Package testfakes provides hand-written stand-ins for the adapter
// interfaces, in the style of this codebase's in-memory test repositories
// rather than generated mocks.
package testfakes

import (
	"context"
	"sync"

	"acp-checkout-gateway/internal/core/ports"
)

// Catalog is a configurable ports.CatalogAdapter. PriceFunc, when set,
// overrides the default behavior entirely.
type Catalog struct {
	mu        sync.Mutex
	Requests  []ports.PriceRequest
	PriceFunc func(ports.PriceRequest) (ports.Quote, error)
	Quote     ports.Quote
	Err       error
}

func (c *Catalog) Price(_ context.Context, req ports.PriceRequest) (ports.Quote, error) {
	c.mu.Lock()
	c.Requests = append(c.Requests, req)
	c.mu.Unlock()

	if c.PriceFunc != nil {
		return c.PriceFunc(req)
	}
	return c.Quote, c.Err
}

func (c *Catalog) CallCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Requests)
}

// PSP is a configurable ports.PSPAdapter recording every call it receives.
type PSP struct {
	mu sync.Mutex

	AuthorizeResult ports.AuthResult
	AuthorizeErr    error
	CaptureResult   ports.CaptureResult
	CaptureErr      error
	VoidErr         error

	AuthorizeCalls int
	CaptureCalls   int
	VoidCalls      int
	VoidedIntents  []string
}

func (p *PSP) Authorize(_ context.Context, _ ports.AuthorizeRequest) (ports.AuthResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.AuthorizeCalls++
	return p.AuthorizeResult, p.AuthorizeErr
}

func (p *PSP) Capture(_ context.Context, _ string) (ports.CaptureResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.CaptureCalls++
	return p.CaptureResult, p.CaptureErr
}

func (p *PSP) Void(_ context.Context, intentID string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.VoidCalls++
	p.VoidedIntents = append(p.VoidedIntents, intentID)
	return p.VoidErr
}

// WebhookSink is a configurable ports.WebhookSink recording every event.
type WebhookSink struct {
	mu     sync.Mutex
	Events []ports.OrderEvent
	Err    error
}

func (w *WebhookSink) Send(_ context.Context, event ports.OrderEvent) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.Events = append(w.Events, event)
	return w.Err
}

func (w *WebhookSink) SentEvents() []ports.OrderEvent {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]ports.OrderEvent, len(w.Events))
	copy(out, w.Events)
	return out
}

// AuthVerifier is a configurable ports.AuthVerifier.
type AuthVerifier struct {
	Err error
}

func (a *AuthVerifier) Verify(_ context.Context, _ string) error {
	return a.Err
}

// AuditSink records every entry it receives instead of persisting anywhere.
type AuditSink struct {
	mu      sync.Mutex
	Entries []ports.AuditEntry
}

func (a *AuditSink) Record(_ context.Context, entry ports.AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, entry)
	return nil
}

func (a *AuditSink) All() []ports.AuditEntry {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ports.AuditEntry, len(a.Entries))
	copy(out, a.Entries)
	return out
}

var (
	_ ports.CatalogAdapter = (*Catalog)(nil)
	_ ports.PSPAdapter     = (*PSP)(nil)
	_ ports.WebhookSink    = (*WebhookSink)(nil)
	_ ports.AuthVerifier   = (*AuthVerifier)(nil)
	_ ports.AuditSink      = (*AuditSink)(nil)
)
