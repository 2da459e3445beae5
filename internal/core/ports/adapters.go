package ports

import (
	"context"

	"acp-checkout-gateway/internal/core/domain"
)

// PriceRequest is the cart shape a catalog adapter prices.
type PriceRequest struct {
	Items       []domain.ItemRef
	Customer    *domain.Customer
	Fulfillment *domain.Fulfillment
}

// Quote is the catalog's priced answer: line items, totals, fulfillment
// options, optional advisory messages, and whether the cart, as priced, is
// ready to accept payment.
type Quote struct {
	Items       []domain.LineItem
	Totals      domain.Totals
	Fulfillment *domain.Fulfillment
	Messages    []domain.Message
	Ready       bool
}

// CatalogAdapter is the sole source of pricing truth; the engine never
// computes totals itself, only validates what the catalog returns.
type CatalogAdapter interface {
	Price(ctx context.Context, req PriceRequest) (Quote, error)
}

// AuthorizeRequest carries the payment handle the agent collected from the
// buyer through to the PSP. The server never sees card data.
type AuthorizeRequest struct {
	SessionID      string
	DelegatedToken string
	Method         string
	Amount         domain.Money
}

// AuthResult is the PSP's answer to an authorize call.
type AuthResult struct {
	OK       bool
	IntentID string
	Reason   string
}

// CaptureResult is the PSP's answer to a capture call.
type CaptureResult struct {
	OK     bool
	Reason string
}

// PSPAdapter performs authorization and capture against the payment service
// provider. Both calls are non-idempotent side effects external to this
// server; the Idempotency Guard is what keeps them to at most one
// invocation per client retry.
type PSPAdapter interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (AuthResult, error)
	Capture(ctx context.Context, intentID string) (CaptureResult, error)
	// Void reverses an authorization that was never captured. Callers treat
	// a Void failure as best-effort; it never blocks the response to the client.
	Void(ctx context.Context, intentID string) error
}

// OrderEventType distinguishes the two outbound webhook shapes.
type OrderEventType string

const (
	OrderEventCreated OrderEventType = "order_created"
	OrderEventUpdated OrderEventType = "order_updated"
)

// OrderEvent is the payload handed to the webhook sink; it mirrors the
// outbound webhook body described for the protocol's order notifications.
type OrderEvent struct {
	Type              OrderEventType
	CheckoutSessionID string
	Status            domain.SessionStatus
	Order             *domain.Order
}

// WebhookSink delivers order events to the merchant-configured endpoint.
// Send only returns an error for payload construction/signing failures;
// network delivery is retried out of band (see internal/webhook).
type WebhookSink interface {
	Send(ctx context.Context, event OrderEvent) error
}

// AuthVerifier validates the bearer credential on an inbound request. The
// core depends only on this interface so deployments can plug in a static
// token, JWT, or anything else without changing the engine.
type AuthVerifier interface {
	Verify(ctx context.Context, credential string) error
}
