// Package audit records protocol operations and webhook delivery attempts
// for observability. It is ambient infrastructure: nothing in
// internal/checkout depends on it directly being present, and a nil sink
// disables it entirely.
package audit

import "context"

// WebhookAttempt is one HTTP delivery attempt of an outbound webhook.
type WebhookAttempt struct {
	DeliveryID string
	SessionID  string
	Attempt    int
	HTTPStatus int
	Err        error
}

// WebhookDeliveryLog records webhook delivery attempts. A nil implementation
// reference disables persistence; callers must nil-check before use.
type WebhookDeliveryLog interface {
	RecordAttempt(ctx context.Context, attempt WebhookAttempt)
}
