// Package webhook delivers signed order event notifications to the
// merchant-configured endpoint, with bounded retries run out of band so a
// slow or unreachable receiver never blocks the response that produced the event.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"acp-checkout-gateway/internal/audit"
	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/signature"
)

// retryIntervals is the backoff schedule for delivery attempts after the
// first. A webhook that still fails after the last interval is abandoned.
var retryIntervals = []time.Duration{
	15 * time.Second,
	60 * time.Second,
	2 * time.Minute,
	5 * time.Minute,
	10 * time.Minute,
}

// DefaultTimeout bounds a single HTTP POST attempt.
const DefaultTimeout = 30 * time.Second

// orderData is the "data" object of the outbound webhook body.
type orderData struct {
	Type              string `json:"type"`
	CheckoutSessionID string `json:"checkout_session_id"`
	PermalinkURL      string `json:"permalink_url,omitempty"`
	Status            string `json:"status"`
}

// envelope is the full outbound webhook body. Timestamp lives inside the
// signed payload so a stripped Timestamp header cannot desynchronize
// signature verification from the data it covers.
type envelope struct {
	Type      string    `json:"type"`
	Data      orderData `json:"data"`
	Timestamp int64     `json:"timestamp"`
}

// Sender implements ports.WebhookSink over HTTP.
type Sender struct {
	url        string
	headerName string
	sig        *signature.Service
	client     *http.Client
	log        zerolog.Logger
	deliveryLog audit.WebhookDeliveryLog // nil disables persistence
}

// NewSender builds a Sender posting to url, signing with secret under the
// header name derived from merchantName. A nil deliveryLog disables
// persistence of delivery attempts.
func NewSender(url, merchantName, secret string, timeout time.Duration, deliveryLog audit.WebhookDeliveryLog, log zerolog.Logger) *Sender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{
		url:         url,
		headerName:  signature.HeaderName(merchantName),
		sig:         signature.New(secret, 0),
		client:      &http.Client{Timeout: timeout},
		log:         log,
		deliveryLog: deliveryLog,
	}
}

// Send signs event and initiates delivery. It returns an error only for
// marshal/signing failures; a reachable-but-failing merchant endpoint is
// retried on a detached goroutine and never surfaces here, so a cached
// idempotent result is never invalidated by a slow webhook receiver.
func (s *Sender) Send(ctx context.Context, event ports.OrderEvent) error {
	if s.url == "" {
		return nil
	}

	data := orderData{
		Type:              "order",
		CheckoutSessionID: event.CheckoutSessionID,
		Status:            string(event.Status),
	}
	if event.Order != nil {
		data.PermalinkURL = event.Order.PermalinkURL
	}

	body := envelope{
		Type:      string(event.Type),
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("webhook: marshal event: %w", err)
	}

	sig := s.sig.Sign(body.Timestamp, payload)
	go s.deliverWithRetries(payload, body.Timestamp, sig, event.CheckoutSessionID)
	return nil
}

func (s *Sender) deliverWithRetries(payload []byte, timestamp int64, sig, sessionID string) {
	deliveryID := uuid.NewString()

	for attempt := 0; attempt <= len(retryIntervals); attempt++ {
		if attempt > 0 {
			time.Sleep(retryIntervals[attempt-1])
		}

		ctx, cancel := context.WithTimeout(context.Background(), s.client.Timeout)
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
		if err != nil {
			cancel()
			s.log.Error().Err(err).Str("session_id", sessionID).Msg("webhook: failed to build request")
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set(s.headerName, sig)
		req.Header.Set("X-Timestamp", fmt.Sprintf("%d", timestamp))

		resp, err := s.client.Do(req)
		cancel()
		if err != nil {
			s.record(deliveryID, sessionID, attempt+1, 0, err)
			s.log.Warn().Err(err).Str("session_id", sessionID).Int("attempt", attempt+1).Msg("webhook: delivery attempt failed")
			continue
		}
		status := resp.StatusCode
		resp.Body.Close()

		if status >= 200 && status < 300 {
			s.record(deliveryID, sessionID, attempt+1, status, nil)
			s.log.Info().Str("session_id", sessionID).Int("attempt", attempt+1).Msg("webhook: delivered")
			return
		}
		s.record(deliveryID, sessionID, attempt+1, status, fmt.Errorf("http %d", status))
		s.log.Warn().Str("session_id", sessionID).Int("attempt", attempt+1).Int("status", status).Msg("webhook: non-2xx response, retrying")
	}

	s.log.Error().Str("session_id", sessionID).Msg("webhook: exhausted all retry attempts")
}

func (s *Sender) record(deliveryID, sessionID string, attempt, httpStatus int, deliveryErr error) {
	if s.deliveryLog == nil {
		return
	}
	s.deliveryLog.RecordAttempt(context.Background(), audit.WebhookAttempt{
		DeliveryID: deliveryID,
		SessionID:  sessionID,
		Attempt:    attempt,
		HTTPStatus: httpStatus,
		Err:        deliveryErr,
	})
}

var _ ports.WebhookSink = (*Sender)(nil)
