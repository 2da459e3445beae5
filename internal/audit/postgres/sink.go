// Package postgres persists audit entries and webhook delivery attempts to
// Postgres via pgx. Both writers are best-effort: a failure is logged and
// swallowed rather than propagated to the request or delivery path that
// triggered it.
package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"acp-checkout-gateway/internal/audit"
	"acp-checkout-gateway/internal/core/ports"
)

// Sink writes audit entries and webhook delivery attempts to Postgres.
type Sink struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// NewSink wraps an existing pool. The caller owns the pool's lifecycle.
func NewSink(pool *pgxpool.Pool, log zerolog.Logger) *Sink {
	return &Sink{pool: pool, log: log}
}

// Record persists a single protocol-operation audit entry.
func (s *Sink) Record(ctx context.Context, entry ports.AuditEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO audit_entries
		 (id, session_id, operation, status, request_id, idempotency_key, error_code, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.New(), entry.SessionID, entry.Operation, entry.Status,
		entry.RequestID, entry.IdempotKey, entry.ErrorCode, time.Now().UTC(),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", entry.SessionID).Msg("audit: failed to persist entry")
	}
	return err
}

// RecordAttempt persists one webhook delivery attempt. Failures are logged,
// never returned, since delivery already happens on a detached goroutine
// with no caller left to propagate an error to.
func (s *Sink) RecordAttempt(ctx context.Context, attempt audit.WebhookAttempt) {
	var lastError *string
	if attempt.Err != nil {
		msg := attempt.Err.Error()
		lastError = &msg
	}
	_, err := s.pool.Exec(ctx,
		`INSERT INTO webhook_delivery_attempts
		 (delivery_id, session_id, attempt, http_status, last_error, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		attempt.DeliveryID, attempt.SessionID, attempt.Attempt, attempt.HTTPStatus, lastError, time.Now().UTC(),
	)
	if err != nil {
		s.log.Warn().Err(err).Str("session_id", attempt.SessionID).Msg("audit: failed to persist webhook attempt")
	}
}

var (
	_ ports.AuditSink          = (*Sink)(nil)
	_ audit.WebhookDeliveryLog = (*Sink)(nil)
)
