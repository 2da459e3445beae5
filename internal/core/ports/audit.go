package ports

import "context"

// AuditEntry is one recorded protocol operation, independent of its outcome.
type AuditEntry struct {
	SessionID   string
	Operation   string
	Status      string
	RequestID   string
	IdempotKey  string
	ErrorCode   string
}

// AuditSink records audit entries. Implementations must be best-effort and
// non-blocking from the caller's perspective; a nil sink disables auditing.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry) error
}
