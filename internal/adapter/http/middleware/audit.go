package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"acp-checkout-gateway/internal/core/ports"
)

// AuditLog records every write operation that reached a handler, after the
// response is written, so the recorded status reflects what the client
// actually saw. A nil sink disables auditing entirely.
func AuditLog(sink ports.AuditSink) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if sink == nil {
			return
		}
		if c.Request.Method == "GET" || c.Request.Method == "HEAD" || c.Request.Method == "OPTIONS" {
			return
		}

		operation := mapPathToOperation(c.Request.URL.Path, c.Request.Method)
		if operation == "" {
			return
		}

		status := "ok"
		errorCode := ""
		if c.Writer.Status() >= 400 {
			status = "error"
			if code, exists := c.Get(CtxErrorCode); exists {
				if s, ok := code.(string); ok {
					errorCode = s
				}
			}
		}

		sink.Record(c.Request.Context(), ports.AuditEntry{
			SessionID:  sessionIDFromPath(c.Request.URL.Path),
			Operation:  operation,
			Status:     status,
			RequestID:  stringFromCtx(c, CtxRequestID),
			IdempotKey: stringFromCtx(c, CtxIdempotencyKey),
			ErrorCode:  errorCode,
		})
	}
}

// CtxErrorCode is set by a handler when an operation fails, so AuditLog can
// record the error code without re-deriving it from the response body.
const CtxErrorCode = "error_code"

func stringFromCtx(c *gin.Context, key string) string {
	if v, exists := c.Get(key); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func mapPathToOperation(path, method string) string {
	switch {
	case path == "/checkout_sessions" && method == "POST":
		return "create"
	case strings.HasSuffix(path, "/complete") && method == "POST":
		return "complete"
	case strings.HasSuffix(path, "/cancel") && method == "POST":
		return "cancel"
	case strings.HasPrefix(path, "/checkout_sessions/") && method == "POST":
		return "update"
	}
	return ""
}

// sessionIDFromPath extracts the {id} path segment for /checkout_sessions/{id}...
func sessionIDFromPath(path string) string {
	const prefix = "/checkout_sessions/"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.TrimPrefix(path, prefix)
	if idx := strings.Index(rest, "/"); idx >= 0 {
		return rest[:idx]
	}
	return rest
}
