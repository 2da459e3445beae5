package middleware

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/signature"
	"acp-checkout-gateway/pkg/apperror"
	"acp-checkout-gateway/pkg/response"
)

// Context keys and header names recognized on every request.
const (
	HeaderIdempotencyKey = "Idempotency-Key"
	HeaderRequestID      = "Request-Id"
	HeaderSignature      = "Signature"
	HeaderTimestamp      = "Timestamp"
	HeaderAuthorization  = "Authorization"

	CtxIdempotencyKey = "idempotency_key"
	CtxRequestID      = "request_id"
)

// HeaderEcho reads Idempotency-Key and Request-Id off the request, stashes
// them in the gin context for handlers, and echoes them back on the
// response so a client can correlate retries.
func HeaderEcho() gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := c.GetHeader(HeaderIdempotencyKey)
		reqID := c.GetHeader(HeaderRequestID)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		c.Set(CtxIdempotencyKey, idemKey)
		c.Set(CtxRequestID, reqID)

		if idemKey != "" {
			c.Header(HeaderIdempotencyKey, idemKey)
		}
		c.Header(HeaderRequestID, reqID)

		c.Next()
	}
}

// SignatureVerify rejects requests whose Signature/Timestamp headers do not
// match the raw body under the configured HMAC secret. A nil svc disables
// verification entirely — the core never bakes in a specific scheme.
func SignatureVerify(svc *signature.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if svc == nil {
			c.Next()
			return
		}

		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			response.Error(c, apperror.ErrValidation("", "cannot read request body"))
			c.Abort()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		if err := svc.Verify(c.GetHeader(HeaderSignature), c.GetHeader(HeaderTimestamp), bodyBytes); err != nil {
			response.Error(c, apperror.ErrSignatureInvalid())
			c.Abort()
			return
		}
		c.Next()
	}
}

// BearerAuth validates the Authorization header against an external
// verifier. A nil verifier disables authentication entirely.
func BearerAuth(verifier ports.AuthVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		if verifier == nil {
			c.Next()
			return
		}

		header := c.GetHeader(HeaderAuthorization)
		const prefix = "Bearer "
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix {
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}
		credential := header[len(prefix):]

		if err := verifier.Verify(c.Request.Context(), credential); err != nil {
			response.Error(c, apperror.ErrUnauthorized())
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequestLogger logs every HTTP request, escalating the log level by
// status band the way a production access log would.
func RequestLogger(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		status := c.Writer.Status()

		event := log.Info()
		switch {
		case status >= http.StatusInternalServerError:
			event = log.Error()
		case status >= http.StatusBadRequest:
			event = log.Warn()
		}

		event.
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", latency).
			Str("client_ip", c.ClientIP()).
			Msg("http request")
	}
}

// Recovery converts a panic in a downstream handler into a 500 api_error
// instead of crashing the connection.
func Recovery(log zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Str("path", c.Request.URL.Path).Msg("panic recovered")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error": gin.H{
						"type":    apperror.TypeAPIError,
						"code":    "api_error",
						"message": "internal server error",
					},
				})
			}
		}()
		c.Next()
	}
}
