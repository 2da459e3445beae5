// Package apperror defines the protocol error envelope and its taxonomy.
package apperror

import (
	"fmt"
	"net/http"
)

// Type is the top-level envelope category from the error taxonomy.
type Type string

const (
	TypeInvalidRequest Type = "invalid_request_error"
	TypeAuthentication Type = "authentication_error"
	TypeRateLimit      Type = "rate_limit_error"
	TypeAPIError       Type = "api_error"
)

// AppError is a structured protocol error. Param, when set, names the
// offending field path for validation failures.
type AppError struct {
	Type       Type   `json:"type"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Param      string `json:"param,omitempty"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates an AppError with no wrapped cause.
func New(typ Type, code, message string, httpStatus int) *AppError {
	return &AppError{Type: typ, Code: code, Message: message, HTTPStatus: httpStatus}
}

// Wrap creates an AppError carrying an internal cause, never exposed in
// the rendered envelope.
func Wrap(typ Type, code, message string, httpStatus int, err error) *AppError {
	return &AppError{Type: typ, Code: code, Message: message, HTTPStatus: httpStatus, Err: err}
}

// WithParam returns a copy of e with Param set, for field-level validation errors.
func (e *AppError) WithParam(param string) *AppError {
	clone := *e
	clone.Param = param
	return &clone
}

// ---- Validation / shape ----

func ErrValidation(param, message string) *AppError {
	return New(TypeInvalidRequest, "validation_error", message, http.StatusBadRequest).WithParam(param)
}

func ErrInvalidJSON() *AppError {
	return New(TypeInvalidRequest, "invalid_json", "request body is not valid JSON", http.StatusBadRequest)
}

// ---- Session lifecycle ----

func ErrSessionNotFound() *AppError {
	return New(TypeInvalidRequest, "session_not_found", "checkout session not found", http.StatusNotFound)
}

func ErrInvalidState(from, to string) *AppError {
	msg := fmt.Sprintf("cannot transition checkout session from %q to %q", from, to)
	return New(TypeInvalidRequest, "invalid_state", msg, http.StatusBadRequest)
}

// ---- Payment ----

func ErrPaymentAuthFailed(reason string) *AppError {
	return New(TypeInvalidRequest, "payment_authorization_failed", reason, http.StatusPaymentRequired)
}

func ErrPaymentCaptureFailed(reason string) *AppError {
	return New(TypeInvalidRequest, "payment_capture_failed", reason, http.StatusPaymentRequired)
}

// ---- Auth / signature ----

func ErrUnauthorized() *AppError {
	return New(TypeAuthentication, "unauthorized", "missing or invalid credential", http.StatusUnauthorized)
}

func ErrSignatureInvalid() *AppError {
	return New(TypeAuthentication, "signature_invalid", "request signature is missing, stale, or invalid", http.StatusUnauthorized)
}

// ---- Rate limiting ----

func ErrRateLimited() *AppError {
	return New(TypeRateLimit, "rate_limit_error", "too many requests", http.StatusTooManyRequests)
}

// ---- Idempotency ----

func ErrIdempotentPreviouslyFailed() *AppError {
	return New(TypeInvalidRequest, "idempotent_request_failed", "idempotent request previously failed; use a new idempotency key to retry", http.StatusConflict)
}

func ErrIdempotentTimeout() *AppError {
	return New(TypeAPIError, "api_error", "timed out waiting for concurrent execution of the same idempotency key", http.StatusServiceUnavailable)
}

// ---- Catch-all ----

// InternalError wraps an unexpected error as an api_error. err is never
// surfaced in the rendered envelope.
func InternalError(err error) *AppError {
	return Wrap(TypeAPIError, "api_error", "internal server error", http.StatusInternalServerError, err)
}
