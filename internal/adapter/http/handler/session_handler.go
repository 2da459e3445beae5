package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"acp-checkout-gateway/internal/adapter/http/middleware"
	"acp-checkout-gateway/internal/checkout"
	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/validate"
	"acp-checkout-gateway/pkg/apperror"
	"acp-checkout-gateway/pkg/response"
)

// SessionHandler exposes the five checkout session operations over HTTP.
type SessionHandler struct {
	engine *checkout.Engine
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(engine *checkout.Engine) *SessionHandler {
	return &SessionHandler{engine: engine}
}

// Create handles POST /checkout_sessions.
func (h *SessionHandler) Create(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondErr(c, apperror.ErrInvalidJSON())
		return
	}
	req, verr := validate.ValidateCreate(body)
	if verr != nil {
		respondErr(c, verr)
		return
	}

	result, eerr := h.engine.Create(c.Request.Context(), idempotencyKeyOf(c), req)
	if eerr != nil {
		respondErr(c, eerr)
		return
	}
	if result.Reused {
		response.OK(c, result.Session)
		return
	}
	response.Created(c, result.Session)
}

// Get handles GET /checkout_sessions/{id}.
func (h *SessionHandler) Get(c *gin.Context) {
	session, eerr := h.engine.Get(c.Request.Context(), c.Param("id"))
	if eerr != nil {
		respondErr(c, eerr)
		return
	}
	response.OK(c, session)
}

// Update handles POST /checkout_sessions/{id}.
func (h *SessionHandler) Update(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondErr(c, apperror.ErrInvalidJSON())
		return
	}
	req, verr := validate.ValidateUpdate(body)
	if verr != nil {
		respondErr(c, verr)
		return
	}

	result, eerr := h.engine.Update(c.Request.Context(), c.Param("id"), idempotencyKeyOf(c), req)
	if eerr != nil {
		respondErr(c, eerr)
		return
	}
	response.OK(c, result.Session)
}

// Complete handles POST /checkout_sessions/{id}/complete.
func (h *SessionHandler) Complete(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondErr(c, apperror.ErrInvalidJSON())
		return
	}
	req, verr := validate.ValidateComplete(body)
	if verr != nil {
		respondErr(c, verr)
		return
	}

	result, eerr := h.engine.Complete(c.Request.Context(), c.Param("id"), idempotencyKeyOf(c), req)
	if eerr != nil {
		respondErr(c, eerr)
		return
	}
	response.OK(c, result.Session)
}

// Cancel handles POST /checkout_sessions/{id}/cancel.
func (h *SessionHandler) Cancel(c *gin.Context) {
	result, eerr := h.engine.Cancel(c.Request.Context(), c.Param("id"), idempotencyKeyOf(c))
	if eerr != nil {
		respondErr(c, eerr)
		return
	}
	response.OK(c, result.Session)
}

func idempotencyKeyOf(c *gin.Context) string {
	if v, exists := c.Get(middleware.CtxIdempotencyKey); exists {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// respondErr writes the error response and stashes the error code in the
// gin context so AuditLog can record it without re-deriving it.
func respondErr(c *gin.Context, err *apperror.AppError) {
	c.Set(middleware.CtxErrorCode, err.Code)
	response.Error(c, err)
}

// HealthHandler pings every configured dependency and reports which ones
// are unreachable. A gateway with no reachable dependency still serves
// /health itself, so operators can tell "process is up" from "process is useful".
type HealthHandler struct {
	checkers []ports.HealthChecker
}

// NewHealthHandler wires in the dependencies to probe; a nil entry is skipped.
func NewHealthHandler(checkers ...ports.HealthChecker) *HealthHandler {
	live := make([]ports.HealthChecker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			live = append(live, c)
		}
	}
	return &HealthHandler{checkers: live}
}

func (h *HealthHandler) Check(c *gin.Context) {
	deps := gin.H{}
	healthy := true
	for _, checker := range h.checkers {
		if err := checker.Ping(c.Request.Context()); err != nil {
			deps[checker.Name()] = err.Error()
			healthy = false
			continue
		}
		deps[checker.Name()] = "ok"
	}

	status := http.StatusOK
	body := gin.H{"status": "ok", "dependencies": deps}
	if !healthy {
		status = http.StatusServiceUnavailable
		body["status"] = "degraded"
	}
	c.JSON(status, body)
}
