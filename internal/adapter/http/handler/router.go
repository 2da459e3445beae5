package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"acp-checkout-gateway/internal/adapter/http/middleware"
	redisStore "acp-checkout-gateway/internal/adapter/storage/redis"
	"acp-checkout-gateway/internal/checkout"
	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/signature"
)

// RouterDeps holds everything SetupRouter needs to wire the five checkout
// session operations behind the ambient middleware stack.
type RouterDeps struct {
	Engine         *checkout.Engine
	SignatureSvc   *signature.Service         // nil disables inbound signature verification
	AuthVerifier   ports.AuthVerifier         // nil disables bearer authentication
	AuditSink      ports.AuditSink            // nil disables audit logging
	RateLimitStore *redisStore.RateLimitStore // nil disables rate limiting
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20))
	r.Use(middleware.HeaderEcho())
	if deps.AuditSink != nil {
		r.Use(middleware.AuditLog(deps.AuditSink))
	}

	health := NewHealthHandler(deps.HealthCheckers...)
	r.GET("/health", health.Check)

	rules := middleware.DefaultRateLimitRules()
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	sessionHandler := NewSessionHandler(deps.Engine)
	auth := middleware.BearerAuth(deps.AuthVerifier)
	sig := middleware.SignatureVerify(deps.SignatureSvc)

	sessions := r.Group("/checkout_sessions", auth, sig)
	{
		sessions.POST("", rl("create"), sessionHandler.Create)
		sessions.GET("/:id", rl("get"), sessionHandler.Get)
		sessions.POST("/:id", rl("update"), sessionHandler.Update)
		sessions.POST("/:id/complete", rl("complete"), sessionHandler.Complete)
		sessions.POST("/:id/cancel", rl("cancel"), sessionHandler.Cancel)
	}

	return r
}
