package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"acp-checkout-gateway/config"
	httpHandler "acp-checkout-gateway/internal/adapter/http/handler"
	pgStorage "acp-checkout-gateway/internal/adapter/storage/postgres"
	redisStorage "acp-checkout-gateway/internal/adapter/storage/redis"
	"acp-checkout-gateway/internal/audit"
	auditpg "acp-checkout-gateway/internal/audit/postgres"
	"acp-checkout-gateway/internal/auth"
	"acp-checkout-gateway/internal/checkout"
	"acp-checkout-gateway/internal/core/domain"
	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/demo"
	"acp-checkout-gateway/internal/idempotency"
	"acp-checkout-gateway/internal/kv"
	"acp-checkout-gateway/internal/repository"
	"acp-checkout-gateway/internal/security"
	"acp-checkout-gateway/internal/signature"
	"acp-checkout-gateway/internal/webhook"
	"acp-checkout-gateway/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().
		Int("port", cfg.Server.Port).
		Str("api_version", cfg.Server.APIVersionAdvertised).
		Msg("starting checkout gateway")

	ctx := context.Background()

	var store ports.KVStore
	var healthCheckers []ports.HealthChecker
	var rateLimitStore *redisStorage.RateLimitStore

	if cfg.Redis.ConnectionString == "" {
		log.Warn().Msg("redis.connection_string is empty; falling back to in-memory KV store (single-process only, no rate limiting)")
		store = kv.NewMemory()
	} else {
		rdb, rerr := redisStorage.NewClient(ctx, cfg.Redis, log)
		if rerr != nil {
			log.Fatal().Err(rerr).Msg("failed to connect to redis")
		}
		defer rdb.Close()

		store = kv.NewRedis(rdb)
		healthCheckers = append(healthCheckers, redisStorage.NewHealthCheck(rdb))
		rateLimitStore = redisStorage.NewRateLimitStore(rdb)
	}

	sessions := repository.NewSessionRepository(store)

	encryptor := security.NewEncryptor(cfg.Webhook.Secret)
	guard := idempotency.New(store, cfg.Session.IdempotencyTTL, encryptor)

	var auditSink ports.AuditSink
	var deliveryLog audit.WebhookDeliveryLog
	if cfg.Database.Enabled {
		pool, derr := pgStorage.NewPool(ctx, cfg.Database, log)
		if derr != nil {
			log.Fatal().Err(derr).Msg("failed to connect to postgres")
		}
		defer pool.Close()
		sink := auditpg.NewSink(pool, log)
		auditSink = sink
		deliveryLog = sink
		healthCheckers = append(healthCheckers, pgStorage.NewHealthCheck(pool))
	}

	var webhookSink ports.WebhookSink
	if cfg.Webhook.URL != "" {
		webhookSink = webhook.NewSender(cfg.Webhook.URL, cfg.Webhook.MerchantName, cfg.Webhook.Secret, cfg.Webhook.Timeout, deliveryLog, log)
	}

	catalog := demo.NewCatalog("usd", map[string]demo.CatalogProduct{
		"sku_widget": {Title: "Widget", UnitPrice: domain.Money{Amount: 1999, Currency: "usd"}},
		"sku_gadget": {Title: "Gadget", UnitPrice: domain.Money{Amount: 4999, Currency: "usd"}},
	})
	psp := demo.NewPSP("")

	engine := checkout.New(sessions, guard, catalog, psp, webhookSink, cfg.Session.SessionTTL, log)

	var authVerifier ports.AuthVerifier
	switch cfg.Auth.Mode {
	case "static":
		bearer, berr := auth.NewStaticBearer(cfg.Auth.BearerToken)
		if berr != nil {
			log.Fatal().Err(berr).Msg("failed to initialize static bearer verifier")
		}
		authVerifier = bearer
	case "jwt":
		authVerifier = auth.NewJWTVerifier(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)
	}

	var sigSvc *signature.Service
	if cfg.Webhook.Secret != "" {
		sigSvc = signature.New(cfg.Webhook.Secret, time.Duration(cfg.Signature.ToleranceSec)*time.Second)
	}

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Engine:         engine,
		SignatureSvc:   sigSvc,
		AuthVerifier:   authVerifier,
		AuditSink:      auditSink,
		RateLimitStore: rateLimitStore,
		HealthCheckers: healthCheckers,
		Logger:         log,
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited")
}
