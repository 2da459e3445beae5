// Package integration exercises the full HTTP stack — middleware, handlers,
// the checkout engine, and the idempotency guard — against an in-memory KV
// store and the demo catalog/PSP adapters.
package integration

import (
	"net/http/httptest"
	"time"

	"github.com/rs/zerolog"

	httpHandler "acp-checkout-gateway/internal/adapter/http/handler"
	"acp-checkout-gateway/internal/checkout"
	"acp-checkout-gateway/internal/core/domain"
	"acp-checkout-gateway/internal/core/ports/testfakes"
	"acp-checkout-gateway/internal/demo"
	"acp-checkout-gateway/internal/idempotency"
	"acp-checkout-gateway/internal/kv"
	"acp-checkout-gateway/internal/repository"
	"acp-checkout-gateway/internal/signature"
)

const testSigningSecret = "integration-test-secret"

// testApp wires a complete gateway against an in-memory store so tests can
// fire real HTTP requests through httptest.Server and observe real
// responses, including idempotency replay and webhook delivery.
type testApp struct {
	server  *httptest.Server
	store   *kv.Memory
	psp     *demo.PSP
	webhook *testfakes.WebhookSink
	sig     *signature.Service
}

// newTestApp builds a gateway seeded with a single catalog product "widget"
// priced at 1500 USD cents. declineToken, when non-empty, causes PSP
// authorization to fail for that delegated token.
func newTestApp(declineToken string) *testApp {
	store := kv.NewMemory()
	sessions := repository.NewSessionRepository(store)
	guard := idempotency.New(store, time.Hour, nil)

	catalog := demo.NewCatalog("usd", map[string]demo.CatalogProduct{
		"widget": {Title: "Widget", UnitPrice: domain.Money{Amount: 1500, Currency: "usd"}},
	})
	psp := demo.NewPSP(declineToken)
	webhook := &testfakes.WebhookSink{}
	sig := signature.New(testSigningSecret, time.Minute)

	engine := checkout.New(sessions, guard, catalog, psp, webhook, 24*time.Hour, zerolog.Nop())

	router := httpHandler.SetupRouter(httpHandler.RouterDeps{
		Engine:       engine,
		SignatureSvc: sig,
		Logger:       zerolog.Nop(),
	})

	return &testApp{
		server:  httptest.NewServer(router),
		store:   store,
		psp:     psp,
		webhook: webhook,
		sig:     sig,
	}
}

func (a *testApp) close() {
	a.server.Close()
}
