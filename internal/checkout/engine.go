// Package checkout implements the Protocol Handlers: the five checkout
// session operations, each wrapped in the Idempotency Guard and built on
// the catalog, PSP, and webhook adapter interfaces.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"acp-checkout-gateway/internal/core/domain"
	"acp-checkout-gateway/internal/core/ports"
	"acp-checkout-gateway/internal/idempotency"
	"acp-checkout-gateway/internal/statemachine"
	"acp-checkout-gateway/internal/validate"
	"acp-checkout-gateway/pkg/apperror"
)

// Engine orchestrates quote, persistence, state transitions, payment, and
// webhook emission behind the five REST operations. It depends only on
// ports interfaces, never on a concrete catalog, PSP, or webhook backend.
type Engine struct {
	sessions   ports.SessionRepository
	guard      *idempotency.Guard
	catalog    ports.CatalogAdapter
	psp        ports.PSPAdapter
	webhooks   ports.WebhookSink
	sessionTTL time.Duration
	log        zerolog.Logger
}

// New builds an Engine. sessionTTL is passed to every Put; webhooks may be
// nil to disable outbound notification entirely (useful for tests).
func New(
	sessions ports.SessionRepository,
	guard *idempotency.Guard,
	catalog ports.CatalogAdapter,
	psp ports.PSPAdapter,
	webhooks ports.WebhookSink,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *Engine {
	return &Engine{
		sessions:   sessions,
		guard:      guard,
		catalog:    catalog,
		psp:        psp,
		webhooks:   webhooks,
		sessionTTL: sessionTTL,
		log:        log,
	}
}

// OpResult is what every guarded operation returns: the resulting session
// and whether the response was replayed from a prior idempotent call.
type OpResult struct {
	Session *domain.CheckoutSession
	Reused  bool
}

func statusFromReady(ready bool) domain.SessionStatus {
	if ready {
		return domain.StatusReadyForPayment
	}
	return domain.StatusNotReadyForPayment
}

// validateQuote re-checks the two Data Model invariants the catalog is
// trusted to uphold (grand_total sums correctly, fulfillment selected_id
// names an offered option) before the engine persists the quote it returned.
// A buggy catalog adapter fails this, not a buyer-visible invariant breach.
func validateQuote(quote ports.Quote) error {
	if err := quote.Totals.Validate(); err != nil {
		return fmt.Errorf("catalog quote: %w", err)
	}
	if quote.Fulfillment != nil {
		if err := quote.Fulfillment.Validate(); err != nil {
			return fmt.Errorf("catalog quote: %w", err)
		}
	}
	return nil
}

// scopeIdempotencyKey namespaces a client-supplied Idempotency-Key under
// the "acp:" prefix and by operation and session id, per spec.md's "scope
// is per endpoint+method":
// the same raw key reused across two different operations (or two
// different sessions) must never collide in the guard's store. An empty
// key passes through unscoped so the guard's bypass-on-empty-key behavior
// is unaffected.
func scopeIdempotencyKey(operation, id, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("acp:%s:%s:%s", operation, id, key)
}

// Create handles POST /checkout_sessions.
func (e *Engine) Create(ctx context.Context, idempotencyKey string, req validate.CreateRequest) (OpResult, *apperror.AppError) {
	items, customer, fulfillment := req.ToDomain()

	compute := func(ctx context.Context) (string, error) {
		quote, err := e.catalog.Price(ctx, ports.PriceRequest{Items: items, Customer: customer, Fulfillment: fulfillment})
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("catalog price: %w", err))
		}
		if err := validateQuote(quote); err != nil {
			return "", apperror.InternalError(err)
		}
		now := time.Now().UTC()
		session := &domain.CheckoutSession{
			ID:          uuid.NewString(),
			Status:      statusFromReady(quote.Ready),
			Items:       quote.Items,
			Totals:      quote.Totals,
			Fulfillment: quote.Fulfillment,
			Customer:    customer,
			Messages:    quote.Messages,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.sessions.Put(ctx, session, e.sessionTTL); err != nil {
			return "", apperror.InternalError(err)
		}
		return marshalSession(session)
	}

	result, err := e.guard.Run(ctx, scopeIdempotencyKey("create", "", idempotencyKey), compute)
	if err != nil {
		return OpResult{}, translateGuardErr(err)
	}
	session, uerr := unmarshalSession(result.Value)
	if uerr != nil {
		return OpResult{}, apperror.InternalError(uerr)
	}
	return OpResult{Session: session, Reused: result.Reused}, nil
}

// Get handles GET /checkout_sessions/{id}. It is not idempotency-wrapped;
// even a terminal session is retrievable until its TTL expires.
func (e *Engine) Get(ctx context.Context, id string) (*domain.CheckoutSession, *apperror.AppError) {
	session, err := e.sessions.Get(ctx, id)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if session == nil {
		return nil, apperror.ErrSessionNotFound()
	}
	return session, nil
}

// Update handles POST /checkout_sessions/{id}.
func (e *Engine) Update(ctx context.Context, id, idempotencyKey string, req validate.UpdateRequest) (OpResult, *apperror.AppError) {
	items, customer, fulfillment := req.ToDomain()

	compute := func(ctx context.Context) (string, error) {
		current, err := e.sessions.Get(ctx, id)
		if err != nil {
			return "", apperror.InternalError(err)
		}
		if current == nil {
			return "", apperror.ErrSessionNotFound()
		}
		if current.Status.IsTerminal() {
			return "", apperror.ErrInvalidState(string(current.Status), "updated")
		}

		mergedItems := items
		if mergedItems == nil {
			mergedItems = current.ItemRefs()
		}
		mergedCustomer := customer
		if mergedCustomer == nil {
			mergedCustomer = current.Customer
		}
		mergedFulfillment := fulfillment
		if mergedFulfillment == nil {
			mergedFulfillment = current.Fulfillment
		}

		quote, err := e.catalog.Price(ctx, ports.PriceRequest{
			Items:       mergedItems,
			Customer:    mergedCustomer,
			Fulfillment: mergedFulfillment,
		})
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("catalog price: %w", err))
		}
		if err := validateQuote(quote); err != nil {
			return "", apperror.InternalError(err)
		}

		next := current.Clone()
		next.Items = quote.Items
		next.Totals = quote.Totals
		next.Fulfillment = quote.Fulfillment
		next.Customer = mergedCustomer
		next.Messages = quote.Messages

		switch {
		case quote.Ready && next.Status == domain.StatusNotReadyForPayment:
			next.Status = domain.StatusReadyForPayment
		case !quote.Ready:
			next.Status = domain.StatusNotReadyForPayment
		}

		if err := e.sessions.Put(ctx, next, e.sessionTTL); err != nil {
			return "", apperror.InternalError(err)
		}
		return marshalSession(next)
	}

	result, err := e.guard.Run(ctx, scopeIdempotencyKey("update", id, idempotencyKey), compute)
	if err != nil {
		return OpResult{}, translateGuardErr(err)
	}
	session, uerr := unmarshalSession(result.Value)
	if uerr != nil {
		return OpResult{}, apperror.InternalError(uerr)
	}
	return OpResult{Session: session, Reused: result.Reused}, nil
}

// Complete handles POST /checkout_sessions/{id}/complete, the crux of the
// engine: authorize, capture, transition, persist, notify, in that order.
func (e *Engine) Complete(ctx context.Context, id, idempotencyKey string, req validate.CompleteRequest) (OpResult, *apperror.AppError) {
	compute := func(ctx context.Context) (string, error) {
		current, err := e.sessions.Get(ctx, id)
		if err != nil {
			return "", apperror.InternalError(err)
		}
		if current == nil {
			return "", apperror.ErrSessionNotFound()
		}
		if current.Status != domain.StatusReadyForPayment {
			return "", apperror.ErrInvalidState(string(current.Status), string(domain.StatusCompleted))
		}

		auth, err := e.psp.Authorize(ctx, ports.AuthorizeRequest{
			SessionID:      current.ID,
			DelegatedToken: req.Payment.DelegatedToken,
			Method:         req.Payment.Method,
			Amount:         current.Totals.GrandTotal,
		})
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("psp authorize: %w", err))
		}
		if !auth.OK {
			return "", apperror.ErrPaymentAuthFailed(auth.Reason)
		}

		cap, err := e.psp.Capture(ctx, auth.IntentID)
		if err != nil {
			return "", apperror.InternalError(fmt.Errorf("psp capture: %w", err))
		}
		if !cap.OK {
			// Authorized but not captured: explicitly void the authorization
			// rather than leave it dangling on the PSP. Best-effort — a void
			// failure does not change the response to the client.
			if voidErr := e.psp.Void(ctx, auth.IntentID); voidErr != nil {
				e.log.Warn().Err(voidErr).Str("intent_id", auth.IntentID).Msg("failed to void authorization after capture failure")
			}
			return "", apperror.ErrPaymentCaptureFailed(cap.Reason)
		}

		if serr := statemachine.CanTransition(current.Status, domain.StatusCompleted); serr != nil {
			return "", apperror.ErrInvalidState(string(current.Status), string(domain.StatusCompleted))
		}

		next := current.Clone()
		next.Status = domain.StatusCompleted
		order := domain.Order{
			ID:                auth.IntentID,
			CheckoutSessionID: next.ID,
			Status:            domain.OrderPlaced,
		}
		next.Order = &order

		if err := e.sessions.Put(ctx, next, e.sessionTTL); err != nil {
			return "", apperror.InternalError(err)
		}

		e.notify(ctx, ports.OrderEvent{
			Type:              ports.OrderEventUpdated,
			CheckoutSessionID: next.ID,
			Status:            next.Status,
			Order:             &order,
		})

		return marshalSession(next)
	}

	result, err := e.guard.Run(ctx, scopeIdempotencyKey("complete", id, idempotencyKey), compute)
	if err != nil {
		return OpResult{}, translateGuardErr(err)
	}
	session, uerr := unmarshalSession(result.Value)
	if uerr != nil {
		return OpResult{}, apperror.InternalError(uerr)
	}
	return OpResult{Session: session, Reused: result.Reused}, nil
}

// Cancel handles POST /checkout_sessions/{id}/cancel.
func (e *Engine) Cancel(ctx context.Context, id, idempotencyKey string) (OpResult, *apperror.AppError) {
	compute := func(ctx context.Context) (string, error) {
		current, err := e.sessions.Get(ctx, id)
		if err != nil {
			return "", apperror.InternalError(err)
		}
		if current == nil {
			return "", apperror.ErrSessionNotFound()
		}
		if serr := statemachine.CanTransition(current.Status, domain.StatusCanceled); serr != nil {
			return "", apperror.ErrInvalidState(string(current.Status), string(domain.StatusCanceled))
		}

		next := current.Clone()
		next.Status = domain.StatusCanceled

		if err := e.sessions.Put(ctx, next, e.sessionTTL); err != nil {
			return "", apperror.InternalError(err)
		}

		e.notify(ctx, ports.OrderEvent{
			Type:              ports.OrderEventUpdated,
			CheckoutSessionID: next.ID,
			Status:            next.Status,
			Order:             next.Order,
		})

		return marshalSession(next)
	}

	result, err := e.guard.Run(ctx, scopeIdempotencyKey("cancel", id, idempotencyKey), compute)
	if err != nil {
		return OpResult{}, translateGuardErr(err)
	}
	session, uerr := unmarshalSession(result.Value)
	if uerr != nil {
		return OpResult{}, apperror.InternalError(uerr)
	}
	return OpResult{Session: session, Reused: result.Reused}, nil
}

// notify fires the webhook sink synchronously inside the compute closure so
// a cached idempotent replay always carries the same order id. Sender.Send
// only returns an error for marshal/signing failures; actual HTTP delivery
// and retries happen on a detached goroutine, so a slow or unreachable
// merchant endpoint never blocks this response or poisons the idempotency cache.
func (e *Engine) notify(ctx context.Context, event ports.OrderEvent) {
	if e.webhooks == nil {
		return
	}
	if err := e.webhooks.Send(ctx, event); err != nil {
		e.log.Error().Err(err).Str("session_id", event.CheckoutSessionID).Msg("failed to initiate webhook delivery")
	}
}

func marshalSession(session *domain.CheckoutSession) (string, error) {
	raw, err := json.Marshal(session)
	if err != nil {
		return "", fmt.Errorf("checkout: marshal session: %w", err)
	}
	return string(raw), nil
}

func unmarshalSession(raw string) (*domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	if err := json.Unmarshal([]byte(raw), &session); err != nil {
		return nil, fmt.Errorf("checkout: unmarshal cached session: %w", err)
	}
	return &session, nil
}

func translateGuardErr(err error) *apperror.AppError {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	switch {
	case errors.Is(err, idempotency.ErrPreviouslyFailed):
		return apperror.ErrIdempotentPreviouslyFailed()
	case errors.Is(err, idempotency.ErrTimeout):
		return apperror.ErrIdempotentTimeout()
	default:
		return apperror.InternalError(err)
	}
}
