// Package statemachine validates checkout session state transitions.
package statemachine

import (
	"fmt"

	"acp-checkout-gateway/internal/core/domain"
)

var allowed = map[domain.SessionStatus]map[domain.SessionStatus]bool{
	domain.StatusNotReadyForPayment: {
		domain.StatusReadyForPayment: true,
		domain.StatusCanceled:        true,
	},
	domain.StatusReadyForPayment: {
		domain.StatusCompleted: true,
		domain.StatusCanceled:  true,
	},
	domain.StatusCompleted: {},
	domain.StatusCanceled:  {},
}

// CanTransition reports whether from -> to is a legal move, returning a
// human-readable reason when it is not.
func CanTransition(from, to domain.SessionStatus) error {
	if from.IsTerminal() {
		return fmt.Errorf("session is in terminal state %q and cannot transition to %q", from, to)
	}
	if from == to {
		return nil
	}
	if allowed[from][to] {
		return nil
	}
	return fmt.Errorf("transition from %q to %q is not permitted", from, to)
}
