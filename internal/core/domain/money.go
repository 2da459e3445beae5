package domain

import "fmt"

// Money is an amount in integer minor units of a single currency.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

// Add returns the sum of m and other. Both must share a currency.
func (m Money) Add(other Money) (Money, error) {
	if other.Amount == 0 && other.Currency == "" {
		return m, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount + other.Amount, Currency: m.Currency}, nil
}

// Sub returns m minus other. Both must share a currency.
func (m Money) Sub(other Money) (Money, error) {
	if other.Amount == 0 && other.Currency == "" {
		return m, nil
	}
	if m.Currency != other.Currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.Currency, other.Currency)
	}
	return Money{Amount: m.Amount - other.Amount, Currency: m.Currency}, nil
}

// Mul returns m scaled by qty. qty is a plain integer multiplier (e.g. line item quantity).
func (m Money) Mul(qty int) Money {
	return Money{Amount: m.Amount * int64(qty), Currency: m.Currency}
}

// IsZero reports whether the money value was never set.
func (m Money) IsZero() bool {
	return m.Amount == 0 && m.Currency == ""
}
