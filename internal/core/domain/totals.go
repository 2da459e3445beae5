package domain

import "fmt"

// Totals is the authoritative breakdown of a session's price. GrandTotal
// must equal Subtotal + Tax + Shipping - Discount, treating absent
// components as zero in Subtotal's currency.
type Totals struct {
	Subtotal   Money  `json:"subtotal"`
	Tax        *Money `json:"tax,omitempty"`
	Shipping   *Money `json:"shipping,omitempty"`
	Discount   *Money `json:"discount,omitempty"`
	GrandTotal Money  `json:"grand_total"`
}

// Validate checks that GrandTotal equals Subtotal + Tax + Shipping - Discount.
func (t Totals) Validate() error {
	sum := t.Subtotal
	for _, component := range []*Money{t.Tax, t.Shipping} {
		if component == nil {
			continue
		}
		var err error
		sum, err = sum.Add(*component)
		if err != nil {
			return err
		}
	}
	if t.Discount != nil {
		var err error
		sum, err = sum.Sub(*t.Discount)
		if err != nil {
			return err
		}
	}
	if sum.Currency != t.GrandTotal.Currency || sum.Amount != t.GrandTotal.Amount {
		return fmt.Errorf("grand_total %d %s does not equal computed total %d %s",
			t.GrandTotal.Amount, t.GrandTotal.Currency, sum.Amount, sum.Currency)
	}
	return nil
}
