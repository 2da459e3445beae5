// Package demo provides reference in-memory Catalog and PSP adapters. They
// exist to let cmd/acpserver boot without a real product catalog or
// payment processor wired in; internal/checkout never imports this package.
package demo

import (
	"context"
	"fmt"
	"sync"

	"acp-checkout-gateway/internal/core/domain"
	"acp-checkout-gateway/internal/core/ports"
)

// CatalogProduct is a priced, always-available demo SKU.
type CatalogProduct struct {
	Title     string
	UnitPrice domain.Money
}

// Catalog is a fixed in-memory product list. A quote is ready when at least
// one requested item is in the catalog; unknown items only add an
// item_unavailable warning. There is no out-of-stock or needs-more-info
// simulation here, only enough
// behavior to drive the full checkout lifecycle end to end.
type Catalog struct {
	mu       sync.RWMutex
	products map[string]CatalogProduct
	currency string
}

// NewCatalog seeds a catalog with products, keyed by product id.
func NewCatalog(currency string, products map[string]CatalogProduct) *Catalog {
	return &Catalog{products: products, currency: currency}
}

// Price implements ports.CatalogAdapter.
func (c *Catalog) Price(_ context.Context, req ports.PriceRequest) (ports.Quote, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if len(req.Items) == 0 {
		return ports.Quote{}, fmt.Errorf("catalog: at least one item required")
	}

	items := make([]domain.LineItem, 0, len(req.Items))
	subtotal := domain.Money{Currency: c.currency}
	var messages []domain.Message

	for _, ref := range req.Items {
		product, ok := c.products[ref.ID]
		if !ok {
			messages = append(messages, domain.Message{
				Type:    domain.MessageWarning,
				Code:    "item_unavailable",
				Message: fmt.Sprintf("item %q is not available", ref.ID),
				Param:   "items",
			})
			continue
		}
		line := domain.LineItem{
			ID:        ref.ID,
			Title:     product.Title,
			Quantity:  ref.Quantity,
			UnitPrice: product.UnitPrice,
		}
		items = append(items, line)
		lineTotal := product.UnitPrice.Mul(ref.Quantity)
		var err error
		subtotal, err = subtotal.Add(lineTotal)
		if err != nil {
			return ports.Quote{}, err
		}
	}

	if len(items) == 0 {
		return ports.Quote{
			Items:    items,
			Totals:   domain.Totals{Subtotal: subtotal, GrandTotal: subtotal},
			Messages: messages,
			Ready:    false,
		}, nil
	}

	totals := domain.Totals{Subtotal: subtotal, GrandTotal: subtotal}
	return ports.Quote{
		Items:       items,
		Totals:      totals,
		Fulfillment: req.Fulfillment,
		Messages:    messages,
		Ready:       true,
	}, nil
}

var _ ports.CatalogAdapter = (*Catalog)(nil)
