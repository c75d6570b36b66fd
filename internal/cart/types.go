package cart

import (
	"time"

	"github.com/google/uuid"
)

// LinePromo records promo metadata attached to a single line.
type LinePromo struct {
	Code        string `json:"code"`
	AmountCents int64  `json:"amount_cents"`
}

// LineItem is one product/variant plus quantity entry in a cart. Prices are
// integer cents.
type LineItem struct {
	ProductID                uuid.UUID  `json:"product_id"`
	VariantID                *uuid.UUID `json:"variant_id,omitempty"`
	Name                     string     `json:"name"`
	UnitPriceCents           int64      `json:"unit_price_cents"`
	DiscountedUnitPriceCents int64      `json:"discounted_unit_price_cents"`
	Qty                      int        `json:"qty"`
	Currency                 string     `json:"currency"`
	Promo                    *LinePromo `json:"promo,omitempty"`
	StockSnapshot            *int       `json:"stock_snapshot,omitempty"`
}

// LineTotalCents is the discounted unit price times quantity.
func (li LineItem) LineTotalCents() int64 {
	return li.DiscountedUnitPriceCents * int64(li.Qty)
}

// Cart is the ordered collection of line items plus its cached subtotal.
// Order is insertion order and carries no meaning. The subtotal is recomputed
// synchronously on every mutation and is never allowed to go stale.
type Cart struct {
	CustomerID    string     `json:"customer_id,omitempty"`
	Items         []LineItem `json:"items"`
	SubtotalCents int64      `json:"subtotal_cents"`
	Currency      string     `json:"currency,omitempty"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

// IsEmpty reports whether the cart holds no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// clone deep-copies the cart so snapshots handed to subscribers cannot alias
// the store's internal state.
func (c Cart) clone() Cart {
	out := c
	out.Items = make([]LineItem, len(c.Items))
	copy(out.Items, c.Items)
	for i, item := range c.Items {
		if item.VariantID != nil {
			v := *item.VariantID
			out.Items[i].VariantID = &v
		}
		if item.Promo != nil {
			p := *item.Promo
			out.Items[i].Promo = &p
		}
		if item.StockSnapshot != nil {
			s := *item.StockSnapshot
			out.Items[i].StockSnapshot = &s
		}
	}
	return out
}

func computeSubtotalCents(items []LineItem) int64 {
	var sum int64
	for _, item := range items {
		sum += item.LineTotalCents()
	}
	return sum
}
