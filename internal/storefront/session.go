package storefront

import (
	"context"

	"github.com/shoplane/storefront-backend/internal/cart"
	"github.com/shoplane/storefront-backend/internal/promo"
	"github.com/shoplane/storefront-backend/internal/summary"
	"github.com/shoplane/storefront-backend/internal/wishlist"
)

// Session bundles one customer's storefront state. The cart is the source of
// truth; the promo evaluator and the summary reconciler follow it through
// subscriptions, so every cart mutation reprices the discount and refreshes
// the totals without the caller doing anything.
type Session struct {
	CustomerID string
	Cart       *cart.Store
	Promo      *promo.Evaluator
	Summary    *summary.Reconciler
	Wishlist   *wishlist.Store

	cartSub *cart.Subscription
}

// ApplyPromo validates a code against the current cart and, on acceptance,
// folds the discount into the summary.
func (s *Session) ApplyPromo(ctx context.Context, code string) (*promo.Applied, error) {
	applied, err := s.Promo.Apply(ctx, code, s.Cart.Snapshot())
	if err != nil {
		return nil, err
	}
	if applied != nil {
		s.Summary.SetDiscount(applied.DiscountCents, applied.Code)
	}
	return applied, nil
}

// ClearPromo removes the applied code and its discount. Clearing twice is
// harmless.
func (s *Session) ClearPromo() {
	s.Promo.Clear()
	s.Summary.SetDiscount(0, "")
}

// Close releases the session's subscriptions. State stays persisted; a later
// Registry lookup rebuilds the session from the key-value backend.
func (s *Session) Close() {
	if s.cartSub != nil {
		s.cartSub.Release()
	}
	s.Summary.Close()
}

// followCart keeps the applied discount aligned with the subtotal as the
// cart changes.
func (s *Session) followCart() {
	s.cartSub = s.Cart.Subscribe(func(c cart.Cart) {
		if applied := s.Promo.Reprice(c.SubtotalCents); applied != nil {
			s.Summary.SetDiscount(applied.DiscountCents, applied.Code)
		}
	})
}
