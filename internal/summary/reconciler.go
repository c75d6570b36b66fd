package summary

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shoplane/storefront-backend/internal/cart"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/metrics"
	"github.com/shoplane/storefront-backend/pkg/types"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

const quoteTimeout = 10 * time.Second

// Quoter prices delivery to an address.
type Quoter interface {
	QuoteShipping(ctx context.Context, req upstream.ShippingQuoteRequest) (*upstream.ShippingQuote, error)
}

// Summary is the order totals view: every derived charge for the current
// cart, in cents.
type Summary struct {
	SubtotalCents int64          `json:"subtotal_cents"`
	DiscountCents int64          `json:"discount_cents"`
	ShippingCents int64          `json:"shipping_cents"`
	TaxCents      int64          `json:"tax_cents"`
	TotalCents    int64          `json:"total_cents"`
	Currency      string         `json:"currency"`
	ShippingStale bool           `json:"shipping_stale"`
	Address       *types.Address `json:"address,omitempty"`
	PromoCode     string         `json:"promo_code,omitempty"`
}

// Subscriber receives a summary snapshot after every recomputation.
type Subscriber func(Summary)

// Subscription is a handle on a registered subscriber.
type Subscription struct {
	once    sync.Once
	release func()
}

func (s *Subscription) Release() {
	s.once.Do(s.release)
}

// Reconciler derives the order summary for one customer. It follows the cart
// through a subscription and re-quotes shipping when the address or subtotal
// changes. Quotes resolve asynchronously; when several are in flight the most
// recently issued one wins regardless of arrival order.
type Reconciler struct {
	mu         sync.Mutex
	quoter     Quoter
	logg       *logger.Logger
	met        *metrics.UpstreamMetrics
	customerID string
	taxRate    decimal.Decimal

	subtotalCents int64
	discountCents int64
	shippingCents int64
	shippingStale bool
	promoCode     string
	currency      string
	address       *types.Address
	quoteSeq      uint64

	subs    map[int]Subscriber
	nextSub int

	cartSub *cart.Subscription
}

func NewReconciler(store *cart.Store, quoter Quoter, customerID, currency string, taxRate decimal.Decimal, met *metrics.UpstreamMetrics, logg *logger.Logger) *Reconciler {
	r := &Reconciler{
		quoter:     quoter,
		logg:       logg,
		met:        met,
		customerID: customerID,
		taxRate:    taxRate,
		currency:   currency,
		subs:       map[int]Subscriber{},
	}

	snapshot := store.Snapshot()
	r.subtotalCents = snapshot.SubtotalCents
	r.cartSub = store.Subscribe(func(c cart.Cart) {
		r.onCartChange(c)
	})
	return r
}

// Close detaches the reconciler from its cart.
func (r *Reconciler) Close() {
	if r.cartSub != nil {
		r.cartSub.Release()
	}
}

// Snapshot returns the current summary.
func (r *Reconciler) Snapshot() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.computeLocked()
}

// Subscribe registers a subscriber for summary changes.
func (r *Reconciler) Subscribe(fn Subscriber) *Subscription {
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = fn
	r.mu.Unlock()

	return &Subscription{release: func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}}
}

// SetShippingAddress records the destination and kicks off a quote. The fee
// stays at its previous value until the quote resolves.
func (r *Reconciler) SetShippingAddress(ctx context.Context, addr types.Address) error {
	addr = addr.Normalize()
	if err := addr.Validate(); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid shipping address")
	}

	r.mu.Lock()
	r.address = &addr
	subtotal := r.subtotalCents
	r.mu.Unlock()

	r.requestQuote(ctx, addr, subtotal)
	r.notify()
	return nil
}

// SetDiscount sets the cart-level discount and the code it came from. A zero
// discount with an empty code clears promo state from the summary.
func (r *Reconciler) SetDiscount(discountCents int64, promoCode string) {
	if discountCents < 0 {
		discountCents = 0
	}
	r.mu.Lock()
	r.discountCents = discountCents
	r.promoCode = promoCode
	r.mu.Unlock()
	r.notify()
}

func (r *Reconciler) onCartChange(c cart.Cart) {
	r.mu.Lock()
	r.subtotalCents = c.SubtotalCents
	if c.Currency != "" {
		r.currency = c.Currency
	}
	addr := r.address
	subtotal := r.subtotalCents
	r.mu.Unlock()

	// Shipping depends on the cart contents, so an address on file means
	// the fee needs a fresh quote.
	if addr != nil {
		r.requestQuote(context.Background(), *addr, subtotal)
	}
	r.notify()
}

// requestQuote resolves a shipping fee in the background. Responses are
// ordered by issue sequence, not arrival: a quote that comes back after a
// newer one was issued is dropped.
func (r *Reconciler) requestQuote(ctx context.Context, addr types.Address, subtotalCents int64) {
	r.mu.Lock()
	r.quoteSeq++
	seq := r.quoteSeq
	r.mu.Unlock()

	go func() {
		quoteCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), quoteTimeout)
		defer cancel()

		quote, err := r.quoter.QuoteShipping(quoteCtx, upstream.ShippingQuoteRequest{
			CustomerID:    r.customerID,
			Address:       addr,
			SubtotalCents: subtotalCents,
		})

		r.mu.Lock()
		if seq != r.quoteSeq {
			r.mu.Unlock()
			return
		}
		if err != nil {
			// Keep serving the previous fee, flagged as stale.
			r.shippingStale = true
			r.mu.Unlock()
			if r.logg != nil {
				r.logg.Warn(quoteCtx, "shipping quote failed, serving stale fee: "+err.Error())
			}
			r.met.IncStaleServed("shipping_quote")
			r.notify()
			return
		}
		r.shippingCents = quote.FeeCents
		r.shippingStale = false
		if quote.Currency != "" {
			r.currency = quote.Currency
		}
		r.mu.Unlock()
		r.notify()
	}()
}

// computeLocked derives the summary from current state. Callers hold r.mu.
func (r *Reconciler) computeLocked() Summary {
	tax := decimal.NewFromInt(r.subtotalCents).
		Mul(r.taxRate).
		Div(decimal.NewFromInt(100)).
		Floor().
		IntPart()

	total := r.subtotalCents + r.shippingCents + tax - r.discountCents
	if total < 0 {
		total = 0
	}

	var addr *types.Address
	if r.address != nil {
		copied := *r.address
		addr = &copied
	}

	return Summary{
		SubtotalCents: r.subtotalCents,
		DiscountCents: r.discountCents,
		ShippingCents: r.shippingCents,
		TaxCents:      tax,
		TotalCents:    total,
		Currency:      r.currency,
		ShippingStale: r.shippingStale,
		Address:       addr,
		PromoCode:     r.promoCode,
	}
}

func (r *Reconciler) notify() {
	r.mu.Lock()
	snapshot := r.computeLocked()
	subs := make([]Subscriber, 0, len(r.subs))
	for _, fn := range r.subs {
		subs = append(subs, fn)
	}
	r.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
}
