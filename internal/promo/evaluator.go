package promo

import (
	"context"
	"strings"
	"sync"

	"github.com/shoplane/storefront-backend/internal/cart"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

const rejectionFallback = "this code cannot be applied to your cart"

// Validator asks the platform for a verdict on a candidate code.
type Validator interface {
	ValidatePromo(ctx context.Context, req upstream.PromoValidationRequest) (*upstream.PromoValidationResult, error)
}

// Applied is a promo code accepted for the current cart, with its discount
// computed against the subtotal it was accepted at.
type Applied struct {
	Code          string             `json:"code"`
	Kind          upstream.PromoKind `json:"kind"`
	DiscountCents int64              `json:"discount_cents"`

	def upstream.PromoDefinition
}

// Evaluator holds one customer's applied promo state. At most one code is
// applied at a time, and at most one evaluation is in flight at a time.
type Evaluator struct {
	mu         sync.Mutex
	catalog    *Catalog
	validator  Validator
	logg       *logger.Logger
	customerID string
	applied    *Applied
	busy       bool
}

func NewEvaluator(catalog *Catalog, validator Validator, customerID string, logg *logger.Logger) *Evaluator {
	return &Evaluator{
		catalog:    catalog,
		validator:  validator,
		customerID: customerID,
		logg:       logg,
	}
}

// Applied returns the currently applied promo, or nil.
func (e *Evaluator) Applied() *Applied {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applied == nil {
		return nil
	}
	out := *e.applied
	return &out
}

// Apply validates a candidate code against the cart and, on acceptance,
// replaces any previously applied promo. A second call while a validation is
// in flight is rejected rather than queued.
func (e *Evaluator) Apply(ctx context.Context, code string, snapshot cart.Cart) (*Applied, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}
	if snapshot.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodePromoRejected, "cart is empty")
	}

	e.mu.Lock()
	if e.busy {
		e.mu.Unlock()
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "a promo code is already being applied")
	}
	e.busy = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.busy = false
		e.mu.Unlock()
	}()

	if e.logg != nil {
		ctx = e.logg.WithPromoCode(ctx, code)
	}

	result, err := e.validator.ValidatePromo(ctx, e.validationRequest(code, snapshot))
	if err != nil {
		return nil, err
	}
	if !result.IsValid {
		reason := strings.TrimSpace(result.Reason)
		if reason == "" {
			reason = rejectionFallback
		}
		return nil, pkgerrors.New(pkgerrors.CodePromoRejected, reason)
	}

	def, ok := e.catalog.Lookup(code)
	if !ok {
		// The platform accepted a code we have no definition for. There
		// is nothing to price, so the applied state is left untouched.
		if e.logg != nil {
			e.logg.Warn(ctx, "validated promo has no local definition")
		}
		return e.Applied(), nil
	}

	applied := &Applied{
		Code:          def.Code,
		Kind:          def.Kind,
		DiscountCents: CalculateDiscount(def, snapshot.SubtotalCents),
		def:           def,
	}

	e.mu.Lock()
	e.applied = applied
	e.mu.Unlock()

	if e.logg != nil {
		e.logg.Info(ctx, "promo applied")
	}
	out := *applied
	return &out, nil
}

// Reprice recomputes the applied promo's discount against a new subtotal.
// It returns the refreshed state, or nil when no promo is applied.
func (e *Evaluator) Reprice(subtotalCents int64) *Applied {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.applied == nil {
		return nil
	}
	e.applied.DiscountCents = CalculateDiscount(e.applied.def, subtotalCents)
	out := *e.applied
	return &out
}

// Clear removes the applied promo. Clearing when nothing is applied is a
// no-op.
func (e *Evaluator) Clear() {
	e.mu.Lock()
	e.applied = nil
	e.mu.Unlock()
}

func (e *Evaluator) validationRequest(code string, snapshot cart.Cart) upstream.PromoValidationRequest {
	items := make([]upstream.PromoValidationItem, 0, len(snapshot.Items))
	for _, line := range snapshot.Items {
		items = append(items, upstream.PromoValidationItem{
			ProductID:      line.ProductID,
			Qty:            line.Qty,
			UnitPriceCents: line.UnitPriceCents,
		})
	}
	return upstream.PromoValidationRequest{
		Code:          normalizeCode(code),
		CustomerID:    e.customerID,
		Items:         items,
		SubtotalCents: snapshot.SubtotalCents,
	}
}
