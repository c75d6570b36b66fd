package promo

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shoplane/storefront-backend/internal/cart"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/upstream"
)

type stubValidator struct {
	mu      sync.Mutex
	result  *upstream.PromoValidationResult
	err     error
	calls   int
	lastReq upstream.PromoValidationRequest
	release chan struct{}
}

func (v *stubValidator) ValidatePromo(ctx context.Context, req upstream.PromoValidationRequest) (*upstream.PromoValidationResult, error) {
	v.mu.Lock()
	v.calls++
	v.lastReq = req
	v.mu.Unlock()
	if v.release != nil {
		<-v.release
	}
	if v.err != nil {
		return nil, v.err
	}
	return v.result, nil
}

type stubLister struct {
	defs []upstream.PromoDefinition
	err  error
}

func (l *stubLister) ListPromos(ctx context.Context) ([]upstream.PromoDefinition, error) {
	return l.defs, l.err
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func testCart(subtotalCents int64) cart.Cart {
	return cart.Cart{
		CustomerID: "cust-1",
		Items: []cart.LineItem{{
			ProductID:                uuid.New(),
			Name:                     "tea",
			UnitPriceCents:           subtotalCents,
			DiscountedUnitPriceCents: subtotalCents,
			Qty:                      1,
			Currency:                 "USD",
		}},
		SubtotalCents: subtotalCents,
		Currency:      "USD",
	}
}

func refreshedCatalog(t *testing.T, defs ...upstream.PromoDefinition) *Catalog {
	t.Helper()
	catalog := NewCatalog(testLogger())
	if err := catalog.Refresh(context.Background(), &stubLister{defs: defs}); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	return catalog
}

func TestApplyAcceptedCode(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t, percentageDef(10, 5000))
	validator := &stubValidator{result: &upstream.PromoValidationResult{IsValid: true, Code: "PCT"}}
	eval := NewEvaluator(catalog, validator, "cust-1", testLogger())

	applied, err := eval.Apply(context.Background(), "pct", testCart(10000))
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied == nil || applied.Code != "PCT" || applied.DiscountCents != 1000 {
		t.Fatalf("unexpected applied state: %+v", applied)
	}
	if got := eval.Applied(); got == nil || got.DiscountCents != 1000 {
		t.Fatalf("applied state not retained: %+v", got)
	}
	if validator.lastReq.Code != "PCT" {
		t.Fatalf("expected normalized code in request, got %q", validator.lastReq.Code)
	}
}

func TestApplyRejectedCodeSurfacesReason(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t, percentageDef(10, 5000))
	validator := &stubValidator{result: &upstream.PromoValidationResult{IsValid: false, Code: "PCT", Reason: "expired last week"}}
	eval := NewEvaluator(catalog, validator, "cust-1", testLogger())

	_, err := eval.Apply(context.Background(), "PCT", testCart(10000))
	if err == nil {
		t.Fatal("expected rejection error")
	}
	appErr := pkgerrors.As(err)
	if appErr == nil || appErr.Code() != pkgerrors.CodePromoRejected {
		t.Fatalf("expected promo rejected code, got %v", err)
	}
	if appErr.Message() != "expired last week" {
		t.Fatalf("expected server reason, got %q", appErr.Message())
	}
	if eval.Applied() != nil {
		t.Fatal("rejected code must not change applied state")
	}
}

func TestApplyRejectedCodeWithoutReasonUsesFallback(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t, percentageDef(10, 5000))
	validator := &stubValidator{result: &upstream.PromoValidationResult{IsValid: false, Code: "PCT"}}
	eval := NewEvaluator(catalog, validator, "cust-1", testLogger())

	_, err := eval.Apply(context.Background(), "PCT", testCart(10000))
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected app error, got %v", err)
	}
	if appErr.Message() != rejectionFallback {
		t.Fatalf("expected fallback reason, got %q", appErr.Message())
	}
}

func TestApplyValidatedCodeWithoutDefinitionIsNoOp(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t)
	validator := &stubValidator{result: &upstream.PromoValidationResult{IsValid: true, Code: "GHOST"}}
	eval := NewEvaluator(catalog, validator, "cust-1", testLogger())

	applied, err := eval.Apply(context.Background(), "GHOST", testCart(10000))
	if err != nil {
		t.Fatalf("expected silent no-op, got %v", err)
	}
	if applied != nil {
		t.Fatalf("expected no applied state, got %+v", applied)
	}
}

func TestApplyRejectsConcurrentEvaluation(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t, percentageDef(10, 5000))
	validator := &stubValidator{
		result:  &upstream.PromoValidationResult{IsValid: true, Code: "PCT"},
		release: make(chan struct{}),
	}
	eval := NewEvaluator(catalog, validator, "cust-1", testLogger())

	done := make(chan error, 1)
	go func() {
		_, err := eval.Apply(context.Background(), "PCT", testCart(10000))
		done <- err
	}()

	// Wait for the first evaluation to reach the validator.
	deadline := time.After(2 * time.Second)
	for {
		validator.mu.Lock()
		started := validator.calls > 0
		validator.mu.Unlock()
		if started {
			break
		}
		select {
		case <-deadline:
			t.Fatal("first evaluation never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	_, err := eval.Apply(context.Background(), "PCT", testCart(10000))
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict while in flight, got %v", err)
	}

	close(validator.release)
	if err := <-done; err != nil {
		t.Fatalf("first apply: %v", err)
	}
}

func TestApplyOnEmptyCart(t *testing.T) {
	t.Parallel()

	validator := &stubValidator{}
	eval := NewEvaluator(refreshedCatalog(t), validator, "cust-1", testLogger())

	_, err := eval.Apply(context.Background(), "PCT", cart.Cart{})
	if appErr := pkgerrors.As(err); appErr == nil || appErr.Code() != pkgerrors.CodePromoRejected {
		t.Fatalf("expected rejection on empty cart, got %v", err)
	}
	if validator.calls != 0 {
		t.Fatal("empty cart must not reach the validator")
	}
}

func TestRepriceFollowsSubtotal(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t, percentageDef(10, 5000))
	validator := &stubValidator{result: &upstream.PromoValidationResult{IsValid: true, Code: "PCT"}}
	eval := NewEvaluator(catalog, validator, "cust-1", testLogger())

	if _, err := eval.Apply(context.Background(), "PCT", testCart(10000)); err != nil {
		t.Fatalf("apply: %v", err)
	}

	if got := eval.Reprice(100000); got == nil || got.DiscountCents != 5000 {
		t.Fatalf("expected capped discount 5000, got %+v", got)
	}
	if got := eval.Reprice(2000); got == nil || got.DiscountCents != 200 {
		t.Fatalf("expected discount 200, got %+v", got)
	}

	eval.Clear()
	if eval.Reprice(10000) != nil {
		t.Fatal("expected nil reprice after clear")
	}
	eval.Clear() // clearing twice is fine
}

func TestCatalogLookupFiltersInactiveAndExpired(t *testing.T) {
	t.Parallel()

	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)
	inactive := percentageDef(10, 0)
	inactive.Code = "OFF"
	inactive.Active = false
	expired := percentageDef(10, 0)
	expired.Code = "OLD"
	expired.EndsAt = &past
	upcoming := percentageDef(10, 0)
	upcoming.Code = "SOON"
	upcoming.StartsAt = &future
	live := upstream.PromoDefinition{
		Code:         "LIVE",
		Kind:         upstream.PromoKindPercentage,
		OfferPercent: decimal.NewFromInt(5),
		Active:       true,
		StartsAt:     &past,
		EndsAt:       &future,
	}

	catalog := refreshedCatalog(t, inactive, expired, upcoming, live)

	for _, code := range []string{"OFF", "OLD", "SOON", "MISSING"} {
		if _, ok := catalog.Lookup(code); ok {
			t.Fatalf("expected %q to be unavailable", code)
		}
	}
	if _, ok := catalog.Lookup("live"); !ok {
		t.Fatal("expected case-insensitive lookup of live code")
	}
	if got := len(catalog.Definitions()); got != 4 {
		t.Fatalf("expected 4 cached definitions, got %d", got)
	}
}

func TestCatalogRefreshKeepsOldSnapshotOnFailure(t *testing.T) {
	t.Parallel()

	catalog := refreshedCatalog(t, percentageDef(10, 0))
	err := catalog.Refresh(context.Background(), &stubLister{err: pkgerrors.New(pkgerrors.CodeUpstream, "platform down")})
	if err == nil {
		t.Fatal("expected refresh error")
	}
	if _, ok := catalog.Lookup("PCT"); !ok {
		t.Fatal("expected previous snapshot to survive a failed refresh")
	}
}
