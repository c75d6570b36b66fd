package storefront

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/shoplane/storefront-backend/internal/cart"
	"github.com/shoplane/storefront-backend/internal/promo"
	"github.com/shoplane/storefront-backend/internal/summary"
	"github.com/shoplane/storefront-backend/internal/wishlist"
	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/kv"
	"github.com/shoplane/storefront-backend/pkg/logger"
	"github.com/shoplane/storefront-backend/pkg/metrics"
	"github.com/shoplane/storefront-backend/pkg/redis"
)

// Platform is the slice of the commerce platform client the registry needs.
type Platform interface {
	promo.Validator
	summary.Quoter
}

// Deps carries the shared collaborators every session is built from.
type Deps struct {
	KV       kv.Store
	Platform Platform
	Catalog  *promo.Catalog
	Currency string
	TaxRate  decimal.Decimal
	Metrics  *metrics.UpstreamMetrics
	Logger   *logger.Logger
}

// Registry hands out per-customer sessions, creating each lazily on first
// use and reusing it afterwards. Sessions are cheap; eviction is handled by
// Close or process restart, and persisted state survives both.
type Registry struct {
	mu       sync.Mutex
	deps     Deps
	sessions map[string]*Session
}

func NewRegistry(deps Deps) (*Registry, error) {
	if deps.KV == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "kv store is required")
	}
	if deps.Platform == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "platform client is required")
	}
	if deps.Catalog == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "promo catalog is required")
	}
	return &Registry{deps: deps, sessions: map[string]*Session{}}, nil
}

// Session returns the live session for a customer, building it from the
// persisted cart and wishlist when none exists yet.
func (r *Registry) Session(ctx context.Context, customerID string) (*Session, error) {
	if customerID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.sessions[customerID]; ok {
		return existing, nil
	}

	session, err := r.build(ctx, customerID)
	if err != nil {
		return nil, err
	}
	r.sessions[customerID] = session
	return session, nil
}

// Evict closes a customer's session and forgets it. The next lookup rebuilds
// from persisted state.
func (r *Registry) Evict(customerID string) {
	r.mu.Lock()
	session, ok := r.sessions[customerID]
	delete(r.sessions, customerID)
	r.mu.Unlock()
	if ok {
		session.Close()
	}
}

// Close releases every live session.
func (r *Registry) Close() {
	r.mu.Lock()
	sessions := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		sessions = append(sessions, s)
	}
	r.sessions = map[string]*Session{}
	r.mu.Unlock()

	for _, s := range sessions {
		s.Close()
	}
}

func (r *Registry) build(ctx context.Context, customerID string) (*Session, error) {
	d := r.deps

	cartStore, err := cart.NewStore(ctx, d.KV, redis.CartKey(customerID), customerID, d.Currency, d.Logger)
	if err != nil {
		return nil, err
	}
	wishlistStore, err := wishlist.NewStore(ctx, d.KV, redis.WishlistKey(customerID), d.Logger)
	if err != nil {
		return nil, err
	}

	session := &Session{
		CustomerID: customerID,
		Cart:       cartStore,
		Promo:      promo.NewEvaluator(d.Catalog, d.Platform, customerID, d.Logger),
		Summary:    summary.NewReconciler(cartStore, d.Platform, customerID, d.Currency, d.TaxRate, d.Metrics, d.Logger),
		Wishlist:   wishlistStore,
	}
	session.followCart()
	return session, nil
}
