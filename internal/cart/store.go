package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/kv"
	"github.com/shoplane/storefront-backend/pkg/logger"
)

// Subscriber receives the full cart snapshot after every mutation.
type Subscriber func(Cart)

// Subscription is the handle returned by Subscribe. Consumers must release
// it when they stop listening.
type Subscription struct {
	store *Store
	id    int
	once  sync.Once
}

// Release detaches the subscriber. Safe to call more than once.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.store.unsubscribe(s.id)
	})
}

// Store owns one customer's cart. All mutations run to completion under the
// store lock: recompute subtotal, persist the full document, then notify
// subscribers with a snapshot.
type Store struct {
	mu      sync.Mutex
	kvs     kv.Store
	key     string
	logg    *logger.Logger
	cart    Cart
	subs    map[int]Subscriber
	nextSub int
	now     func() time.Time
}

// NewStore loads the customer's persisted cart from the key-value backend.
// A missing or malformed document yields an empty cart, never an error.
func NewStore(ctx context.Context, kvs kv.Store, key, customerID, currency string, logg *logger.Logger) (*Store, error) {
	if kvs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "kv store is required")
	}
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "cart key is required")
	}

	s := &Store{
		kvs:  kvs,
		key:  key,
		logg: logg,
		cart: Cart{CustomerID: customerID, Currency: currency, Items: []LineItem{}},
		subs: map[int]Subscriber{},
		now:  time.Now,
	}

	raw, err := kvs.Get(ctx, key)
	switch {
	case err == nil:
		var loaded Cart
		if jsonErr := json.Unmarshal([]byte(raw), &loaded); jsonErr != nil {
			// Corrupt documents are discarded rather than surfaced.
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "cart_key", key), "discarding malformed cart document")
			}
		} else {
			loaded.CustomerID = customerID
			if loaded.Items == nil {
				loaded.Items = []LineItem{}
			}
			loaded.SubtotalCents = computeSubtotalCents(loaded.Items)
			if loaded.Currency == "" {
				loaded.Currency = currency
			}
			s.cart = loaded
		}
	case kv.IsNotFound(err):
		// First visit, start empty.
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading cart")
	}

	return s, nil
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.clone()
}

// Subscribe registers a subscriber for post-mutation snapshots.
func (s *Store) Subscribe(fn Subscriber) *Subscription {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return &Subscription{store: s, id: id}
}

func (s *Store) unsubscribe(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}

// Add merges the item into an existing line with the same product id,
// incrementing its quantity, or appends a new line.
func (s *Store) Add(ctx context.Context, item LineItem) (Cart, error) {
	if item.ProductID == uuid.Nil {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	if item.Qty < 1 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	if item.UnitPriceCents < 0 || item.DiscountedUnitPriceCents < 0 {
		return Cart{}, pkgerrors.New(pkgerrors.CodeValidation, "unit price cannot be negative")
	}
	if item.DiscountedUnitPriceCents == 0 && item.UnitPriceCents > 0 {
		item.DiscountedUnitPriceCents = item.UnitPriceCents
	}

	return s.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == item.ProductID {
				items[i].Qty += item.Qty
				if item.StockSnapshot != nil {
					items[i].StockSnapshot = item.StockSnapshot
				}
				return items
			}
		}
		return append(items, item)
	})
}

// Remove drops every line matching the product id.
func (s *Store) Remove(ctx context.Context, productID uuid.UUID) (Cart, error) {
	return s.mutate(ctx, func(items []LineItem) []LineItem {
		kept := items[:0]
		for _, item := range items {
			if item.ProductID != productID {
				kept = append(kept, item)
			}
		}
		return kept
	})
}

// SetQuantity pins the line's quantity. A quantity below 1 behaves as Remove.
func (s *Store) SetQuantity(ctx context.Context, productID uuid.UUID, qty int) (Cart, error) {
	if qty < 1 {
		return s.Remove(ctx, productID)
	}
	return s.mutate(ctx, func(items []LineItem) []LineItem {
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Qty = qty
			}
		}
		return items
	})
}

// Clear resets to an empty cart.
func (s *Store) Clear(ctx context.Context) (Cart, error) {
	return s.mutate(ctx, func([]LineItem) []LineItem {
		return []LineItem{}
	})
}

// mutate applies fn to the line items, recomputes the subtotal, persists the
// full document, and notifies subscribers. The persisted write and the
// notification are not atomic; on restart state is reloaded from storage.
// Callbacks run after the lock is released, so two racing mutations may
// deliver their snapshots out of order. A cart is edited by one session at
// a time, so subscribers see mutations from that session in order.
func (s *Store) mutate(ctx context.Context, fn func([]LineItem) []LineItem) (Cart, error) {
	s.mu.Lock()

	s.cart.Items = fn(s.cart.Items)
	s.cart.SubtotalCents = computeSubtotalCents(s.cart.Items)
	s.cart.UpdatedAt = s.now().UTC()

	encoded, err := json.Marshal(s.cart)
	if err != nil {
		s.mu.Unlock()
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart")
	}
	if err := s.kvs.Set(ctx, s.key, string(encoded)); err != nil {
		s.mu.Unlock()
		return Cart{}, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting cart")
	}

	snapshot := s.cart.clone()
	subs := make([]Subscriber, 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snapshot)
	}
	return snapshot, nil
}
