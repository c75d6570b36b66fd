package wishlist

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/google/uuid"

	pkgerrors "github.com/shoplane/storefront-backend/pkg/errors"
	"github.com/shoplane/storefront-backend/pkg/kv"
	"github.com/shoplane/storefront-backend/pkg/logger"
)

// Store holds one customer's wishlist, a persisted set of product ids.
// Membership is the only state; product details are resolved from the
// catalog at read time.
type Store struct {
	mu   sync.Mutex
	kvs  kv.Store
	key  string
	logg *logger.Logger
	ids  map[uuid.UUID]struct{}
}

// NewStore loads the persisted wishlist. A missing or malformed document
// yields an empty wishlist, never an error.
func NewStore(ctx context.Context, kvs kv.Store, key string, logg *logger.Logger) (*Store, error) {
	if kvs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "kv store is required")
	}
	if key == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "wishlist key is required")
	}

	s := &Store{
		kvs:  kvs,
		key:  key,
		logg: logg,
		ids:  map[uuid.UUID]struct{}{},
	}

	raw, err := kvs.Get(ctx, key)
	switch {
	case err == nil:
		var loaded []uuid.UUID
		if jsonErr := json.Unmarshal([]byte(raw), &loaded); jsonErr != nil {
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "wishlist_key", key), "discarding malformed wishlist document")
			}
		} else {
			for _, id := range loaded {
				if id != uuid.Nil {
					s.ids[id] = struct{}{}
				}
			}
		}
	case kv.IsNotFound(err):
		// First visit, start empty.
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading wishlist")
	}

	return s, nil
}

// List returns the wishlist product ids in a stable order.
func (s *Store) List() []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedLocked()
}

// Contains reports membership for a single product.
func (s *Store) Contains(productID uuid.UUID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[productID]
	return ok
}

// Add puts a product on the wishlist. Adding a present product is a no-op.
func (s *Store) Add(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[productID]; ok {
		return s.sortedLocked(), nil
	}
	s.ids[productID] = struct{}{}
	return s.persistLocked(ctx)
}

// Remove takes a product off the wishlist. Removing an absent product is a
// no-op.
func (s *Store) Remove(ctx context.Context, productID uuid.UUID) ([]uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[productID]; !ok {
		return s.sortedLocked(), nil
	}
	delete(s.ids, productID)
	return s.persistLocked(ctx)
}

// Toggle flips membership and reports whether the product ended up on the
// list.
func (s *Store) Toggle(ctx context.Context, productID uuid.UUID) (bool, error) {
	if productID == uuid.Nil {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, present := s.ids[productID]
	if present {
		delete(s.ids, productID)
	} else {
		s.ids[productID] = struct{}{}
	}
	if _, err := s.persistLocked(ctx); err != nil {
		return false, err
	}
	return !present, nil
}

// Clear empties the wishlist.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = map[uuid.UUID]struct{}{}
	_, err := s.persistLocked(ctx)
	return err
}

func (s *Store) sortedLocked() []uuid.UUID {
	out := make([]uuid.UUID, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].String() < out[j].String()
	})
	return out
}

func (s *Store) persistLocked(ctx context.Context) ([]uuid.UUID, error) {
	ids := s.sortedLocked()
	payload, err := json.Marshal(ids)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding wishlist")
	}
	if err := s.kvs.Set(ctx, s.key, string(payload)); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting wishlist")
	}
	return ids, nil
}
