package wishlist

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/shoplane/storefront-backend/pkg/kv"
)

const testKey = "sl:wishlist:cust-1"

func newTestStore(t *testing.T, kvs kv.Store) *Store {
	t.Helper()
	store, err := NewStore(context.Background(), kvs, testKey, nil)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func TestAddRemoveLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, kv.NewMemoryStore())
	a, b := uuid.New(), uuid.New()

	if _, err := store.Add(ctx, a); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, b); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, a); err != nil {
		t.Fatalf("re-add: %v", err)
	}

	if got := len(store.List()); got != 2 {
		t.Fatalf("expected 2 ids, got %d", got)
	}
	if !store.Contains(a) || !store.Contains(b) {
		t.Fatal("expected both ids present")
	}

	if _, err := store.Remove(ctx, a); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if store.Contains(a) {
		t.Fatal("expected id removed")
	}
	if _, err := store.Remove(ctx, a); err != nil {
		t.Fatalf("re-remove: %v", err)
	}
}

func TestAddRejectsNilProduct(t *testing.T) {
	t.Parallel()

	store := newTestStore(t, kv.NewMemoryStore())
	if _, err := store.Add(context.Background(), uuid.Nil); err == nil {
		t.Fatal("expected error for nil product id")
	}
}

func TestToggleFlipsMembership(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := newTestStore(t, kv.NewMemoryStore())
	id := uuid.New()

	on, err := store.Toggle(ctx, id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if !on {
		t.Fatal("first toggle should add")
	}

	on, err = store.Toggle(ctx, id)
	if err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if on || store.Contains(id) {
		t.Fatal("second toggle should remove")
	}
}

func TestPersistedWishlistRoundTrips(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	store := newTestStore(t, kvs)
	a, b := uuid.New(), uuid.New()

	if _, err := store.Add(ctx, a); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.Add(ctx, b); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := newTestStore(t, kvs)
	if got := len(reloaded.List()); got != 2 {
		t.Fatalf("expected 2 ids after reload, got %d", got)
	}
	if !reloaded.Contains(a) || !reloaded.Contains(b) {
		t.Fatal("expected both ids after reload")
	}
}

func TestMalformedDocumentLoadsEmpty(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	if err := kvs.Set(ctx, testKey, "][oops"); err != nil {
		t.Fatalf("seed: %v", err)
	}

	store := newTestStore(t, kvs)
	if got := len(store.List()); got != 0 {
		t.Fatalf("expected empty wishlist after corrupt load, got %d ids", got)
	}
}

func TestClearEmptiesAndPersists(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kvs := kv.NewMemoryStore()
	store := newTestStore(t, kvs)

	if _, err := store.Add(ctx, uuid.New()); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}

	reloaded := newTestStore(t, kvs)
	if got := len(reloaded.List()); got != 0 {
		t.Fatalf("expected empty wishlist after clear and reload, got %d", got)
	}
}
