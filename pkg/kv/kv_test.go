package kv

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMemoryStoreLifecycle(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()

	if _, err := store.Get(ctx, "missing"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Set(ctx, "sl:cart:c1", `{"items":[]}`); err != nil {
		t.Fatalf("set: %v", err)
	}
	value, err := store.Get(ctx, "sl:cart:c1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if value != `{"items":[]}` {
		t.Fatalf("unexpected value %q", value)
	}

	if err := store.Delete(ctx, "sl:cart:c1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, "sl:cart:c1"); !IsNotFound(err) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestDatabaseStoreUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	conn := setupKVTestDB(t)
	store, err := NewDatabaseStore(conn)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "sl:wishlist:c1", `["p1"]`))
	require.NoError(t, store.Set(ctx, "sl:wishlist:c1", `["p1","p2"]`))

	value, err := store.Get(ctx, "sl:wishlist:c1")
	require.NoError(t, err)
	require.Equal(t, `["p1","p2"]`, value)

	require.NoError(t, store.Delete(ctx, "sl:wishlist:c1"))
	_, err = store.Get(ctx, "sl:wishlist:c1")
	require.ErrorIs(t, err, ErrNotFound)
}

func setupKVTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS kv_entries (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
);`
	require.NoError(t, conn.Exec(schema).Error)
	return conn
}
