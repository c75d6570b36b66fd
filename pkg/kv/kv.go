// Package kv provides the durable key-value storage carts and wishlists
// persist through. Backends share one contract: string keys, opaque string
// payloads, and ErrNotFound on a miss.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key has no stored value.
var ErrNotFound = errors.New("kv: key not found")

// Store is the durable key-value surface.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

// IsNotFound reports whether err represents a missing key.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
