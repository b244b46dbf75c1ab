package types

import (
	"context"
	"errors"
)

// Store is the durable key-value substrate under the registry. Values are
// opaque serialized records; the registry owns their encoding.
type Store interface {
	// Get returns the value stored under key. ok is false when absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Insert stores value under key, replacing any existing value. A failed
	// Insert leaves the previous value in place.
	Insert(ctx context.Context, key string, value []byte) error

	// Remove deletes key and returns the value it held. ok is false when
	// nothing was stored.
	Remove(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Values returns every stored value in the store's enumeration order.
	Values(ctx context.Context) ([][]byte, error)
}

// Store errors shared by the backends.
var (
	ErrStoreClosed     = errors.New("store is closed")
	ErrAlreadyAttached = errors.New("store is already attached")
	ErrEmptyKey        = errors.New("key must not be empty")
	ErrInvalidValue    = errors.New("value is not valid JSON")
)
