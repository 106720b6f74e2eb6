package journal

import (
	"context"
	"errors"
)

// Common errors
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrKeyEmpty    = errors.New("key cannot be empty")
)

// Store is the key/value backend the journal writes to
type Store interface {
	// Put saves a value under key
	Put(ctx context.Context, key string, value []byte) error

	// Get returns the value for key
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key
	Delete(ctx context.Context, key string) error

	// Keys returns all keys with the given prefix, sorted
	Keys(ctx context.Context, prefix string) ([]string, error)

	// Close releases the backend
	Close() error
}
