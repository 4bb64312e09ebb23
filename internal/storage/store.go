// Package storage provides the key-value persistence layer the engine writes
// its state document to.
package storage

import (
	"context"
	"errors"
)

// ErrKeyNotFound is returned by Get when nothing is stored under the key.
var ErrKeyNotFound = errors.New("key not found")

// Store is a minimal durable key-value capability.
type Store interface {
	// Get returns the value stored under key, or ErrKeyNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Clear removes key. Clearing a missing key is not an error.
	Clear(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

// Backend names a Store implementation.
type Backend string

// Storage backends.
const (
	BackendSQLite Backend = "sqlite"
	BackendBolt   Backend = "bolt"
	BackendFile   Backend = "file"
	BackendMemory Backend = "memory"
)

// Backends returns every supported backend.
func Backends() []Backend {
	return []Backend{BackendSQLite, BackendBolt, BackendFile, BackendMemory}
}
