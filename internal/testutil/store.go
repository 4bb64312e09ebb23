// Package testutil provides shared fixtures for saffron tests: in-memory
// stores, a store that fails on demand, a fixed clock and a fluent
// observation builder.
package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Veraticus/saffron/internal/storage"
)

// ErrInjected is returned by FailingStore for every failing operation.
var ErrInjected = errors.New("injected store failure")

// SetupTestStore opens a migrated in-memory SQLite store and closes it when
// the test ends.
func SetupTestStore(t *testing.T) storage.Store {
	t.Helper()

	s, err := storage.Open(context.Background(), storage.BackendSQLite, ":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() {
		if err := s.Close(); err != nil {
			t.Errorf("failed to close test store: %v", err)
		}
	})
	return s
}

// FailingStore wraps a store and fails the selected operations with
// ErrInjected. Toggles may be flipped while a test runs.
type FailingStore struct {
	storage.Store
	mu        sync.Mutex
	failGet   bool
	failSet   bool
	failClear bool
	sets      int
}

// NewFailingStore wraps inner; operations succeed until a Fail toggle is set.
func NewFailingStore(inner storage.Store) *FailingStore {
	return &FailingStore{Store: inner}
}

// FailGet makes Get fail when on is true.
func (f *FailingStore) FailGet(on bool) *FailingStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = on
	return f
}

// FailSet makes Set fail when on is true.
func (f *FailingStore) FailSet(on bool) *FailingStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = on
	return f
}

// FailClear makes Clear fail when on is true.
func (f *FailingStore) FailClear(on bool) *FailingStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failClear = on
	return f
}

// Sets returns how many Set calls reached the wrapper, failed or not.
func (f *FailingStore) Sets() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sets
}

// Get implements storage.Store.
func (f *FailingStore) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	fail := f.failGet
	f.mu.Unlock()
	if fail {
		return nil, ErrInjected
	}
	return f.Store.Get(ctx, key)
}

// Set implements storage.Store.
func (f *FailingStore) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	f.sets++
	fail := f.failSet
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Store.Set(ctx, key, value)
}

// Clear implements storage.Store.
func (f *FailingStore) Clear(ctx context.Context, key string) error {
	f.mu.Lock()
	fail := f.failClear
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.Store.Clear(ctx, key)
}

// Clock is a settable time source.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

// NewClock returns a clock stopped at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fixed time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
