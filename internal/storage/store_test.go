package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Veraticus/saffron/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// createTestStores returns one store per backend, closed at test end.
func createTestStores(t *testing.T) map[string]Store {
	t.Helper()
	dir := t.TempDir()

	sqlite, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, sqlite.Migrate(context.Background()))

	bolt, err := NewBoltStore(filepath.Join(dir, "bolt", "state.db"))
	require.NoError(t, err)

	file, err := NewFileStore(filepath.Join(dir, "files"))
	require.NoError(t, err)

	stores := map[string]Store{
		"sqlite": sqlite,
		"bolt":   bolt,
		"file":   file,
		"memory": NewMemoryStore(),
	}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func TestStore_Contract(t *testing.T) {
	ctx := context.Background()

	for name, store := range createTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "state")
			assert.ErrorIs(t, err, ErrKeyNotFound)

			require.NoError(t, store.Set(ctx, "state", []byte(`{"version":1}`)))
			got, err := store.Get(ctx, "state")
			require.NoError(t, err)
			assert.JSONEq(t, `{"version":1}`, string(got))

			require.NoError(t, store.Set(ctx, "state", []byte(`{"version":2}`)))
			got, err = store.Get(ctx, "state")
			require.NoError(t, err)
			assert.JSONEq(t, `{"version":2}`, string(got))

			require.NoError(t, store.Set(ctx, "other", []byte(`{}`)))
			require.NoError(t, store.Clear(ctx, "state"))
			_, err = store.Get(ctx, "state")
			assert.ErrorIs(t, err, ErrKeyNotFound)
			_, err = store.Get(ctx, "other")
			assert.NoError(t, err)

			assert.NoError(t, store.Clear(ctx, "state"))
		})
	}
}

func TestStore_Validation(t *testing.T) {
	ctx := context.Background()
	cancelled, cancel := context.WithCancel(ctx)
	cancel()

	for name, store := range createTestStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Get(ctx, "")
			assert.ErrorIs(t, err, ErrEmptyString)

			assert.ErrorIs(t, store.Set(ctx, "../escape", []byte("x")), ErrInvalidKey)
			assert.ErrorIs(t, store.Set(ctx, "state", nil), ErrNilValue)
			assert.ErrorIs(t, store.Clear(cancelled, "state"), context.Canceled)
		})
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	value := []byte("abc")
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'z'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		backend Backend
		path    string
	}{
		{backend: BackendSQLite, path: filepath.Join(dir, "state.db")},
		{backend: BackendBolt, path: filepath.Join(dir, "state.bolt")},
		{backend: BackendFile, path: filepath.Join(dir, "state")},
	}

	for _, tt := range tests {
		t.Run(string(tt.backend), func(t *testing.T) {
			first, err := Open(ctx, tt.backend, tt.path)
			require.NoError(t, err)
			require.NoError(t, first.Set(ctx, "state", []byte("persisted")))
			require.NoError(t, first.Close())

			second, err := Open(ctx, tt.backend, tt.path)
			require.NoError(t, err)
			defer func() { _ = second.Close() }()

			got, err := second.Get(ctx, "state")
			require.NoError(t, err)
			assert.Equal(t, "persisted", string(got))
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open(context.Background(), "postgres", "")
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestOpen_Memory(t *testing.T) {
	s, err := Open(context.Background(), BackendMemory, "")
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)
}

func TestSQLiteStore_Migrate(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer func() { _ = s.Close() }()

	require.NoError(t, s.Migrate(ctx))
	version, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	require.NoError(t, s.Migrate(ctx))
}

func TestNewSQLiteStore_EmptyPath(t *testing.T) {
	_, err := NewSQLiteStore("  ")
	assert.ErrorIs(t, err, ErrEmptyString)
}

func TestFileStore_ReplacesInPlace(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "state")

	store, err := NewFileStore(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "engine-state", []byte(`{"version":1}`)))
	require.NoError(t, store.Set(ctx, "engine-state", []byte(`{"version":2}`)))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "engine-state.json", entries[0].Name())

	info, err := entries[0].Info()
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	data, err := os.ReadFile(filepath.Join(dir, "engine-state.json"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(data))
}
