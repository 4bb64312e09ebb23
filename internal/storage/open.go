package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/saffron/internal/common"
)

// Open constructs the named backend at path, running migrations where the
// backend has them.
func Open(ctx context.Context, backend Backend, path string) (Store, error) {
	switch backend {
	case BackendSQLite:
		s, err := NewSQLiteStore(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		if err := s.Migrate(ctx); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		return s, nil
	case BackendBolt:
		s, err := NewBoltStore(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		return s, nil
	case BackendFile:
		s, err := NewFileStore(path)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
		}
		return s, nil
	case BackendMemory:
		return NewMemoryStore(), nil
	}
	return nil, fmt.Errorf("%w: unknown storage backend %q", common.ErrInvalidConfig, backend)
}
