package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/boltdb/bolt"
)

var stateBucket = []byte("saffron")

// BoltStore implements Store on a single BoltDB bucket.
type BoltStore struct {
	db *bolt.DB
}

// NewBoltStore opens or creates the Bolt database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := validateString(path, "path"); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Get returns a copy of the value stored under key.
func (s *BoltStore) Get(ctx context.Context, key string) ([]byte, error) {
	if err := validateRequest(ctx, key); err != nil {
		return nil, err
	}

	var value []byte
	if err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(stateBucket).Get([]byte(key))
		if v == nil {
			return fmt.Errorf("%s: %w", key, ErrKeyNotFound)
		}
		value = append([]byte(nil), v...)
		return nil
	}); err != nil {
		return nil, err
	}
	return value, nil
}

// Set stores value under key.
func (s *BoltStore) Set(ctx context.Context, key string, value []byte) error {
	if err := validateRequest(ctx, key); err != nil {
		return err
	}
	if value == nil {
		return ErrNilValue
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put([]byte(key), value)
	}); err != nil {
		return fmt.Errorf("failed to write key %s: %w", key, err)
	}
	return nil
}

// Clear removes key.
func (s *BoltStore) Clear(ctx context.Context, key string) error {
	if err := validateRequest(ctx, key); err != nil {
		return err
	}
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete([]byte(key))
	}); err != nil {
		return fmt.Errorf("failed to clear key %s: %w", key, err)
	}
	return nil
}

// Close closes the database.
func (s *BoltStore) Close() error {
	return s.db.Close()
}
