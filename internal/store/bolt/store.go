// Package bolt implements store.Transactional on bbolt, an embedded B+ tree.
// All keys live in a single bucket. Update maps onto a bbolt read-write
// transaction, so a crash mid-write cannot leave half of an operation on disk.
package bolt

import (
	"context"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/MrSnakeDoc/linkbox/internal/store"
)

var bucketName = []byte("linkbox")

// Store is a store.Transactional backed by a bbolt file.
type Store struct {
	db *bolt.DB
}

// NewStore opens (or creates) a bbolt database at path.
func NewStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("bbolt open: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bbolt init bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Get returns the value stored under key.
func (s *Store) Get(_ context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		value, found = get(tx, key)
		return nil
	})
	if err != nil {
		return "", false, fmt.Errorf("bbolt get %s: %w", key, err)
	}
	return value, found, nil
}

// Set stores value under key in its own transaction.
func (s *Store) Set(_ context.Context, key, value string) error {
	if err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put([]byte(key), []byte(value))
	}); err != nil {
		return fmt.Errorf("bbolt set %s: %w", key, err)
	}
	return nil
}

// Update runs fn inside one bbolt read-write transaction.
func (s *Store) Update(ctx context.Context, fn func(tx store.KeyValueStore) error) error {
	return s.db.Update(func(btx *bolt.Tx) error {
		if err := fn(&txStore{tx: btx}); err != nil {
			return err
		}
		return ctx.Err()
	})
}

// get copies the value out: bbolt slices are only valid inside the tx.
func get(tx *bolt.Tx, key string) (string, bool) {
	v := tx.Bucket(bucketName).Get([]byte(key))
	if v == nil {
		return "", false
	}
	return string(v), true
}

type txStore struct {
	tx *bolt.Tx
}

func (t *txStore) Get(_ context.Context, key string) (string, bool, error) {
	v, ok := get(t.tx, key)
	return v, ok, nil
}

func (t *txStore) Set(_ context.Context, key, value string) error {
	if err := t.tx.Bucket(bucketName).Put([]byte(key), []byte(value)); err != nil {
		return fmt.Errorf("bbolt set %s: %w", key, err)
	}
	return nil
}
