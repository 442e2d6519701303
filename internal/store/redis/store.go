package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/linkbox/internal/store"
)

// DefaultMaxTxAttempts bounds optimistic transaction retries when a watched
// key changes under us.
const DefaultMaxTxAttempts = 3

// Store is a store.Transactional backed by plain Redis strings.
// Values never expire.
type Store struct {
	client        *redis.Client
	maxTxAttempts int
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client:        client,
		maxTxAttempts: DefaultMaxTxAttempts,
	}
}

// Get retrieves the value stored under key.
func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, Key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

// Set stores value under key without TTL.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, Key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}
	return nil
}

// Update runs fn as an optimistic transaction.
//
// Every key read through tx is WATCHed first; the buffered writes are sent in
// one MULTI/EXEC. If a watched key changed in the meantime, fn is run again
// from scratch, up to maxTxAttempts times.
func (s *Store) Update(ctx context.Context, fn func(tx store.KeyValueStore) error) error {
	for attempt := 1; attempt <= s.maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			tx := &txStore{
				rtx:     rtx,
				pending: make(map[string]string),
				watched: make(map[string]bool),
			}
			if err := fn(tx); err != nil {
				return err
			}
			if len(tx.pending) == 0 {
				return nil
			}
			_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				for k, v := range tx.pending {
					pipe.Set(ctx, Key(k), v, 0)
				}
				return nil
			})
			return err
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("redis transaction aborted after %d attempts: %w", s.maxTxAttempts, redis.TxFailedErr)
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// txStore is the view of the store handed to an Update callback.
type txStore struct {
	rtx     *redis.Tx
	pending map[string]string
	watched map[string]bool
}

func (tx *txStore) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := tx.pending[key]; ok {
		return v, true, nil
	}
	if !tx.watched[key] {
		if err := tx.rtx.Watch(ctx, Key(key)).Err(); err != nil {
			return "", false, fmt.Errorf("failed to watch %s: %w", key, err)
		}
		tx.watched[key] = true
	}
	v, err := tx.rtx.Get(ctx, Key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	return v, true, nil
}

func (tx *txStore) Set(_ context.Context, key, value string) error {
	tx.pending[key] = value
	return nil
}
