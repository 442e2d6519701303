// Package store defines the string key-value persistence the repositories sit on.
//
// Backends live in sub-packages (redis, bolt); Memory is provided here for
// tests and throwaway instances.
package store

import "context"

// KeyValueStore is an opaque string-keyed blob store.
type KeyValueStore interface {
	// Get returns the value under key. found is false when the key is absent.
	Get(ctx context.Context, key string) (value string, found bool, err error)
	// Set replaces the value under key.
	Set(ctx context.Context, key, value string) error
}

// Transactional is implemented by stores that can apply several writes atomically.
//
// Every Set made through tx inside fn commits together when fn returns nil.
// If fn returns an error nothing is written and the error is returned.
// Reads through tx observe the transaction's own pending writes.
type Transactional interface {
	KeyValueStore
	Update(ctx context.Context, fn func(tx KeyValueStore) error) error
}

// Atomically runs fn inside a transaction when kv supports one, and directly
// against kv otherwise. Stores handed to fn by a transaction are plain
// KeyValueStores, so nested Atomically calls join the outer transaction.
func Atomically(ctx context.Context, kv KeyValueStore, fn func(tx KeyValueStore) error) error {
	if t, ok := kv.(Transactional); ok {
		return t.Update(ctx, fn)
	}
	return fn(kv)
}
