package store

import (
	"context"
	"sync"
)

// Memory is an in-process KeyValueStore. Transactions are serialized by a
// single writer lock, so concurrent Update calls never interleave.
type Memory struct {
	writer sync.Mutex // held for the whole of an Update
	mu     sync.RWMutex
	data   map[string]string
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// Get returns the value stored under key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores value under key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.writer.Lock()
	defer m.writer.Unlock()

	m.mu.Lock()
	m.data[key] = value
	m.mu.Unlock()
	return nil
}

// Update buffers writes made by fn and applies them only if fn succeeds.
func (m *Memory) Update(ctx context.Context, fn func(tx KeyValueStore) error) error {
	m.writer.Lock()
	defer m.writer.Unlock()

	tx := &memoryTx{parent: m, pending: make(map[string]string)}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	for k, v := range tx.pending {
		m.data[k] = v
	}
	m.mu.Unlock()
	return nil
}

// Len returns the number of keys stored.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.data)
}

type memoryTx struct {
	parent  *Memory
	pending map[string]string
}

func (tx *memoryTx) Get(ctx context.Context, key string) (string, bool, error) {
	if v, ok := tx.pending[key]; ok {
		return v, true, nil
	}
	return tx.parent.Get(ctx, key)
}

func (tx *memoryTx) Set(_ context.Context, key, value string) error {
	tx.pending[key] = value
	return nil
}
