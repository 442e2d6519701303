package store

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestMemoryGetSet(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	if _, found, err := m.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v; want not found", found, err)
	}

	if err := m.Set(ctx, "k", "v"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	v, found, err := m.Get(ctx, "k")
	if err != nil || !found || v != "v" {
		t.Errorf("Get(k) = %q, %v, %v; want v, true, nil", v, found, err)
	}
}

func TestMemoryUpdateCommits(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := m.Update(ctx, func(tx KeyValueStore) error {
		if err := tx.Set(ctx, "a", "1"); err != nil {
			return err
		}
		// Own writes are visible inside the transaction.
		v, found, err := tx.Get(ctx, "a")
		if err != nil || !found || v != "1" {
			t.Errorf("tx.Get(a) = %q, %v, %v", v, found, err)
		}
		// But not outside of it until commit.
		if _, found, _ := m.Get(ctx, "a"); found {
			t.Error("uncommitted write leaked out of the transaction")
		}
		return tx.Set(ctx, "b", "2")
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMemoryUpdateRollsBack(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "a", "old")

	boom := errors.New("boom")
	err := m.Update(ctx, func(tx KeyValueStore) error {
		_ = tx.Set(ctx, "a", "new")
		_ = tx.Set(ctx, "b", "new")
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update() error = %v, want boom", err)
	}

	if v, _, _ := m.Get(ctx, "a"); v != "old" {
		t.Errorf("a = %q after rollback, want old", v)
	}
	if _, found, _ := m.Get(ctx, "b"); found {
		t.Error("b should not exist after rollback")
	}
}

func TestAtomicallyNestsIntoOuterTransaction(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	err := Atomically(ctx, m, func(tx KeyValueStore) error {
		return Atomically(ctx, tx, func(inner KeyValueStore) error {
			return inner.Set(ctx, "nested", "yes")
		})
	})
	if err != nil {
		t.Fatalf("Atomically() error = %v", err)
	}
	if v, _, _ := m.Get(ctx, "nested"); v != "yes" {
		t.Errorf("nested = %q, want yes", v)
	}
}

func TestMemoryConcurrentUpdates(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	_ = m.Set(ctx, "n", "")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Update(ctx, func(tx KeyValueStore) error {
				v, _, _ := tx.Get(ctx, "n")
				return tx.Set(ctx, "n", v+"x")
			})
		}()
	}
	wg.Wait()

	v, _, _ := m.Get(ctx, "n")
	if len(v) != 50 {
		t.Errorf("len(n) = %d, want 50 (lost update)", len(v))
	}
}
