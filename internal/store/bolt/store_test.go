package bolt

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/store"
)

func openTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "linkbox.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)

	_, found, err := s.Get(ctx, "folder-storage")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, s.Set(ctx, "folder-storage", `[{"id":"f1"}]`))
	v, found, err := s.Get(ctx, "folder-storage")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"id":"f1"}]`, v)
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	s, path := openTestStore(t)
	require.NoError(t, s.Set(ctx, "k", "v"))
	require.NoError(t, s.Close())

	reopened, err := NewStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	v, found, err := reopened.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)
}

func TestStoreUpdateIsAtomic(t *testing.T) {
	ctx := context.Background()
	s, _ := openTestStore(t)
	require.NoError(t, s.Set(ctx, "a", "old"))

	boom := errors.New("boom")
	err := s.Update(ctx, func(tx store.KeyValueStore) error {
		require.NoError(t, tx.Set(ctx, "a", "new"))
		v, _, _ := tx.Get(ctx, "a")
		assert.Equal(t, "new", v)
		require.NoError(t, tx.Set(ctx, "b", "new"))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	a, _, _ := s.Get(ctx, "a")
	_, bFound, _ := s.Get(ctx, "b")
	assert.Equal(t, "old", a)
	assert.False(t, bFound)

	require.NoError(t, s.Update(ctx, func(tx store.KeyValueStore) error {
		if err := tx.Set(ctx, "a", "new"); err != nil {
			return err
		}
		return tx.Set(ctx, "b", "new")
	}))
	a, _, _ = s.Get(ctx, "a")
	b, _, _ := s.Get(ctx, "b")
	assert.Equal(t, "new", a)
	assert.Equal(t, "new", b)
}
