// Package repository owns the link and folder collections.
//
// Each collection is one JSON array under a fixed key of a store.KeyValueStore.
// Every operation is a read-modify-write of the whole array. When the store is
// transactional, a link operation and the folder writes it triggers commit
// together.
package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/linkbox/internal/domain"
	"github.com/MrSnakeDoc/linkbox/internal/store"
)

const (
	// LinksKey holds the JSON array of links.
	LinksKey = "link-storage"
	// FoldersKey holds the JSON array of folders.
	FoldersKey = "folder-storage"
)

// Option customizes a repository.
type Option func(*options)

type options struct {
	now   func() time.Time
	newID func() string
}

func defaultOptions() options {
	return options{
		now:   time.Now,
		newID: func() string { return uuid.NewString() },
	}
}

// WithClock overrides the time source used for CreatedAt/UpdatedAt.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithIDGenerator overrides how new ids are minted.
func WithIDGenerator(newID func() string) Option {
	return func(o *options) { o.newID = newID }
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func loadLinks(ctx context.Context, kv store.KeyValueStore) ([]domain.Link, error) {
	var links []domain.Link
	if err := load(ctx, kv, LinksKey, &links); err != nil {
		return nil, fmt.Errorf("failed to load links: %w", err)
	}
	if links == nil {
		links = []domain.Link{}
	}
	return links, nil
}

func saveLinks(ctx context.Context, kv store.KeyValueStore, links []domain.Link) error {
	if err := save(ctx, kv, LinksKey, links); err != nil {
		return fmt.Errorf("failed to save links: %w", err)
	}
	return nil
}

func loadFolders(ctx context.Context, kv store.KeyValueStore) ([]domain.Folder, error) {
	var folders []domain.Folder
	if err := load(ctx, kv, FoldersKey, &folders); err != nil {
		return nil, fmt.Errorf("failed to load folders: %w", err)
	}
	if folders == nil {
		folders = []domain.Folder{}
	}
	for i := range folders {
		if folders[i].Links == nil {
			folders[i].Links = []string{}
		}
	}
	return folders, nil
}

func saveFolders(ctx context.Context, kv store.KeyValueStore, folders []domain.Folder) error {
	if err := save(ctx, kv, FoldersKey, folders); err != nil {
		return fmt.Errorf("failed to save folders: %w", err)
	}
	return nil
}

// load decodes the JSON array under key into dst. A missing key leaves dst untouched.
func load(ctx context.Context, kv store.KeyValueStore, key string, dst any) error {
	raw, found, err := kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if !found || raw == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return fmt.Errorf("corrupt %s: %w", key, err)
	}
	return nil
}

func save(ctx context.Context, kv store.KeyValueStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	return kv.Set(ctx, key, string(data))
}
