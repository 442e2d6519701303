package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrSnakeDoc/linkbox/internal/config"
	"github.com/MrSnakeDoc/linkbox/internal/logger"
	"github.com/MrSnakeDoc/linkbox/internal/repository"
)

func baseConfig(backend string) *config.Config {
	return &config.Config{
		ListenPort:          "127.0.0.1:0",
		ShutdownTimeout:     time.Second,
		RequestTimeout:      time.Second,
		Backend:             backend,
		GCInterval:          time.Hour,
		ReloadInterval:      time.Hour,
		NATSSubject:         "linkbox",
		RedisDT:             time.Second,
		RedisRT:             time.Second,
		RedisWT:             time.Second,
		RedisPoolSize:       2,
		RedisConnectTimeout: 2 * time.Second,
		RedisRetryInterval:  50 * time.Millisecond,
		RedisMaxWait:        200 * time.Millisecond,
		RedisPingTimeout:    time.Second,
		RedisWarnThreshold:  1,
	}
}

func TestOpenBoltPersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	cfg := baseConfig(config.BackendBolt)
	cfg.BoltPath = filepath.Join(t.TempDir(), "linkbox.db")

	b, err := Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, b.Pinger)
	folder, err := b.Service.CreateFolder(ctx, repository.CreateFolderInput{Name: "Keep"})
	require.NoError(t, err)
	_, err = b.Service.CreateLink(ctx, repository.CreateLinkInput{URL: "https://go.dev", Folder: folder.ID})
	require.NoError(t, err)
	b.Close()

	b, err = Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	got, err := b.Service.Folder(folder.ID)
	require.NoError(t, err)
	assert.Len(t, got.Links, 1)
	assert.Len(t, b.Service.Links(folder.ID), 1)
}

func TestOpenRedis(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	cfg := baseConfig(config.BackendRedis)
	cfg.RedisAddr = mr.Addr()

	b, err := Open(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	defer b.Close()

	require.NotNil(t, b.Pinger)
	assert.NoError(t, b.Pinger.Ping(ctx))

	_, err = b.Service.CreateFolder(ctx, repository.CreateFolderInput{Name: "Shared"})
	require.NoError(t, err)
	assert.NotEmpty(t, mr.Keys())
}

func TestOpenMemoryAndUnknownBackend(t *testing.T) {
	b, err := Open(context.Background(), baseConfig(config.BackendMemory), logger.Nop())
	require.NoError(t, err)
	assert.Empty(t, b.Service.Folders())
	b.Close()

	_, err = Open(context.Background(), baseConfig("etcd"), logger.Nop())
	assert.ErrorContains(t, err, "unknown store backend")
}

func TestNewWiresImportReloaderOnlyWithFile(t *testing.T) {
	ctx := context.Background()

	a, err := New(ctx, baseConfig(config.BackendMemory), logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, a.importer)
	a.backend.Close()

	cfg := baseConfig(config.BackendMemory)
	cfg.ImportFile = filepath.Join(t.TempDir(), "bookmarks.yaml")
	a, err = New(ctx, cfg, logger.Nop())
	require.NoError(t, err)
	assert.NotNil(t, a.importer)
	a.backend.Close()
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	a, err := New(ctx, baseConfig(config.BackendMemory), logger.Nop())
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
