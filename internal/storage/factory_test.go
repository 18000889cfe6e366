package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStoreMemory(t *testing.T) {
	for _, kind := range []string{"", KindMemory} {
		store, err := NewStore(Config{Kind: kind})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, store)
	}
}

func TestNewStoreWrapsPersistentBackends(t *testing.T) {
	tests := map[string]any{
		KindFile:     &FileStore{},
		KindSQLite:   &SQLStore{},
		KindPostgres: &SQLStore{},
		KindMySQL:    &SQLStore{},
		KindRedis:    &RedisStore{},
	}
	for kind, inner := range tests {
		t.Run(kind, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Kind = kind
			store, err := NewStore(cfg)
			require.NoError(t, err)

			retrying, ok := store.(*RetryingStore)
			require.True(t, ok)
			assert.IsType(t, inner, retrying.Unwrap())
		})
	}
}

func TestNewStoreSQLiteEndToEnd(t *testing.T) {
	ctx := context.Background()
	cfg := DefaultConfig()
	cfg.Kind = KindSQLite
	cfg.DSN = filepath.Join(t.TempDir(), "factory.db")

	store, err := NewStore(cfg)
	require.NoError(t, err)
	require.NoError(t, store.Init(ctx))
	t.Cleanup(func() { _ = CloseIfSupported(store) })

	require.NoError(t, store.SaveGenome(ctx, testGenome(t, "alice")))
	genome, err := Load(ctx, store, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", genome.ID)
}

func TestNewStoreUnsupported(t *testing.T) {
	_, err := NewStore(Config{Kind: "cassandra"})
	require.Error(t, err)

	oopsErr, ok := oops.AsOops(err)
	require.True(t, ok)
	assert.Equal(t, CodeStoreUnsupported, oopsErr.Code())
}
