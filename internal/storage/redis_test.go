package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStoreKeys(t *testing.T) {
	store := NewRedisStore(RedisConfig{Address: "localhost:6379"})
	assert.Equal(t, "neatauth:genome:alice", store.Key("alice"))

	custom := NewRedisStore(RedisConfig{Address: "localhost:6379", Prefix: "auth/"})
	assert.Equal(t, "auth/alice", custom.Key("alice"))
}

func TestRedisStoreRequiresAddress(t *testing.T) {
	err := NewRedisStore(RedisConfig{}).Init(context.Background())
	require.Error(t, err)
	assert.False(t, Transient(err))
}

func TestRedisStoreCloseWithoutInit(t *testing.T) {
	assert.NoError(t, NewRedisStore(RedisConfig{Address: "localhost:6379"}).Close())
}
