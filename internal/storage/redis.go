package storage

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"

	"neatauth/internal/model"
)

const DefaultRedisPrefix = "neatauth:genome:"

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps each envelope as a plain string value under
// <prefix><identity>.
type RedisStore struct {
	cfg RedisConfig

	mu     sync.RWMutex
	client *redis.Client
}

func NewRedisStore(cfg RedisConfig) *RedisStore {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultRedisPrefix
	}
	return &RedisStore{cfg: cfg}
}

func (s *RedisStore) Key(identity string) string {
	return s.cfg.Prefix + identity
}

func (s *RedisStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.cfg.Address) == "" {
		return oops.Code(CodeStoreConfig).In("storage").With("backend", "redis").Errorf("redis address is required")
	}
	if s.client != nil {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Address,
		Password: s.cfg.Password,
		DB:       s.cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return ioError("redis", "ping", "", err)
	}
	s.client = client
	return nil
}

func (s *RedisStore) SaveGenome(ctx context.Context, genome model.Genome) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}
	payload, err := EncodeGenome(genome)
	if err != nil {
		return err
	}
	if err := client.Set(ctx, s.Key(genome.ID), payload, 0).Err(); err != nil {
		return ioError("redis", "save", genome.ID, err)
	}
	return nil
}

func (s *RedisStore) GetGenome(ctx context.Context, identity string) (model.Genome, bool, error) {
	client, err := s.getClient()
	if err != nil {
		return model.Genome{}, false, err
	}
	payload, err := client.Get(ctx, s.Key(identity)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Genome{}, false, nil
		}
		return model.Genome{}, false, ioError("redis", "get", identity, err)
	}
	genome, err := decodeStored(identity, payload)
	if err != nil {
		return model.Genome{}, false, err
	}
	return genome, true, nil
}

func (s *RedisStore) DeleteGenome(ctx context.Context, identity string) error {
	client, err := s.getClient()
	if err != nil {
		return err
	}
	if err := client.Del(ctx, s.Key(identity)).Err(); err != nil {
		return ioError("redis", "delete", identity, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *RedisStore) getClient() (*redis.Client, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.client == nil {
		return nil, notInitialized("redis")
	}
	return s.client, nil
}
