package storage

import (
	"time"

	"github.com/samber/oops"
)

const (
	KindMemory   = "memory"
	KindFile     = "file"
	KindSQLite   = "sqlite"
	KindPostgres = "postgres"
	KindMySQL    = "mysql"
	KindRedis    = "redis"
)

func Kinds() []string {
	return []string{KindMemory, KindFile, KindSQLite, KindPostgres, KindMySQL, KindRedis}
}

// Config selects and parameterizes a backend. Root is the file store
// directory; DSN is the sqlite path or the postgres/mysql connection string.
type Config struct {
	Kind  string      `koanf:"kind" json:"kind" yaml:"kind"`
	Root  string      `koanf:"root" json:"root" yaml:"root"`
	DSN   string      `koanf:"dsn" json:"dsn" yaml:"dsn"`
	Redis RedisFields `koanf:"redis" json:"redis" yaml:"redis"`
	Pool  PoolFields  `koanf:"pool" json:"pool" yaml:"pool"`
	Retry RetryFields `koanf:"retry" json:"retry" yaml:"retry"`
}

type RedisFields struct {
	Address  string `koanf:"address" json:"address" yaml:"address"`
	Password string `koanf:"password" json:"-" yaml:"-"`
	DB       int    `koanf:"db" json:"db" yaml:"db"`
	Prefix   string `koanf:"prefix" json:"prefix" yaml:"prefix"`
}

type PoolFields struct {
	MaxOpenConns    int           `koanf:"max_open_conns" json:"max_open_conns" yaml:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns" json:"max_idle_conns" yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime" json:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

type RetryFields struct {
	MaxRetries uint64        `koanf:"max_retries" json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `koanf:"base_delay" json:"base_delay" yaml:"base_delay"`
	MaxDelay   time.Duration `koanf:"max_delay" json:"max_delay" yaml:"max_delay"`
}

func DefaultConfig() Config {
	policy := DefaultRetryPolicy()
	return Config{
		Kind:  KindMemory,
		Redis: RedisFields{Prefix: DefaultRedisPrefix},
		Retry: RetryFields{
			MaxRetries: policy.MaxRetries,
			BaseDelay:  policy.BaseDelay,
			MaxDelay:   policy.MaxDelay,
		},
	}
}

// NewStore builds the configured backend. Every backend but memory comes
// wrapped in a RetryingStore. The store still needs Init.
func NewStore(cfg Config) (Store, error) {
	var store Store
	switch cfg.Kind {
	case "", KindMemory:
		return NewMemoryStore(), nil
	case KindFile:
		store = NewFileStore(cfg.Root)
	case KindSQLite:
		store = NewSQLiteStore(cfg.DSN)
	case KindPostgres:
		store = NewSQLStore(DialectPostgres, cfg.DSN, cfg.poolConfig())
	case KindMySQL:
		store = NewSQLStore(DialectMySQL, cfg.DSN, cfg.poolConfig())
	case KindRedis:
		store = NewRedisStore(RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
		})
	default:
		return nil, oops.
			Code(CodeStoreUnsupported).
			In("storage").
			With("kind", cfg.Kind, "supported", Kinds()).
			Errorf("unsupported store backend: %s", cfg.Kind)
	}
	return NewRetryingStore(store, RetryPolicy{
		MaxRetries: cfg.Retry.MaxRetries,
		BaseDelay:  cfg.Retry.BaseDelay,
		MaxDelay:   cfg.Retry.MaxDelay,
	}), nil
}

func (c Config) poolConfig() PoolConfig {
	return PoolConfig{
		MaxOpenConns:    c.Pool.MaxOpenConns,
		MaxIdleConns:    c.Pool.MaxIdleConns,
		ConnMaxLifetime: c.Pool.ConnMaxLifetime,
	}
}
