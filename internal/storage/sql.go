package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/oops"

	"neatauth/internal/model"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect holds the statements that differ between SQL backends.
type Dialect struct {
	Name   string
	Driver string
	Schema string
	Upsert string
	Select string
	Delete string
}

var (
	DialectSQLite = Dialect{
		Name:   "sqlite",
		Driver: "sqlite",
		Schema: `CREATE TABLE IF NOT EXISTS genomes (
			identity TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BLOB NOT NULL
		)`,
		Upsert: `INSERT INTO genomes (identity, schema_version, codec_version, payload)
			VALUES (?, ?, ?, ?)
			ON CONFLICT(identity) DO UPDATE SET
				schema_version = excluded.schema_version,
				codec_version = excluded.codec_version,
				payload = excluded.payload`,
		Select: `SELECT payload FROM genomes WHERE identity = ?`,
		Delete: `DELETE FROM genomes WHERE identity = ?`,
	}

	DialectPostgres = Dialect{
		Name:   "postgres",
		Driver: "pgx",
		Schema: `CREATE TABLE IF NOT EXISTS genomes (
			identity TEXT PRIMARY KEY,
			schema_version INTEGER NOT NULL,
			codec_version INTEGER NOT NULL,
			payload BYTEA NOT NULL
		)`,
		Upsert: `INSERT INTO genomes (identity, schema_version, codec_version, payload)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (identity) DO UPDATE SET
				schema_version = EXCLUDED.schema_version,
				codec_version = EXCLUDED.codec_version,
				payload = EXCLUDED.payload`,
		Select: `SELECT payload FROM genomes WHERE identity = $1`,
		Delete: `DELETE FROM genomes WHERE identity = $1`,
	}

	// DialectMySQL keys identities as VARCHAR(255); the server rejects longer ones.
	DialectMySQL = Dialect{
		Name:   "mysql",
		Driver: "mysql",
		Schema: `CREATE TABLE IF NOT EXISTS genomes (
			identity VARCHAR(255) NOT NULL PRIMARY KEY,
			schema_version INT NOT NULL,
			codec_version INT NOT NULL,
			payload LONGBLOB NOT NULL
		)`,
		Upsert: `INSERT INTO genomes (identity, schema_version, codec_version, payload)
			VALUES (?, ?, ?, ?)
			ON DUPLICATE KEY UPDATE
				schema_version = VALUES(schema_version),
				codec_version = VALUES(codec_version),
				payload = VALUES(payload)`,
		Select: `SELECT payload FROM genomes WHERE identity = ?`,
		Delete: `DELETE FROM genomes WHERE identity = ?`,
	}
)

// PoolConfig tunes the database/sql pool. Zero values pick the defaults.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// SQLStore keeps one row per identity in a genomes table.
type SQLStore struct {
	dialect Dialect
	dsn     string
	pool    PoolConfig

	mu sync.RWMutex
	db *sql.DB
}

func NewSQLStore(dialect Dialect, dsn string, pool PoolConfig) *SQLStore {
	return &SQLStore{dialect: dialect, dsn: dsn, pool: pool}
}

func NewSQLiteStore(path string) *SQLStore {
	// one writer at a time keeps sqlite from reporting SQLITE_BUSY under load
	return NewSQLStore(DialectSQLite, path, PoolConfig{MaxOpenConns: 1})
}

func (s *SQLStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.dsn) == "" {
		return oops.Code(CodeStoreConfig).In("storage").With("backend", s.dialect.Name).Errorf("dsn is required")
	}
	if s.db != nil {
		return nil
	}
	if s.dialect.Name == DialectSQLite.Name {
		if err := ensureParent(s.dsn); err != nil {
			return ioError(s.dialect.Name, "mkdir", "", err)
		}
	}

	db, err := sql.Open(s.dialect.Driver, s.dsn)
	if err != nil {
		return ioError(s.dialect.Name, "open", "", err)
	}
	s.configurePool(db)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return ioError(s.dialect.Name, "ping", "", err)
	}
	if _, err := db.ExecContext(ctx, s.dialect.Schema); err != nil {
		_ = db.Close()
		return ioError(s.dialect.Name, "migrate", "", err)
	}

	s.db = db
	return nil
}

func (s *SQLStore) configurePool(db *sql.DB) {
	maxOpen := s.pool.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 20
	}
	db.SetMaxOpenConns(maxOpen)

	maxIdle := s.pool.MaxIdleConns
	if maxIdle <= 0 {
		maxIdle = 10
	}
	db.SetMaxIdleConns(min(maxIdle, maxOpen))

	lifetime := s.pool.ConnMaxLifetime
	if lifetime <= 0 {
		lifetime = 30 * time.Minute
	}
	db.SetConnMaxLifetime(lifetime)
}

func (s *SQLStore) SaveGenome(ctx context.Context, genome model.Genome) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	payload, err := EncodeGenome(genome)
	if err != nil {
		return err
	}

	if _, err := db.ExecContext(ctx, s.dialect.Upsert, genome.ID, genome.SchemaVersion, genome.CodecVersion, payload); err != nil {
		return ioError(s.dialect.Name, "save", genome.ID, err)
	}
	return nil
}

func (s *SQLStore) GetGenome(ctx context.Context, identity string) (model.Genome, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return model.Genome{}, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, s.dialect.Select, identity).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Genome{}, false, nil
		}
		return model.Genome{}, false, ioError(s.dialect.Name, "get", identity, err)
	}

	genome, err := decodeStored(identity, payload)
	if err != nil {
		return model.Genome{}, false, err
	}
	return genome, true, nil
}

func (s *SQLStore) DeleteGenome(ctx context.Context, identity string) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, s.dialect.Delete, identity); err != nil {
		return ioError(s.dialect.Name, "delete", identity, err)
	}
	return nil
}

func (s *SQLStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// ensureParent creates the directory of a sqlite database path. In-memory
// and URI DSNs are left to the driver.
func ensureParent(dsn string) error {
	if dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	return os.MkdirAll(filepath.Dir(dsn), 0o700)
}

func (s *SQLStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, notInitialized(s.dialect.Name)
	}
	return s.db, nil
}
