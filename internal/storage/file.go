package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/samber/oops"

	"neatauth/internal/model"
)

// FileStore writes one envelope per identity under root. File names are the
// sha256 hex of the identity, so every name has the same safe length. The
// envelope carries the identity and GetGenome checks it on decode.
type FileStore struct {
	root string

	mu    sync.RWMutex
	ready bool
}

func NewFileStore(root string) *FileStore {
	return &FileStore{root: root}
}

func (s *FileStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(s.root) == "" {
		return oops.Code(CodeStoreConfig).In("storage").Errorf("file store root is required")
	}
	if err := os.MkdirAll(s.root, 0o700); err != nil {
		return ioError("file", "init", "", err)
	}
	s.ready = true
	return nil
}

func (s *FileStore) Root() string { return s.root }

func (s *FileStore) SaveGenome(ctx context.Context, genome model.Genome) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	payload, err := EncodeGenome(genome)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.root, ".genome-*")
	if err != nil {
		return ioError("file", "save", genome.ID, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		return ioError("file", "save", genome.ID, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return ioError("file", "save", genome.ID, err)
	}
	if err := tmp.Close(); err != nil {
		return ioError("file", "save", genome.ID, err)
	}
	if err := os.Rename(tmp.Name(), s.path(genome.ID)); err != nil {
		return ioError("file", "save", genome.ID, err)
	}
	return nil
}

func (s *FileStore) GetGenome(ctx context.Context, identity string) (model.Genome, bool, error) {
	if err := s.check(ctx); err != nil {
		return model.Genome{}, false, err
	}
	payload, err := os.ReadFile(s.path(identity))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.Genome{}, false, nil
		}
		return model.Genome{}, false, ioError("file", "get", identity, err)
	}
	genome, err := decodeStored(identity, payload)
	if err != nil {
		return model.Genome{}, false, err
	}
	return genome, true, nil
}

func (s *FileStore) DeleteGenome(ctx context.Context, identity string) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := os.Remove(s.path(identity)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return ioError("file", "delete", identity, err)
	}
	return nil
}

func (s *FileStore) path(identity string) string {
	sum := sha256.Sum256([]byte(identity))
	return filepath.Join(s.root, hex.EncodeToString(sum[:])+".json")
}

func (s *FileStore) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.ready {
		return notInitialized("file")
	}
	return nil
}
