package storage

import (
	"context"
	"sync"

	"neatauth/internal/model"
)

// MemoryStore keeps genomes in process. Values are copied on the way in and
// out so callers never alias stored slices.
type MemoryStore struct {
	mu      sync.RWMutex
	genomes map[string]model.Genome
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genomes == nil {
		s.genomes = make(map[string]model.Genome)
	}
	return nil
}

func (s *MemoryStore) SaveGenome(_ context.Context, genome model.Genome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genomes == nil {
		return notInitialized("memory")
	}
	s.genomes[genome.ID] = genome.Clone()
	return nil
}

func (s *MemoryStore) GetGenome(_ context.Context, identity string) (model.Genome, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.genomes == nil {
		return model.Genome{}, false, notInitialized("memory")
	}
	genome, ok := s.genomes[identity]
	if !ok {
		return model.Genome{}, false, nil
	}
	return genome.Clone(), true, nil
}

func (s *MemoryStore) DeleteGenome(_ context.Context, identity string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.genomes == nil {
		return notInitialized("memory")
	}
	delete(s.genomes, identity)
	return nil
}
