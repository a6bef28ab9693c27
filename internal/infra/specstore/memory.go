package specstore

import (
	"context"
	"sync"

	"github.com/astrachart/astrachart/internal/domain/chart"
	"github.com/astrachart/astrachart/internal/domain/render"
)

// MemoryStore keeps generated chart specifications in process memory.
type MemoryStore struct {
	mu    sync.RWMutex
	specs map[string]render.ChartSpec
}

// NewMemoryStore constructs the store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{specs: make(map[string]render.ChartSpec)}
}

// Save archives a specification under a chart id.
func (s *MemoryStore) Save(_ context.Context, id string, spec render.ChartSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specs[id] = spec
	return nil
}

// Get retrieves a previously archived specification.
func (s *MemoryStore) Get(_ context.Context, id string) (render.ChartSpec, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	spec, ok := s.specs[id]
	return spec, ok, nil
}

var _ chart.SpecStore = (*MemoryStore)(nil)
