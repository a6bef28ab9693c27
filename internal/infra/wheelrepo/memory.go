package wheelrepo

import (
	"context"
	"sync"

	"github.com/astrachart/astrachart/internal/domain/chart"
	"github.com/astrachart/astrachart/internal/domain/layout"
)

// MemoryRepository keeps wheel definitions in process memory. It ships seeded
// with the built-in natal wheel so the service renders out of the box.
type MemoryRepository struct {
	mu     sync.RWMutex
	wheels map[string]layout.Definition
}

// NewMemoryRepository constructs the repository with the default wheel.
func NewMemoryRepository() *MemoryRepository {
	repo := &MemoryRepository{wheels: make(map[string]layout.Definition)}
	def := layout.DefaultDefinition()
	repo.wheels[def.Slug] = def
	return repo
}

// Get fetches one wheel by slug.
func (r *MemoryRepository) Get(_ context.Context, slug string) (layout.Definition, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	def, ok := r.wheels[slug]
	return def, ok, nil
}

// List returns all stored wheels.
func (r *MemoryRepository) List(_ context.Context) ([]layout.Definition, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]layout.Definition, 0, len(r.wheels))
	for _, def := range r.wheels {
		out = append(out, def)
	}
	return out, nil
}

// Store adds or replaces a wheel definition.
func (r *MemoryRepository) Store(def layout.Definition) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.wheels[def.Slug] = def
}

var _ chart.WheelRepository = (*MemoryRepository)(nil)
