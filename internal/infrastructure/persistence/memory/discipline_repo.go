// Package memory implements process-local repositories. They back the
// "memory" storage driver used for local runs and tests.
package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/campus-hub/course-registry/internal/domain/discipline"
)

// DisciplineRepository implements discipline.Repository in memory.
type DisciplineRepository struct {
	mu    sync.RWMutex
	order []string
	items map[string]*discipline.Discipline
}

// NewDisciplineRepository creates an empty repository.
func NewDisciplineRepository() *DisciplineRepository {
	return &DisciplineRepository{items: make(map[string]*discipline.Discipline)}
}

// List returns copies of every record in insertion order.
func (r *DisciplineRepository) List(_ context.Context) ([]*discipline.Discipline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*discipline.Discipline, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.items[id].Clone())
	}
	return out, nil
}

// FindByID returns a copy of the record.
func (r *DisciplineRepository) FindByID(_ context.Context, id string) (*discipline.Discipline, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.items[id]
	if !ok {
		return nil, discipline.ErrNotFound
	}
	return d.Clone(), nil
}

// Insert assigns a UUID and stores a copy.
func (r *DisciplineRepository) Insert(_ context.Context, d *discipline.Discipline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	d.ID = uuid.NewString()
	r.items[d.ID] = d.Clone()
	r.order = append(r.order, d.ID)
	return nil
}

// Update replaces the stored copy.
func (r *DisciplineRepository) Update(_ context.Context, d *discipline.Discipline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[d.ID]; !ok {
		return discipline.ErrNotFound
	}
	r.items[d.ID] = d.Clone()
	return nil
}

// Delete removes the record.
func (r *DisciplineRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return discipline.ErrNotFound
	}
	delete(r.items, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping always succeeds.
func (r *DisciplineRepository) Ping(_ context.Context) error { return nil }
