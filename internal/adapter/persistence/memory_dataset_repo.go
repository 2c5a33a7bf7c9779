package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/ports"
)

// MemoryDatasetRepository is an in-memory DatasetRepository used in
// tests and single-node evaluation setups.
type MemoryDatasetRepository struct {
	mu       sync.RWMutex
	datasets map[string]*domain.Dataset
}

// NewMemoryDatasetRepository creates an empty in-memory repository
func NewMemoryDatasetRepository() *MemoryDatasetRepository {
	return &MemoryDatasetRepository{datasets: make(map[string]*domain.Dataset)}
}

var _ ports.DatasetRepository = (*MemoryDatasetRepository)(nil)

// Create saves a new dataset with its records
func (r *MemoryDatasetRepository) Create(ctx context.Context, dataset *domain.Dataset) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := *dataset
	r.datasets[dataset.ID] = &cp
	return nil
}

// FindByID retrieves a dataset by its ID
func (r *MemoryDatasetRepository) FindByID(ctx context.Context, id string) (*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dataset, ok := r.datasets[id]
	if !ok {
		return nil, domain.ErrDatasetNotFound
	}
	cp := *dataset
	return &cp, nil
}

// List retrieves all datasets, newest first
func (r *MemoryDatasetRepository) List(ctx context.Context) ([]*domain.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Dataset, 0, len(r.datasets))
	for _, dataset := range r.datasets {
		cp := *dataset
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// AttachMapping stores the external SLA mapping for a dataset
func (r *MemoryDatasetRepository) AttachMapping(ctx context.Context, id string, mapping *domain.MappingArtifact) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	dataset, ok := r.datasets[id]
	if !ok {
		return domain.ErrDatasetNotFound
	}
	dataset.Mapping = mapping
	return nil
}

// Delete removes a dataset and its records
func (r *MemoryDatasetRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.datasets[id]; !ok {
		return domain.ErrDatasetNotFound
	}
	delete(r.datasets, id)
	return nil
}
