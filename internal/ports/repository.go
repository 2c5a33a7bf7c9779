package ports

import (
	"context"
	"time"

	"github.com/sladash/sladash/internal/domain"
)

// DatasetRepository defines the interface for dataset persistence
type DatasetRepository interface {
	// Create saves a new dataset with its records
	Create(ctx context.Context, dataset *domain.Dataset) error

	// FindByID retrieves a dataset by its ID
	FindByID(ctx context.Context, id string) (*domain.Dataset, error)

	// List retrieves all datasets, newest first
	List(ctx context.Context) ([]*domain.Dataset, error)

	// AttachMapping stores the external SLA mapping for a dataset
	AttachMapping(ctx context.Context, id string, mapping *domain.MappingArtifact) error

	// Delete removes a dataset and its records
	Delete(ctx context.Context, id string) error
}

// ReportCache defines the interface for caching computed reports.
// Reports are pure projections of stored datasets, so cache misses are
// always recomputable and cache failures must never fail a request.
type ReportCache interface {
	// Get loads a cached report into v; the bool reports a hit
	Get(ctx context.Context, key string, v interface{}) (bool, error)

	// Set stores a computed report under key for ttl
	Set(ctx context.Context, key string, v interface{}, ttl time.Duration) error

	// InvalidateDataset drops every cached report for a dataset
	InvalidateDataset(ctx context.Context, datasetID string) error
}
