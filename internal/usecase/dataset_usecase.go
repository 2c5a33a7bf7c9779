package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/ports"
)

// CreateDatasetRequest represents the request to register a ticket export
type CreateDatasetRequest struct {
	Name    string               `json:"name" validate:"required,min=3,max=200"`
	Class   domain.TicketClass   `json:"class" validate:"required"`
	Period  string               `json:"period,omitempty"`
	Records []domain.TicketRecord `json:"records" validate:"required"`
}

// DatasetUseCase handles dataset lifecycle business logic
type DatasetUseCase struct {
	datasetRepo ports.DatasetRepository
	cache       ports.ReportCache
}

// NewDatasetUseCase creates a new dataset use case
func NewDatasetUseCase(datasetRepo ports.DatasetRepository, cache ports.ReportCache) *DatasetUseCase {
	return &DatasetUseCase{
		datasetRepo: datasetRepo,
		cache:       cache,
	}
}

// CreateDataset registers a new ticket export for analysis
func (uc *DatasetUseCase) CreateDataset(ctx context.Context, req CreateDatasetRequest) (*domain.Dataset, error) {
	if err := uc.validateCreateRequest(req); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	dataset := &domain.Dataset{
		ID:        uuid.New().String(),
		Name:      req.Name,
		Class:     req.Class,
		Period:    req.Period,
		Records:   req.Records,
		CreatedAt: time.Now().UTC(),
	}

	if err := uc.datasetRepo.Create(ctx, dataset); err != nil {
		return nil, fmt.Errorf("failed to create dataset: %w", err)
	}

	// A cached overview still reflects the pre-upload dataset list.
	if uc.cache != nil {
		_ = uc.cache.InvalidateDataset(ctx, dataset.ID)
	}

	return dataset, nil
}

// GetDataset retrieves a dataset by ID
func (uc *DatasetUseCase) GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset ID is required")
	}

	dataset, err := uc.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	return dataset, nil
}

// ListDatasets retrieves all registered datasets, newest first
func (uc *DatasetUseCase) ListDatasets(ctx context.Context) ([]*domain.Dataset, error) {
	datasets, err := uc.datasetRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	return datasets, nil
}

// AttachMapping stores an external SLA mapping artifact on a dataset.
// The artifact must carry all three lookup tables; an incomplete upload
// is rejected outright rather than stored, so a dataset either has a
// usable mapping or none at all.
func (uc *DatasetUseCase) AttachMapping(ctx context.Context, datasetID string, mapping *domain.MappingArtifact) (*domain.Dataset, error) {
	if datasetID == "" {
		return nil, fmt.Errorf("dataset ID is required")
	}

	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	dataset, err := uc.datasetRepo.FindByID(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}

	if err := uc.datasetRepo.AttachMapping(ctx, dataset.ID, mapping); err != nil {
		return nil, fmt.Errorf("failed to attach mapping: %w", err)
	}
	dataset.Mapping = mapping

	// Stored reports were computed against the old resolver.
	if uc.cache != nil {
		_ = uc.cache.InvalidateDataset(ctx, dataset.ID)
	}

	return dataset, nil
}

// DeleteDataset removes a dataset and its cached reports
func (uc *DatasetUseCase) DeleteDataset(ctx context.Context, datasetID string) error {
	if datasetID == "" {
		return fmt.Errorf("dataset ID is required")
	}

	if err := uc.datasetRepo.Delete(ctx, datasetID); err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	if uc.cache != nil {
		_ = uc.cache.InvalidateDataset(ctx, datasetID)
	}

	return nil
}

// Helper functions

func (uc *DatasetUseCase) validateCreateRequest(req CreateDatasetRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(req.Name) > 200 {
		return fmt.Errorf("name must not exceed 200 characters")
	}

	if !domain.ValidTicketClass(req.Class) {
		return domain.ErrInvalidClass
	}

	if len(req.Records) == 0 {
		return domain.ErrEmptyDataset
	}

	return nil
}
