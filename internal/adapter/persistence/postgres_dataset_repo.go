package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/ports"
)

// PostgresDatasetRepository implements DatasetRepository using PostgreSQL.
// Records and mapping artifacts are stored as JSONB documents; the
// engine never queries inside them, it always loads the full dataset.
type PostgresDatasetRepository struct {
	db *sql.DB
}

// NewPostgresDatasetRepository creates a new PostgreSQL dataset repository
func NewPostgresDatasetRepository(db *sql.DB) ports.DatasetRepository {
	return &PostgresDatasetRepository{db: db}
}

// Create saves a new dataset with its records
func (r *PostgresDatasetRepository) Create(ctx context.Context, dataset *domain.Dataset) error {
	query := `
		INSERT INTO datasets (id, name, class, period, records, mapping, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	recordsJSON, err := json.Marshal(dataset.Records)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	var mappingJSON []byte
	if dataset.Mapping != nil {
		mappingJSON, err = json.Marshal(dataset.Mapping)
		if err != nil {
			return fmt.Errorf("failed to marshal mapping: %w", err)
		}
	}

	_, err = r.db.ExecContext(ctx, query,
		dataset.ID,
		dataset.Name,
		string(dataset.Class),
		dataset.Period,
		recordsJSON,
		mappingJSON,
		dataset.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create dataset: %w", err)
	}

	return nil
}

// FindByID retrieves a dataset by its ID
func (r *PostgresDatasetRepository) FindByID(ctx context.Context, id string) (*domain.Dataset, error) {
	query := `
		SELECT id, name, class, period, records, mapping, created_at
		FROM datasets
		WHERE id = $1
	`

	var dataset domain.Dataset
	var recordsJSON, mappingJSON []byte

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&dataset.ID,
		&dataset.Name,
		&dataset.Class,
		&dataset.Period,
		&recordsJSON,
		&mappingJSON,
		&dataset.CreatedAt,
	)

	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrDatasetNotFound
		}
		return nil, fmt.Errorf("failed to find dataset: %w", err)
	}

	if err := json.Unmarshal(recordsJSON, &dataset.Records); err != nil {
		return nil, fmt.Errorf("failed to unmarshal records: %w", err)
	}

	if len(mappingJSON) > 0 {
		var mapping domain.MappingArtifact
		if err := json.Unmarshal(mappingJSON, &mapping); err != nil {
			return nil, fmt.Errorf("failed to unmarshal mapping: %w", err)
		}
		dataset.Mapping = &mapping
	}

	return &dataset, nil
}

// List retrieves all datasets, newest first
func (r *PostgresDatasetRepository) List(ctx context.Context) ([]*domain.Dataset, error) {
	query := `
		SELECT id, name, class, period, records, mapping, created_at
		FROM datasets
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query datasets: %w", err)
	}
	defer rows.Close()

	var datasets []*domain.Dataset

	for rows.Next() {
		var dataset domain.Dataset
		var recordsJSON, mappingJSON []byte

		err := rows.Scan(
			&dataset.ID,
			&dataset.Name,
			&dataset.Class,
			&dataset.Period,
			&recordsJSON,
			&mappingJSON,
			&dataset.CreatedAt,
		)

		if err != nil {
			return nil, fmt.Errorf("failed to scan dataset: %w", err)
		}

		if err := json.Unmarshal(recordsJSON, &dataset.Records); err != nil {
			return nil, fmt.Errorf("failed to unmarshal records: %w", err)
		}

		if len(mappingJSON) > 0 {
			var mapping domain.MappingArtifact
			if err := json.Unmarshal(mappingJSON, &mapping); err != nil {
				return nil, fmt.Errorf("failed to unmarshal mapping: %w", err)
			}
			dataset.Mapping = &mapping
		}

		datasets = append(datasets, &dataset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating datasets: %w", err)
	}

	return datasets, nil
}

// AttachMapping stores the external SLA mapping for a dataset
func (r *PostgresDatasetRepository) AttachMapping(ctx context.Context, id string, mapping *domain.MappingArtifact) error {
	query := `UPDATE datasets SET mapping = $2 WHERE id = $1`

	mappingJSON, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, id, mappingJSON)
	if err != nil {
		return fmt.Errorf("failed to attach mapping: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrDatasetNotFound
	}

	return nil
}

// Delete removes a dataset and its records
func (r *PostgresDatasetRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM datasets WHERE id = $1`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrDatasetNotFound
	}

	return nil
}
