package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/usecase"
)

// DatasetUseCase defines the behavior the handler depends on.
// Using an interface here makes the handler easily testable with mocks.
type DatasetUseCase interface {
	CreateDataset(ctx context.Context, req usecase.CreateDatasetRequest) (*domain.Dataset, error)
	GetDataset(ctx context.Context, datasetID string) (*domain.Dataset, error)
	ListDatasets(ctx context.Context) ([]*domain.Dataset, error)
	AttachMapping(ctx context.Context, datasetID string, mapping *domain.MappingArtifact) (*domain.Dataset, error)
	DeleteDataset(ctx context.Context, datasetID string) error
}

// DatasetHandler handles HTTP requests for datasets
type DatasetHandler struct {
	datasetUseCase DatasetUseCase
}

// NewDatasetHandler creates a new dataset handler
func NewDatasetHandler(datasetUseCase DatasetUseCase) *DatasetHandler {
	return &DatasetHandler{
		datasetUseCase: datasetUseCase,
	}
}

// RegisterRoutes registers dataset routes
func (h *DatasetHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/datasets", h.CreateDataset).Methods("POST")
	router.HandleFunc("/api/v1/datasets", h.ListDatasets).Methods("GET")
	router.HandleFunc("/api/v1/datasets/{id}", h.GetDataset).Methods("GET")
	router.HandleFunc("/api/v1/datasets/{id}", h.DeleteDataset).Methods("DELETE")
	router.HandleFunc("/api/v1/datasets/{id}/mapping", h.AttachMapping).Methods("POST")
}

// CreateDataset handles dataset registration
func (h *DatasetHandler) CreateDataset(w http.ResponseWriter, r *http.Request) {
	var req usecase.CreateDatasetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	dataset, err := h.datasetUseCase.CreateDataset(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusCreated, "Dataset created successfully", datasetSummary(dataset))
}

// ListDatasets handles listing registered datasets
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	datasets, err := h.datasetUseCase.ListDatasets(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	summaries := make([]map[string]interface{}, 0, len(datasets))
	for _, ds := range datasets {
		summaries = append(summaries, datasetSummary(ds))
	}

	writeSuccessResponse(w, http.StatusOK, "Datasets retrieved successfully", summaries)
}

// GetDataset handles retrieving a single dataset
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	dataset, err := h.datasetUseCase.GetDataset(r.Context(), datasetID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Dataset retrieved successfully", dataset)
}

// AttachMapping handles uploading the external SLA mapping for a dataset
func (h *DatasetHandler) AttachMapping(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	var mapping domain.MappingArtifact
	if err := json.NewDecoder(r.Body).Decode(&mapping); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	dataset, err := h.datasetUseCase.AttachMapping(r.Context(), datasetID, &mapping)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Mapping attached successfully", datasetSummary(dataset))
}

// DeleteDataset handles dataset deletion
func (h *DatasetHandler) DeleteDataset(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	if err := h.datasetUseCase.DeleteDataset(r.Context(), datasetID); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// datasetSummary renders a dataset without its record payload; full
// records only come back from the single-dataset endpoint.
func datasetSummary(ds *domain.Dataset) map[string]interface{} {
	return map[string]interface{}{
		"id":          ds.ID,
		"name":        ds.Name,
		"class":       ds.Class,
		"period":      ds.Period,
		"records":     len(ds.Records),
		"has_mapping": ds.Mapping != nil,
		"created_at":  ds.CreatedAt,
	}
}
