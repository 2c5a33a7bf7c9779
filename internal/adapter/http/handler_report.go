package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/usecase"
)

// ReportUseCase defines the behavior the handler depends on
type ReportUseCase interface {
	Evaluations(ctx context.Context, datasetID string, filter usecase.ReportFilter) (*domain.Evaluation, error)
	Recap(ctx context.Context, datasetID string, filter usecase.ReportFilter) (*usecase.RecapReport, error)
	Summaries(ctx context.Context, datasetID string, groupBy domain.GroupKey, formula domain.ComplianceFormula, filter usecase.ReportFilter) (*usecase.SummaryReport, error)
	Rankings(ctx context.Context, datasetID string, req usecase.RankingRequest) (*usecase.RankingReport, error)
	Overview(ctx context.Context, filter usecase.ReportFilter) (*usecase.OverviewReport, error)
}

// ReportHandler handles HTTP requests for SLA reports
type ReportHandler struct {
	reportUseCase ReportUseCase
}

// NewReportHandler creates a new report handler
func NewReportHandler(reportUseCase ReportUseCase) *ReportHandler {
	return &ReportHandler{
		reportUseCase: reportUseCase,
	}
}

// RegisterRoutes registers report routes
func (h *ReportHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/datasets/{id}/evaluations", h.GetEvaluations).Methods("GET")
	router.HandleFunc("/api/v1/datasets/{id}/recap", h.GetRecap).Methods("GET")
	router.HandleFunc("/api/v1/datasets/{id}/summaries", h.GetSummaries).Methods("GET")
	router.HandleFunc("/api/v1/datasets/{id}/rankings", h.GetRankings).Methods("GET")
	router.HandleFunc("/api/v1/reports/overview", h.GetOverview).Methods("GET")
}

// GetEvaluations handles retrieving the per-ticket evaluation
func (h *ReportHandler) GetEvaluations(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	ev, err := h.reportUseCase.Evaluations(r.Context(), datasetID, parseFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Evaluations retrieved successfully", ev)
}

// GetRecap handles retrieving the dataset-level SLA recap
func (h *ReportHandler) GetRecap(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	recap, err := h.reportUseCase.Recap(r.Context(), datasetID, parseFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Recap retrieved successfully", recap)
}

// GetSummaries handles retrieving grouped SLA summaries
func (h *ReportHandler) GetSummaries(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	groupBy := domain.GroupKey(r.URL.Query().Get("group_by"))
	if groupBy == "" {
		groupBy = domain.GroupByServiceOffering
	}
	formula := domain.ComplianceFormula(r.URL.Query().Get("formula"))
	if formula == "" {
		formula = domain.FormulaTicketCount
	}

	report, err := h.reportUseCase.Summaries(r.Context(), datasetID, groupBy, formula, parseFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Summaries retrieved successfully", report)
}

// GetRankings handles retrieving group leaderboards
func (h *ReportHandler) GetRankings(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	datasetID := vars["id"]

	if datasetID == "" {
		writeErrorResponse(w, http.StatusBadRequest, "dataset_id", "Dataset ID is required")
		return
	}

	query := r.URL.Query()
	req := usecase.RankingRequest{
		GroupBy: domain.GroupKey(query.Get("group_by")),
		Metric:  domain.RankMetric(query.Get("metric")),
		Formula: domain.ComplianceFormula(query.Get("formula")),
		Filter:  parseFilter(r),
	}

	if best := query.Get("best"); best != "" {
		req.Best, _ = strconv.ParseBool(best)
	}
	if topN := query.Get("top_n"); topN != "" {
		if n, err := strconv.Atoi(topN); err == nil && n > 0 {
			req.TopN = n
		}
	}

	report, err := h.reportUseCase.Rankings(r.Context(), datasetID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Rankings retrieved successfully", report)
}

// GetOverview handles retrieving the cross-dataset overview
func (h *ReportHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.reportUseCase.Overview(r.Context(), parseFilter(r))
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccessResponse(w, http.StatusOK, "Overview retrieved successfully", overview)
}

// parseFilter reads the shared region and month query parameters
func parseFilter(r *http.Request) usecase.ReportFilter {
	query := r.URL.Query()
	filter := usecase.ReportFilter{
		Month: query.Get("month"),
	}
	if region := query.Get("region"); region != "" {
		filter.Region, _ = strconv.ParseBool(region)
	}
	return filter
}
