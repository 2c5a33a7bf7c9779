package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/sladash/sladash/internal/domain"
	"github.com/sladash/sladash/internal/usecase"
)

// MockReportUseCase is a mock implementation of ReportUseCase
type MockReportUseCase struct {
	mock.Mock
}

func (m *MockReportUseCase) Evaluations(ctx context.Context, datasetID string, filter usecase.ReportFilter) (*domain.Evaluation, error) {
	args := m.Called(ctx, datasetID, filter)
	return args.Get(0).(*domain.Evaluation), args.Error(1)
}

func (m *MockReportUseCase) Recap(ctx context.Context, datasetID string, filter usecase.ReportFilter) (*usecase.RecapReport, error) {
	args := m.Called(ctx, datasetID, filter)
	return args.Get(0).(*usecase.RecapReport), args.Error(1)
}

func (m *MockReportUseCase) Summaries(ctx context.Context, datasetID string, groupBy domain.GroupKey, formula domain.ComplianceFormula, filter usecase.ReportFilter) (*usecase.SummaryReport, error) {
	args := m.Called(ctx, datasetID, groupBy, formula, filter)
	return args.Get(0).(*usecase.SummaryReport), args.Error(1)
}

func (m *MockReportUseCase) Rankings(ctx context.Context, datasetID string, req usecase.RankingRequest) (*usecase.RankingReport, error) {
	args := m.Called(ctx, datasetID, req)
	return args.Get(0).(*usecase.RankingReport), args.Error(1)
}

func (m *MockReportUseCase) Overview(ctx context.Context, filter usecase.ReportFilter) (*usecase.OverviewReport, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(*usecase.OverviewReport), args.Error(1)
}

func TestReportHandler_GetRecap(t *testing.T) {
	tests := []struct {
		name           string
		url            string
		expectedFilter usecase.ReportFilter
		mockResponse   *usecase.RecapReport
		mockError      error
		expectedStatus int
	}{
		{
			name:           "recap without filters",
			url:            "/api/v1/datasets/ds-1/recap",
			expectedFilter: usecase.ReportFilter{},
			mockResponse:   &usecase.RecapReport{DatasetID: "ds-1", Tickets: 6, Achieved: 2, Breached: 1},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "recap with region and month filters",
			url:            "/api/v1/datasets/ds-1/recap?region=true&month=2025-03",
			expectedFilter: usecase.ReportFilter{Region: true, Month: "2025-03"},
			mockResponse:   &usecase.RecapReport{DatasetID: "ds-1", Tickets: 4},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid month filter",
			url:            "/api/v1/datasets/ds-1/recap?month=bogus",
			expectedFilter: usecase.ReportFilter{Month: "bogus"},
			mockError:      domain.ErrInvalidMonth,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "dataset not found",
			url:            "/api/v1/datasets/ds-1/recap",
			expectedFilter: usecase.ReportFilter{},
			mockError:      domain.ErrDatasetNotFound,
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockUseCase := &MockReportUseCase{}
			handler := NewReportHandler(mockUseCase)

			mockUseCase.On("Recap", mock.Anything, "ds-1", tt.expectedFilter).Return(tt.mockResponse, tt.mockError)

			req := httptest.NewRequest("GET", tt.url, nil)

			router := mux.NewRouter()
			router.HandleFunc("/api/v1/datasets/{id}/recap", handler.GetRecap).Methods("GET")

			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			mockUseCase.AssertExpectations(t)
		})
	}
}

func TestReportHandler_GetSummariesDefaults(t *testing.T) {
	mockUseCase := &MockReportUseCase{}
	handler := NewReportHandler(mockUseCase)

	// Missing query parameters fall back to service offering grouping
	// with the ticket-count formula.
	mockUseCase.On("Summaries", mock.Anything, "ds-1",
		domain.GroupByServiceOffering, domain.FormulaTicketCount, usecase.ReportFilter{}).
		Return(&usecase.SummaryReport{DatasetID: "ds-1"}, nil)

	req := httptest.NewRequest("GET", "/api/v1/datasets/ds-1/summaries", nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/datasets/{id}/summaries", handler.GetSummaries).Methods("GET")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	mockUseCase.AssertExpectations(t)
}

func TestReportHandler_GetSummariesUnknownFormula(t *testing.T) {
	mockUseCase := &MockReportUseCase{}
	handler := NewReportHandler(mockUseCase)

	var empty *usecase.SummaryReport
	mockUseCase.On("Summaries", mock.Anything, "ds-1",
		domain.GroupByLocation, domain.ComplianceFormula("weighted"), usecase.ReportFilter{}).
		Return(empty, domain.ErrUnknownFormula)

	req := httptest.NewRequest("GET", "/api/v1/datasets/ds-1/summaries?group_by=location&formula=weighted", nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/datasets/{id}/summaries", handler.GetSummaries).Methods("GET")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"unknown compliance formula","data":null,"code":"BAD_REQUEST"}`, w.Body.String())

	mockUseCase.AssertExpectations(t)
}

func TestReportHandler_GetRankings(t *testing.T) {
	mockUseCase := &MockReportUseCase{}
	handler := NewReportHandler(mockUseCase)

	expected := usecase.RankingRequest{
		GroupBy: domain.GroupByLocation,
		Metric:  domain.RankByBreachHours,
		Best:    true,
		TopN:    5,
		Filter:  usecase.ReportFilter{Region: true},
	}
	mockUseCase.On("Rankings", mock.Anything, "ds-1", expected).
		Return(&usecase.RankingReport{DatasetID: "ds-1", Request: expected}, nil)

	url := "/api/v1/datasets/ds-1/rankings?group_by=location&metric=breach_hours&best=true&top_n=5&region=true"
	req := httptest.NewRequest("GET", url, nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/datasets/{id}/rankings", handler.GetRankings).Methods("GET")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	mockUseCase.AssertExpectations(t)
}

func TestReportHandler_GetOverview(t *testing.T) {
	mockUseCase := &MockReportUseCase{}
	handler := NewReportHandler(mockUseCase)

	mockUseCase.On("Overview", mock.Anything, usecase.ReportFilter{}).
		Return(&usecase.OverviewReport{Datasets: 2}, nil)

	req := httptest.NewRequest("GET", "/api/v1/reports/overview", nil)

	router := mux.NewRouter()
	router.HandleFunc("/api/v1/reports/overview", handler.GetOverview).Methods("GET")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	mockUseCase.AssertExpectations(t)
}

func TestReportHandler_RegisterRoutes(t *testing.T) {
	mockUseCase := &MockReportUseCase{}
	handler := NewReportHandler(mockUseCase)

	mockUseCase.On("Evaluations", mock.Anything, "{id}", usecase.ReportFilter{}).Return(&domain.Evaluation{}, nil)
	mockUseCase.On("Recap", mock.Anything, "{id}", usecase.ReportFilter{}).Return(&usecase.RecapReport{}, nil)
	mockUseCase.On("Summaries", mock.Anything, "{id}", domain.GroupByServiceOffering, domain.FormulaTicketCount, usecase.ReportFilter{}).Return(&usecase.SummaryReport{}, nil)
	mockUseCase.On("Rankings", mock.Anything, "{id}", mock.AnythingOfType("usecase.RankingRequest")).Return(&usecase.RankingReport{}, nil)
	mockUseCase.On("Overview", mock.Anything, usecase.ReportFilter{}).Return(&usecase.OverviewReport{}, nil)

	router := mux.NewRouter()
	handler.RegisterRoutes(router)

	routes := []struct {
		method string
		path   string
	}{
		{"GET", "/api/v1/datasets/{id}/evaluations"},
		{"GET", "/api/v1/datasets/{id}/recap"},
		{"GET", "/api/v1/datasets/{id}/summaries"},
		{"GET", "/api/v1/datasets/{id}/rankings"},
		{"GET", "/api/v1/reports/overview"},
	}

	for _, route := range routes {
		req := httptest.NewRequest(route.method, route.path, nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.NotEqual(t, http.StatusNotFound, w.Code, "Route %s %s should be registered", route.method, route.path)
	}
}
