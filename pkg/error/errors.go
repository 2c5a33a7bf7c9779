package error

import (
	"errors"
	"net/http"

	"github.com/sladash/sladash/internal/domain"
)

type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"status"`
}

func (e *AppError) Error() string {
	return e.Message
}

var (
	ErrBadRequest     = &AppError{Code: "BAD_REQUEST", Message: "Bad request", Status: http.StatusBadRequest}
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Unauthorized", Status: http.StatusUnauthorized}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Not found", Status: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "Internal server error", Status: http.StatusInternalServerError}
	ErrConflict       = &AppError{Code: "CONFLICT", Message: "Conflict", Status: http.StatusConflict}
)

func NewBadRequest(message string) *AppError {
	return &AppError{Code: "BAD_REQUEST", Message: message, Status: http.StatusBadRequest}
}

func NewUnauthorized(message string) *AppError {
	return &AppError{Code: "UNAUTHORIZED", Message: message, Status: http.StatusUnauthorized}
}

func NewNotFound(message string) *AppError {
	return &AppError{Code: "NOT_FOUND", Message: message, Status: http.StatusNotFound}
}

func NewUnprocessable(message string) *AppError {
	return &AppError{Code: "UNPROCESSABLE", Message: message, Status: http.StatusUnprocessableEntity}
}

func NewInternalServer(message string) *AppError {
	return &AppError{Code: "INTERNAL_ERROR", Message: message, Status: http.StatusInternalServerError}
}

func NewConflict(message string) *AppError {
	return &AppError{Code: "CONFLICT", Message: message, Status: http.StatusConflict}
}

func MapError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	// Map domain errors
	switch {
	case errors.Is(err, domain.ErrDatasetNotFound):
		return NewNotFound(err.Error())
	case errors.Is(err, domain.ErrMappingIncomplete):
		return NewUnprocessable(err.Error())
	case errors.Is(err, domain.ErrInvalidClass),
		errors.Is(err, domain.ErrEmptyDataset),
		errors.Is(err, domain.ErrUnknownGroupKey),
		errors.Is(err, domain.ErrUnknownFormula),
		errors.Is(err, domain.ErrUnknownRankMetric),
		errors.Is(err, domain.ErrInvalidMonth):
		return NewBadRequest(err.Error())
	default:
		return NewInternalServer("An unexpected error occurred")
	}
}
