package http

import (
	"encoding/json"
	"net/http"

	apperr "github.com/sladash/sladash/pkg/error"
)

// writeSuccessResponse writes the standard success envelope
func writeSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]interface{}{
		"status":  true,
		"message": message,
		"data":    data,
	}

	json.NewEncoder(w).Encode(response)
}

// writeErrorResponse writes the standard error envelope
func writeErrorResponse(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]interface{}{
		"status":  false,
		"message": message,
		"data":    nil,
		"code":    code,
	}

	json.NewEncoder(w).Encode(response)
}

// writeError maps any error onto the envelope via the application error
// catalogue
func writeError(w http.ResponseWriter, err error) {
	appErr := apperr.MapError(err)
	writeErrorResponse(w, appErr.Status, appErr.Code, appErr.Message)
}
