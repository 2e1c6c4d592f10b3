package api

import (
	"encoding/json"
	"net/http"

	"github.com/qqbek24/transport-request-form-app/internal/models"
)

// ErrorResponse represents an API error response.
type ErrorResponse struct {
	Error            string              `json:"error"`
	ErrorDescription string              `json:"error_description,omitempty"`
	Fields           []models.FieldError `json:"fields,omitempty"`
}

// writeJSONError writes a JSON error response.
func writeJSONError(w http.ResponseWriter, status int, code, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            code,
		ErrorDescription: description,
	})
}

// writeValidationError writes a 400 response enumerating every offending
// field.
func writeValidationError(w http.ResponseWriter, verr *models.ValidationError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadRequest)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error:            "validation_error",
		ErrorDescription: verr.Error(),
		Fields:           verr.Fields,
	})
}
