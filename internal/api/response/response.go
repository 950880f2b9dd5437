// Package response provides helpers for sending consistent JSON responses,
// including the structured error shape shared by all endpoints.
package response

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gfranca/b3-ledger-backend/internal/validation"
)

// ErrorResponse is the structured error body returned by the API. Fields is
// populated for validation failures, one message per failing field.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details interface{}       `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondJSON sends a JSON response with the given status code. If data is
// nil, only the status code is sent.
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("failed to encode JSON response: %v", err)
		}
	}
}

// RespondError sends a structured error response. details can be an error
// string, additional context, or nil.
func RespondError(w http.ResponseWriter, status int, message string, details interface{}) {
	RespondJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// RespondValidationError sends a 400 with the per-field messages of a
// validation error attached.
func RespondValidationError(w http.ResponseWriter, err *validation.Error) {
	RespondJSON(w, http.StatusBadRequest, ErrorResponse{
		Error:  "validation failed",
		Fields: err.Fields,
	})
}
