package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"cardquest/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, payload interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// statusForError maps service errors to HTTP statuses. Anything unmapped is
// a persistence failure worth a 500 and a retry by the client.
func statusForError(err error) int {
	switch {
	case errors.Is(err, services.ErrIdentityRequired),
		errors.Is(err, services.ErrLocationRequired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound),
		errors.Is(err, services.ErrCatalogMissing):
		return http.StatusNotFound
	case errors.Is(err, services.ErrAlreadyOwned),
		errors.Is(err, services.ErrQuestExists),
		errors.Is(err, services.ErrOwnCard),
		errors.Is(err, services.ErrScanInFlight):
		return http.StatusConflict
	case errors.Is(err, services.ErrCardNotOwned):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
