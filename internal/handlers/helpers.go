package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/jackc/pgx/v5"

	"vidquiz-backend/internal/models"
	"vidquiz-backend/internal/services"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

func errorResp(w http.ResponseWriter, r *http.Request, status int, code, message string, fields map[string]string) {
	writeJSON(w, status, models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	})
}

// handleServiceError maps typed service errors to HTTP responses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *services.ValidationError
	var conflictErr *services.ConflictError
	var notFoundErr *services.NotFoundError
	var unauthorizedErr *services.UnauthorizedError
	var forbiddenErr *services.ForbiddenError

	switch {
	case errors.As(err, &validationErr):
		errorResp(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed", validationErr.Fields)
	case errors.As(err, &conflictErr):
		errorResp(w, r, http.StatusConflict, "CONFLICT", conflictErr.Message, nil)
	case errors.As(err, &notFoundErr):
		errorResp(w, r, http.StatusNotFound, "NOT_FOUND", notFoundErr.Message, nil)
	case errors.As(err, &unauthorizedErr):
		errorResp(w, r, http.StatusUnauthorized, "UNAUTHORIZED", unauthorizedErr.Message, nil)
	case errors.As(err, &forbiddenErr):
		errorResp(w, r, http.StatusForbidden, "FORBIDDEN", forbiddenErr.Message, nil)
	case errors.Is(err, pgx.ErrNoRows):
		errorResp(w, r, http.StatusNotFound, "NOT_FOUND", "Resource not found", nil)
	default:
		log.Printf("Internal error: %v", err)
		errorResp(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
	}
}
