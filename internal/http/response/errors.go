package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/harborstay/reservations/internal/domain"
	"github.com/harborstay/reservations/pkg/logger"
)

// ErrorResponse is the JSON error envelope every handler emits.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func WriteError(w http.ResponseWriter, statusCode int, message string, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: message, Code: code}); err != nil {
		logger.Error("failed to encode error response", "error", err)
	}
}

// Error codes
const (
	CodeInvalidInput     = "INVALID_INPUT"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeForbidden        = "FORBIDDEN"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
	CodeCapacityExceeded = "CAPACITY_EXCEEDED"
	CodeRoleViolation    = "ROLE_VIOLATION"
	CodeUnavailable      = "DATES_UNAVAILABLE"
	CodeStateConflict    = "STATE_CONFLICT"
	CodeLateCancellation = "LATE_CANCELLATION"
	CodeAlreadyConfirmed = "ALREADY_CONFIRMED"
)

func BadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message, CodeInvalidInput)
}

func Unauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, message, CodeUnauthorized)
}

func Forbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, message, CodeForbidden)
}

func NotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, message, CodeNotFound)
}

func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message, CodeInternalError)
}

// FromDomain maps an error kind from the reservation core to its HTTP
// representation. Unknown errors become 500s without leaking detail.
func FromDomain(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error(), CodeNotFound)
	case errors.Is(err, domain.ErrInvalidRequest):
		WriteError(w, http.StatusBadRequest, err.Error(), CodeInvalidInput)
	case errors.Is(err, domain.ErrCapacityExceeded):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeCapacityExceeded)
	case errors.Is(err, domain.ErrRoleViolation):
		WriteError(w, http.StatusForbidden, err.Error(), CodeRoleViolation)
	case errors.Is(err, domain.ErrUnavailable):
		WriteError(w, http.StatusConflict, err.Error(), CodeUnavailable)
	case errors.Is(err, domain.ErrStateConflict):
		WriteError(w, http.StatusConflict, err.Error(), CodeStateConflict)
	case errors.Is(err, domain.ErrPermissionDenied):
		WriteError(w, http.StatusForbidden, err.Error(), CodeForbidden)
	case errors.Is(err, domain.ErrLateCancellation):
		WriteError(w, http.StatusUnprocessableEntity, err.Error(), CodeLateCancellation)
	case errors.Is(err, domain.ErrAlreadyConfirmed):
		WriteError(w, http.StatusConflict, err.Error(), CodeAlreadyConfirmed)
	default:
		WriteError(w, http.StatusInternalServerError, "internal error", CodeInternalError)
	}
}
