package httputil

import (
	"encoding/json"
	"net/http"

	"github.com/mergington/activities/internal/pkg/logger"
)

// ErrorResponse is the standard error envelope for all API errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
	Code   string `json:"code,omitempty"`
}

// Error codes carried in ErrorResponse.Code.
const (
	CodeNotFound          = "not_found"
	CodeAlreadyRegistered = "already_registered"
	CodeNotRegistered     = "not_registered"
	CodeValidation        = "validation_error"
	CodeInternal          = "internal_error"
)

// JSON writes a JSON response with the given status code. The data is
// serialized and Content-Type is set automatically.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("httputil: JSON encode failed", "error", err)
	}
}

// OK writes a 200 response with the given data.
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Error writes a JSON error response. Use for client errors (4xx).
func Error(w http.ResponseWriter, status int, code, detail string) {
	JSON(w, status, ErrorResponse{Detail: detail, Code: code})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, code, detail string) {
	Error(w, http.StatusBadRequest, code, detail)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, detail string) {
	Error(w, http.StatusNotFound, CodeNotFound, detail)
}

// Unprocessable writes a 422 error for requests missing required input.
func Unprocessable(w http.ResponseWriter, detail string) {
	Error(w, http.StatusUnprocessableEntity, CodeValidation, detail)
}

// InternalError writes a 500 error. Logs the real error but returns a
// generic message to the client (never leak internals).
func InternalError(w http.ResponseWriter, err error) {
	logger.Error("httputil: internal error", "error", err)
	Error(w, http.StatusInternalServerError, CodeInternal, "internal server error")
}
