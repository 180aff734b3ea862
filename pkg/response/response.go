package response

import (
	"errors"
	"net/http"

	"backend/internal/workflow"
)

// Response represents a standard API response format
type Response struct {
	Status     string      `json:"status"`      // "success" or "error"
	StatusCode int         `json:"status_code"` // HTTP status code
	Data       interface{} `json:"data,omitempty"`
	Error      string      `json:"error,omitempty"`
}

// Success returns a standard success response wrapping the data
func Success(statusCode int, data interface{}) Response {
	return Response{
		Status:     "success",
		StatusCode: statusCode,
		Data:       data,
	}
}

// Error returns a standard error response wrapping the error message
func Error(statusCode int, err string) Response {
	return Response{
		Status:     "error",
		StatusCode: statusCode,
		Error:      err,
	}
}

// StatusOf maps the workflow error taxonomy to HTTP status codes. Anything
// outside the taxonomy is a 500.
func StatusOf(err error) int {
	switch {
	case errors.Is(err, workflow.ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, workflow.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, workflow.ErrDuplicateNumber):
		return http.StatusConflict
	case errors.Is(err, workflow.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// FromError builds the error envelope for a failed operation.
func FromError(err error) Response {
	return Error(StatusOf(err), err.Error())
}
