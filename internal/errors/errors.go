package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrTaskNotFound is returned when a task does not exist for the owner.
	ErrTaskNotFound = errors.New("task not found")
	// ErrInvalidSortColumn is returned when orderBy is outside the whitelist.
	ErrInvalidSortColumn = errors.New("invalid orderBy column")
	// ErrOwnerMismatch is returned when a payload names a different owner
	// than the authenticated identity.
	ErrOwnerMismatch = errors.New("task owner does not match authenticated user")
	// ErrEmptyUpdate is returned when a patch supplies no mutable fields.
	ErrEmptyUpdate = errors.New("no fields to update")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors. Store failures fall
// through to an opaque 500; query text never reaches the caller.
func MapErrorToHTTP(err error) *HTTPError {
	switch err {
	case ErrTaskNotFound:
		return NewHTTPError(http.StatusNotFound, err.Error(), "TASK_NOT_FOUND")
	case ErrInvalidSortColumn:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_SORT_COLUMN")
	case ErrOwnerMismatch:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "OWNER_MISMATCH")
	case ErrEmptyUpdate:
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMPTY_UPDATE")
	default:
		return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
	}
}
