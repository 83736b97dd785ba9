package dto

import "net/http"

// Error codes surfaced by the API. Domain errors carry the same codes,
// so handlers can pass them through unchanged.
const (
	ErrCodeInternal        = "INTERNAL_ERROR"
	ErrCodeBadRequest      = "BAD_REQUEST"
	ErrCodeUnauthorized    = "UNAUTHORIZED"
	ErrCodeNotFound        = "NOT_FOUND"
	ErrCodeValidation      = "VALIDATION_FAILED"
	ErrCodeMissingField    = "MISSING_REQUIRED_FIELD"
	ErrCodeDuplicate       = "DUPLICATE_SUBMISSION"
	ErrCodeExternalService = "EXTERNAL_SERVICE"
	ErrCodeInvalidState    = "INVALID_STATE"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes
var errorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:     http.StatusInternalServerError,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeValidation:   http.StatusUnprocessableEntity,
	ErrCodeMissingField: http.StatusUnprocessableEntity,
	ErrCodeDuplicate:    http.StatusConflict,
	// The upstream failure is not the caller's fault.
	ErrCodeExternalService: http.StatusBadGateway,
	ErrCodeInvalidState:    http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
