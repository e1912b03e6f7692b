package dto

import "net/http"

// Transport-level error codes. Domain errors carry their own codes and are
// mapped to HTTP statuses below.
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "BAD_REQUEST"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "INTERNAL_ERROR"
	// ErrCodeNotFound is used when a route or resource is not found
	ErrCodeNotFound = "NOT_FOUND"
)

// errorCodeHTTPStatus maps domain and transport error codes to HTTP statuses.
// Lifecycle and locking conflicts map to 409; business rule rejections that a
// well-formed request can still hit map to 422.
var errorCodeHTTPStatus = map[string]int{
	"NOT_FOUND":            http.StatusNotFound,
	"ALREADY_EXISTS":       http.StatusConflict,
	"INVALID_TRANSITION":   http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"INSUFFICIENT_STOCK":   http.StatusUnprocessableEntity,
	"QUANTITY_EXCEEDED":    http.StatusUnprocessableEntity,
	"REFERENCE_INTEGRITY":  http.StatusUnprocessableEntity,
	"INVALID_INPUT":        http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code. Unknown codes
// are treated as business rule rejections.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusUnprocessableEntity
}
