package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "INVALID_TOKEN"
)

// Resource error codes
const (
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAlreadyExists = "ALREADY_EXISTS"
	ErrCodeInvalidInput  = "INVALID_INPUT"
	ErrCodeInvalidState  = "INVALID_STATE"
)

// Dispensing error codes. These mirror the domain error codes so clients
// can branch on them without string matching on messages.
const (
	ErrCodeInsufficientStock    = "INSUFFICIENT_STOCK"
	ErrCodeNoStockAvailable     = "NO_STOCK_AVAILABLE"
	ErrCodeOverrideNotPermitted = "OVERRIDE_NOT_PERMITTED"
	ErrCodeExpiredBatchBlocked  = "EXPIRED_BATCH_BLOCKED"
	ErrCodeInvalidQuantity      = "INVALID_QUANTITY"
	ErrCodeExceedsAvailable     = "EXCEEDS_AVAILABLE"
	ErrCodeEmptyCart            = "EMPTY_CART"
	ErrCodeTransportFailure     = "TRANSPORT_FAILURE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeInvalidInput:  http.StatusBadRequest,
	ErrCodeInvalidState:  http.StatusUnprocessableEntity,

	ErrCodeInsufficientStock:    http.StatusUnprocessableEntity,
	ErrCodeNoStockAvailable:     http.StatusConflict,
	ErrCodeOverrideNotPermitted: http.StatusForbidden,
	ErrCodeExpiredBatchBlocked:  http.StatusUnprocessableEntity,
	ErrCodeInvalidQuantity:      http.StatusBadRequest,
	ErrCodeExceedsAvailable:     http.StatusUnprocessableEntity,
	ErrCodeEmptyCart:            http.StatusBadRequest,
	ErrCodeTransportFailure:     http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
