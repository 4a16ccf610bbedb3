package dto

import "net/http"

// General error codes
const (
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeBadRequest = "BAD_REQUEST"
)

// Authentication error codes
const (
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeTokenExpired = "TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "TOKEN_INVALID"
)

// Resource and state error codes, as raised by the domain layer
const (
	ErrCodeNotFound               = "NOT_FOUND"
	ErrCodeAlreadyExists          = "ALREADY_EXISTS"
	ErrCodeInvalidInput           = "INVALID_INPUT"
	ErrCodeInvalidGSTIN           = "INVALID_GSTIN"
	ErrCodeInvalidState           = "INVALID_STATE"
	ErrCodeConcurrentModification = "CONCURRENT_MODIFICATION"
	ErrCodeIRNAlreadyGenerated    = "IRN_ALREADY_GENERATED"
	ErrCodeIRNAlreadyCancelled    = "IRN_ALREADY_CANCELLED"
	ErrCodeIRNNotGenerated        = "IRN_NOT_GENERATED"
)

// E-invoice gateway error codes
const (
	ErrCodeNotConfigured       = "EINVOICE_NOT_CONFIGURED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamRejected    = "UPSTREAM_REJECTED"
	ErrCodePersistenceFailed   = "PERSISTENCE_FAILED"
	ErrCodeDatabaseUnavailable = "DATABASE_UNAVAILABLE"
)

// Transport error codes
const (
	ErrCodeRequestTooLarge = "REQUEST_TOO_LARGE"
	ErrCodeRateLimited     = "RATE_LIMIT_EXCEEDED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeBadRequest: http.StatusBadRequest,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,

	ErrCodeNotFound:               http.StatusNotFound,
	ErrCodeAlreadyExists:          http.StatusConflict,
	ErrCodeInvalidInput:           http.StatusBadRequest,
	ErrCodeInvalidGSTIN:           http.StatusBadRequest,
	ErrCodeInvalidState:           http.StatusConflict,
	ErrCodeConcurrentModification: http.StatusConflict,
	ErrCodeIRNAlreadyGenerated:    http.StatusConflict,
	ErrCodeIRNAlreadyCancelled:    http.StatusConflict,
	ErrCodeIRNNotGenerated:        http.StatusConflict,

	ErrCodeNotConfigured:       http.StatusServiceUnavailable,
	ErrCodeUpstreamUnavailable: http.StatusBadGateway,
	ErrCodeUpstreamRejected:    http.StatusUnprocessableEntity,
	ErrCodePersistenceFailed:   http.StatusInternalServerError,
	ErrCodeDatabaseUnavailable: http.StatusServiceUnavailable,

	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes map to 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode returns code when it is a known API error code and
// INTERNAL_ERROR otherwise, so internal codes never leak to clients.
func NormalizeErrorCode(code string) string {
	if _, ok := ErrorCodeHTTPStatus[code]; ok {
		return code
	}
	return ErrCodeInternal
}
