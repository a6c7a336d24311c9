package dto

import "net/http"

// API error codes. Codes are part of the wire contract: clients switch on
// them, so values never change once published.
const (
	// Client-side problems.
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeValidation   = "ERR_VALIDATION"

	// Resource state.
	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	// Domain rules. Requests that parse fine but the business rejects.
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	ErrCodeBusinessRule = "ERR_BUSINESS_RULE"

	// Throttling.
	ErrCodeRateLimited = "ERR_RATE_LIMITED"

	// Server-side failures.
	ErrCodeInternal    = "ERR_INTERNAL"
	ErrCodeUnavailable = "ERR_UNAVAILABLE"
)

// errorCodeStatus pairs every catalog code with the HTTP status it rides on.
var errorCodeStatus = map[string]int{
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState: http.StatusUnprocessableEntity,
	ErrCodeBusinessRule: http.StatusUnprocessableEntity,

	ErrCodeRateLimited: http.StatusTooManyRequests,

	ErrCodeInternal:    http.StatusInternalServerError,
	ErrCodeUnavailable: http.StatusServiceUnavailable,
}

// GetHTTPStatus resolves the HTTP status for an API error code. Codes
// outside the catalog resolve to 500.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCode translates the domain error vocabulary into catalog codes.
// The domain keeps its own names; this table is the single point where the
// two vocabularies meet.
var domainErrorCode = map[string]string{
	"NOT_FOUND":        ErrCodeNotFound,
	"CONFLICT":         ErrCodeConflict,
	"INVALID_INPUT":    ErrCodeInvalidInput,
	"CONNECTION_ERROR": ErrCodeUnavailable,
	"STORAGE_ERROR":    ErrCodeInternal,
	"EVENT_HANDLING":   ErrCodeInternal,
}

// NormalizeErrorCode maps a domain error code onto the API catalog. Codes
// already in catalog form, and unknown codes, pass through unchanged.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := domainErrorCode[code]; ok {
		return apiCode
	}
	return code
}
