package dto

import "net/http"

// Error code constants
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeValidation   = "ERR_VALIDATION"
)

// Resource error codes
const (
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for the
	// current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeAllocationConflict is used when a meter registration or update
	// would double-cover a unit
	ErrCodeAllocationConflict = "ERR_ALLOCATION_CONFLICT"
	// ErrCodeInvoicingUnavailable is used when invoice generation is
	// requested without a configured gateway
	ErrCodeInvoicingUnavailable = "ERR_INVOICING_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,

	ErrCodeInvalidState:         http.StatusUnprocessableEntity,
	ErrCodeAllocationConflict:   http.StatusUnprocessableEntity,
	ErrCodeInvoicingUnavailable: http.StatusUnprocessableEntity,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to standardized API codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"INVOICING_UNAVAILABLE": ErrCodeInvoicingUnavailable,

	"INVALID_UTILITY_TYPE":   ErrCodeInvalidInput,
	"INVALID_UNIT":           ErrCodeInvalidInput,
	"INVALID_ALLOCATION":     ErrCodeInvalidInput,
	"INVALID_METER":          ErrCodeInvalidInput,
	"INVALID_METER_NUMBER":   ErrCodeInvalidInput,
	"INVALID_NAME":           ErrCodeInvalidInput,
	"INVALID_LOCATION":       ErrCodeInvalidInput,
	"INVALID_READING_VALUE":  ErrCodeInvalidInput,
	"INVALID_READING_DATE":   ErrCodeInvalidInput,
	"INVALID_RATE":           ErrCodeInvalidInput,
	"INVALID_FIXED_CHARGE":   ErrCodeInvalidInput,
	"INVALID_CURRENCY":       ErrCodeInvalidInput,
	"INVALID_EFFECTIVE_FROM": ErrCodeInvalidInput,
	"INVALID_EFFECTIVE_TO":   ErrCodeInvalidInput,
	"INVALID_PERIOD":         ErrCodeInvalidInput,
}

// NormalizeErrorCode converts a domain error code to the standardized API
// format. Unknown codes are returned as-is.
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
