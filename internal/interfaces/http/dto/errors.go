package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeValidation is used for request validation failures
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
)

// Gateway error codes
const (
	// ErrCodeCredentialsIncomplete is used when a credential set is missing
	// required fields for its marketplace
	ErrCodeCredentialsIncomplete = "ERR_CREDENTIALS_INCOMPLETE"
	// ErrCodeVendorAuth is used when the marketplace rejected our credentials
	ErrCodeVendorAuth = "ERR_VENDOR_AUTH"
	// ErrCodeVendorRateLimited is used when the marketplace throttled us
	ErrCodeVendorRateLimited = "ERR_VENDOR_RATE_LIMITED"
	// ErrCodeVendorError is used for other marketplace-side failures
	ErrCodeVendorError = "ERR_VENDOR_ERROR"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:   http.StatusInternalServerError,
	ErrCodeBadRequest: http.StatusBadRequest,
	ErrCodeValidation: http.StatusBadRequest,
	ErrCodeNotFound:   http.StatusNotFound,

	ErrCodeCredentialsIncomplete: http.StatusUnprocessableEntity,
	ErrCodeVendorAuth:            http.StatusBadGateway,
	ErrCodeVendorRateLimited:     http.StatusTooManyRequests,
	ErrCodeVendorError:           http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
