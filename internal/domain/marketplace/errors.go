package marketplace

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ---------------------------------------------------------------------------
// Sentinel Errors
// ---------------------------------------------------------------------------

var (
	// ErrCredentialsNotFound indicates neither a tenant credential record nor
	// an operator default exists for the requested marketplace
	ErrCredentialsNotFound = errors.New("marketplace: credentials not found")
	// ErrAdapterNotSupported indicates no adapter implementation is registered
	// for the marketplace code
	ErrAdapterNotSupported = errors.New("marketplace: adapter not supported")
	// ErrInvalidTenantID indicates a nil or malformed tenant ID
	ErrInvalidTenantID = errors.New("marketplace: invalid tenant ID")
	// ErrInvalidMarketplaceCode indicates an unknown marketplace code
	ErrInvalidMarketplaceCode = errors.New("marketplace: invalid marketplace code")
	// ErrAuthenticationFailed indicates the vendor rejected our credentials
	// even after the single silent re-authentication attempt
	ErrAuthenticationFailed = errors.New("marketplace: authentication failed")
	// ErrEmptyBatch indicates a batch operation was invoked with no items
	ErrEmptyBatch = errors.New("marketplace: batch contains no items")
)

// ---------------------------------------------------------------------------
// Normalized API error envelope
// ---------------------------------------------------------------------------

// Reserved error codes carried by APIError
const (
	// CodeRateLimited is set when the vendor returned HTTP 429. The local
	// limiter never produces this; it waits instead of failing.
	CodeRateLimited = "RATE_LIMIT_EXCEEDED"
	// CodeAuthFailed is set when the vendor returned HTTP 401. Receiving it
	// forces the adapter back to the unauthenticated state.
	CodeAuthFailed = "AUTHENTICATION_FAILED"
	// CodeVendorError is the generic 4xx/5xx passthrough code
	CodeVendorError = "VENDOR_API_ERROR"
)

// APIError is the normalized error envelope surfaced by every adapter call.
// It carries enough context for a caller to distinguish bad credentials from
// vendor outages from local over-asking.
type APIError struct {
	// Code is one of the reserved codes above or a vendor-specific code
	Code string
	// Message is a human-readable description
	Message string
	// Details carries the raw vendor response fragment, if any
	Details string
	// Operation names the adapter operation that failed (e.g. "UpdatePrice")
	Operation string
	// Marketplace identifies the vendor the call targeted
	Marketplace Code
	// HTTPStatus is the vendor HTTP status, when the failure was HTTP-level
	HTTPStatus int
	// RetryAfter is the vendor's retry hint for rate-limited calls
	RetryAfter time.Duration
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %s: %s", e.Marketplace, e.Operation, e.Code, e.Message)
}

// IsRateLimited returns true if the vendor throttled the call
func (e *APIError) IsRateLimited() bool {
	return e.Code == CodeRateLimited
}

// IsAuthFailure returns true if the vendor rejected our credentials
func (e *APIError) IsAuthFailure() bool {
	return e.Code == CodeAuthFailed
}

// AsAPIError unwraps err into an *APIError if possible
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// ---------------------------------------------------------------------------
// Configuration error
// ---------------------------------------------------------------------------

// ConfigError indicates a credential set is missing required fields for a
// marketplace. It is raised at adapter construction time and is never retried.
type ConfigError struct {
	// Marketplace identifies which adapter rejected the credentials
	Marketplace Code
	// Missing lists the absent required fields
	Missing []string
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("%s: missing required credential fields: %s",
		e.Marketplace, strings.Join(e.Missing, ", "))
}

// NewConfigError creates a ConfigError for the given marketplace and fields
func NewConfigError(code Code, missing ...string) *ConfigError {
	return &ConfigError{Marketplace: code, Missing: missing}
}

// AsConfigError unwraps err into a *ConfigError if possible
func AsConfigError(err error) (*ConfigError, bool) {
	var cfgErr *ConfigError
	if errors.As(err, &cfgErr) {
		return cfgErr, true
	}
	return nil, false
}
