package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeCredentialsIncomplete, http.StatusUnprocessableEntity},
		{ErrCodeVendorAuth, http.StatusBadGateway},
		{ErrCodeVendorRateLimited, http.StatusTooManyRequests},
		{ErrCodeVendorError, http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestResponseSerialization(t *testing.T) {
	t.Run("success response omits error", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"id": "42"})

		payload, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"success":true`)
		assert.NotContains(t, string(payload), `"error"`)
	})

	t.Run("error response omits data", func(t *testing.T) {
		resp := NewErrorResponse(ErrCodeNotFound, "no such credential")

		payload, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"success":false`)
		assert.Contains(t, string(payload), ErrCodeNotFound)
		assert.NotContains(t, string(payload), `"data"`)
	})

	t.Run("details ride as a string list", func(t *testing.T) {
		resp := NewErrorResponseWithDetails(ErrCodeCredentialsIncomplete, "incomplete", []string{"api_secret", "supplier_id"})

		payload, err := json.Marshal(resp)
		require.NoError(t, err)
		assert.Contains(t, string(payload), `"details":["api_secret","supplier_id"]`)
	})
}
