package signer

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Reference vector from the published SigV4 test suite ("get-vanilla"):
// GET / against example.amazonaws.com at 2015-08-30T12:36:00Z with the
// documented example credentials.
func TestCanonicalSigner_ReferenceVector(t *testing.T) {
	s := NewCanonicalSigner(
		"AKIDEXAMPLE",
		"wJalrXUtnFEMI/K7MDENG+bPxRfiCYEXAMPLEKEY",
		"us-east-1",
		"service",
	)
	s.now = func() time.Time {
		return time.Date(2015, 8, 30, 12, 36, 0, 0, time.UTC)
	}

	req, err := http.NewRequest(http.MethodGet, "https://example.amazonaws.com/", nil)
	require.NoError(t, err)

	require.NoError(t, s.Sign(context.Background(), req))

	assert.Equal(t, "20150830T123600Z", req.Header.Get("X-Amz-Date"))
	assert.Equal(t,
		"AWS4-HMAC-SHA256 Credential=AKIDEXAMPLE/20150830/us-east-1/service/aws4_request, "+
			"SignedHeaders=host;x-amz-date, "+
			"Signature=5fa00fa31553b73ebf1942676e86291e8372ff2a2260956d9b8aae1d763fbf31",
		req.Header.Get("Authorization"),
	)
}

func TestCanonicalSigner_Deterministic(t *testing.T) {
	fixed := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	newSigner := func() *CanonicalSigner {
		s := NewCanonicalSigner("AKIA123", "topsecret", "eu-west-1", "execute-api")
		s.now = func() time.Time { return fixed }
		return s
	}

	sign := func(url string) string {
		req, err := http.NewRequest(http.MethodGet, url, nil)
		require.NoError(t, err)
		require.NoError(t, newSigner().Sign(context.Background(), req))
		return req.Header.Get("Authorization")
	}

	first := sign("https://api.example.com/orders?status=shipped&page=2")
	second := sign("https://api.example.com/orders?status=shipped&page=2")
	assert.Equal(t, first, second)

	// Query parameter order on the wire must not change the signature
	reordered := sign("https://api.example.com/orders?page=2&status=shipped")
	assert.Equal(t, first, reordered)
}

func TestCanonicalSigner_SignsPayload(t *testing.T) {
	fixed := time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)
	sign := func(body string) string {
		s := NewCanonicalSigner("AKIA123", "topsecret", "eu-west-1", "execute-api")
		s.now = func() time.Time { return fixed }
		req, err := http.NewRequest(http.MethodPost, "https://api.example.com/products", nil)
		require.NoError(t, err)
		if body != "" {
			req, err = http.NewRequest(http.MethodPost, "https://api.example.com/products", reqBody(body))
			require.NoError(t, err)
		}
		require.NoError(t, s.Sign(context.Background(), req))
		return req.Header.Get("Authorization")
	}

	assert.NotEqual(t, sign(`{"sku":"A"}`), sign(`{"sku":"B"}`))
}

func TestURIEncode(t *testing.T) {
	assert.Equal(t, "a-b_c.d~e", uriEncode("a-b_c.d~e"))
	assert.Equal(t, "hello%20world", uriEncode("hello world"))
	assert.Equal(t, "100%25", uriEncode("100%"))
	assert.Equal(t, "a%2Fb", uriEncode("a/b"))
}
