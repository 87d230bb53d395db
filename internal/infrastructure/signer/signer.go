// Package signer implements the request signing strategies the marketplace
// adapters authenticate with. Each marketplace picks one strategy: static
// Basic auth, bearer tokens with single-flight refresh, canonical request
// signing, or shared-secret HMAC with a per-request timestamp.
package signer

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
)

// ErrRefreshFailed indicates a bearer token refresh grant was rejected
var ErrRefreshFailed = errors.New("signer: token refresh failed")

// RequestSigner attaches authentication material to an outgoing request.
// Implementations must be safe for concurrent use by multiple goroutines.
type RequestSigner interface {
	Sign(ctx context.Context, req *http.Request) error
}

// readBody drains and restores the request body so it can be hashed or
// signed without consuming it
func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil {
		return nil, nil
	}
	body, err := io.ReadAll(req.Body)
	if closeErr := req.Body.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, err
	}
	req.Body = io.NopCloser(bytes.NewReader(body))
	req.ContentLength = int64(len(body))
	return body, nil
}
