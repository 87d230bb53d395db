package signer

import (
	"context"
	"net/http"
)

// BasicSigner attaches static Basic credentials. Stateless, no expiry.
type BasicSigner struct {
	username string
	password string
}

// NewBasicSigner creates a BasicSigner
func NewBasicSigner(username, password string) *BasicSigner {
	return &BasicSigner{username: username, password: password}
}

var _ RequestSigner = (*BasicSigner)(nil)

// Sign sets the Authorization header
func (s *BasicSigner) Sign(_ context.Context, req *http.Request) error {
	req.SetBasicAuth(s.username, s.password)
	return nil
}
