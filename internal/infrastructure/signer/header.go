package signer

import (
	"context"
	"net/http"
)

// HeaderSigner attaches a static token in a named header. Stateless, used
// by vendors that issue long-lived access tokens outside OAuth2.
type HeaderSigner struct {
	name  string
	value string
}

// NewHeaderSigner creates a HeaderSigner
func NewHeaderSigner(name, value string) *HeaderSigner {
	return &HeaderSigner{name: name, value: value}
}

var _ RequestSigner = (*HeaderSigner)(nil)

// Sign sets the configured header
func (s *HeaderSigner) Sign(_ context.Context, req *http.Request) error {
	req.Header.Set(s.name, s.value)
	return nil
}
