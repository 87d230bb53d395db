// Package cache provides shared token storage for vendor access tokens.
// Single-instance deployments use the in-memory store; distributed
// deployments share refreshed tokens through Redis so each instance does
// not burn a refresh grant of its own.
package cache

import (
	"context"
	"time"
)

// Token is a vendor-issued access token with its absolute expiry
type Token struct {
	AccessToken string    `json:"access_token"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Valid reports whether the token is usable at the given instant with the
// given safety margin before expiry
func (t Token) Valid(now time.Time, margin time.Duration) bool {
	return t.AccessToken != "" && now.Before(t.ExpiresAt.Add(-margin))
}

// TokenStore stores vendor access tokens keyed by credential identity
type TokenStore interface {
	// Get returns the stored token for the key. The second return is false
	// when no token is stored.
	Get(ctx context.Context, key string) (Token, bool, error)

	// Put stores the token under the key until its expiry
	Put(ctx context.Context, key string, token Token) error

	// Delete removes the stored token for the key
	Delete(ctx context.Context, key string) error

	// Close releases store resources
	Close() error
}
