package signer

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/cache"
)

// defaultRefreshMargin is how long before expiry a token is refreshed
// proactively, so in-flight requests never carry a token about to lapse
const defaultRefreshMargin = 60 * time.Second

// TokenSource exchanges a refresh grant for a fresh access token
type TokenSource interface {
	RefreshToken(ctx context.Context) (cache.Token, error)
}

// BearerSigner attaches a bearer token, refreshing it through the TokenSource
// when missing or near expiry. Concurrent callers awaiting a refresh share
// one in-flight exchange instead of issuing parallel grants.
type BearerSigner struct {
	source TokenSource
	store  cache.TokenStore
	key    string
	margin time.Duration
	group  singleflight.Group
	logger *zap.Logger
	now    func() time.Time
}

// NewBearerSigner creates a BearerSigner. The key identifies the credential
// set inside the token store so distinct tenants never share tokens.
func NewBearerSigner(source TokenSource, store cache.TokenStore, key string, logger *zap.Logger) *BearerSigner {
	return &BearerSigner{
		source: source,
		store:  store,
		key:    key,
		margin: defaultRefreshMargin,
		logger: logger,
		now:    time.Now,
	}
}

var _ RequestSigner = (*BearerSigner)(nil)

// Sign attaches "Authorization: Bearer <token>", refreshing first if needed
func (s *BearerSigner) Sign(ctx context.Context, req *http.Request) error {
	token, err := s.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	return nil
}

// Token returns a usable access token, refreshing if needed. Exposed for
// schemes that carry the token in a non-standard header.
func (s *BearerSigner) Token(ctx context.Context) (cache.Token, error) {
	return s.currentToken(ctx)
}

// Invalidate drops the stored token, forcing a refresh on the next Sign.
// Called when the vendor rejects a request with 401.
func (s *BearerSigner) Invalidate(ctx context.Context) error {
	return s.store.Delete(ctx, s.key)
}

// currentToken returns a usable token, refreshing through singleflight when
// the stored one is missing or inside the expiry margin
func (s *BearerSigner) currentToken(ctx context.Context) (cache.Token, error) {
	token, found, err := s.store.Get(ctx, s.key)
	if err == nil && found && token.Valid(s.now(), s.margin) {
		return token, nil
	}
	if err != nil {
		s.logger.Warn("bearer: token store read failed, refreshing",
			zap.Error(err),
		)
	}

	result, err, _ := s.group.Do(s.key, func() (interface{}, error) {
		// A concurrent caller may have refreshed while we waited
		if token, found, err := s.store.Get(ctx, s.key); err == nil && found && token.Valid(s.now(), s.margin) {
			return token, nil
		}

		fresh, err := s.source.RefreshToken(ctx)
		if err != nil {
			return cache.Token{}, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
		}
		if putErr := s.store.Put(ctx, s.key, fresh); putErr != nil {
			s.logger.Warn("bearer: failed to store refreshed token",
				zap.Error(putErr),
			)
		}
		s.logger.Debug("bearer: token refreshed",
			zap.Time("expires_at", fresh.ExpiresAt),
		)
		return fresh, nil
	})
	if err != nil {
		return cache.Token{}, err
	}
	return result.(cache.Token), nil
}
