// Package marketplaces contains the vendor adapter implementations. Each
// adapter is an independent struct satisfying marketplace.Adapter; the
// shared plumbing (rate limiting, signing, error normalization, the auth
// state machine) lives in apiClient and is composed in, not inherited.
package marketplaces

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/ratelimit"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/signer"
)

// maxResponseSize is the maximum allowed vendor response size (10MB)
const maxResponseSize = 10 * 1024 * 1024

// apiClient is the shared call path every adapter routes through: acquire
// the rate-limit budget, sign, execute, normalize the outcome. It also owns
// the adapter's auth state machine and last-request timestamp.
type apiClient struct {
	marketplace marketplace.Code
	baseURL     string
	httpClient  *http.Client
	limiter     *ratelimit.WindowLimiter
	signer      signer.RequestSigner
	logger      *zap.Logger

	// reauth re-establishes the session after a vendor 401. Invoked at most
	// once per call before the error is surfaced.
	reauth func(ctx context.Context) error
	// onAuthExpired drops cached auth material (e.g. a stale bearer token)
	// before reauth runs. Optional.
	onAuthExpired func(ctx context.Context)

	state    atomic.Int32
	lastUnix atomic.Int64
	now      func() time.Time
}

func newAPIClient(code marketplace.Code, baseURL string, httpClient *http.Client, limiter *ratelimit.WindowLimiter, reqSigner signer.RequestSigner, logger *zap.Logger) *apiClient {
	c := &apiClient{
		marketplace: code,
		baseURL:     baseURL,
		httpClient:  httpClient,
		limiter:     limiter,
		signer:      reqSigner,
		logger:      logger,
		now:         time.Now,
	}
	c.state.Store(int32(marketplace.AuthStateUnauthenticated))
	return c
}

func (c *apiClient) authState() marketplace.AuthState {
	return marketplace.AuthState(c.state.Load())
}

func (c *apiClient) setAuthState(s marketplace.AuthState) {
	c.state.Store(int32(s))
}

func (c *apiClient) lastRequestAt() time.Time {
	nanos := c.lastUnix.Load()
	if nanos == 0 {
		return time.Time{}
	}
	return time.Unix(0, nanos)
}

// callParams describes one vendor API call
type callParams struct {
	operation string
	method    string
	path      string
	query     url.Values
	body      interface{}
	out       interface{}
}

// call runs the full call path. A vendor 401 resets the auth state and is
// retried silently exactly once after re-authentication; a second 401
// surfaces as AUTHENTICATION_FAILED.
func (c *apiClient) call(ctx context.Context, p callParams) error {
	if err := c.limiter.Acquire(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait aborted: %w", c.marketplace, err)
	}

	err := c.attempt(ctx, p)
	apiErr, ok := marketplace.AsAPIError(err)
	if !ok || !apiErr.IsAuthFailure() {
		return err
	}

	c.setAuthState(marketplace.AuthStateUnauthenticated)
	if c.reauth == nil {
		return err
	}

	c.logger.Info("vendor rejected credentials, re-authenticating once",
		zap.String("marketplace", c.marketplace.String()),
		zap.String("operation", p.operation),
	)
	if c.onAuthExpired != nil {
		c.onAuthExpired(ctx)
	}
	if reauthErr := c.reauth(ctx); reauthErr != nil {
		return err
	}

	// The retry is a request of its own and spends window budget like any other
	if err := c.limiter.Acquire(ctx); err != nil {
		return fmt.Errorf("%s: rate limit wait aborted: %w", c.marketplace, err)
	}
	retryErr := c.attempt(ctx, p)
	if retryAPIErr, ok := marketplace.AsAPIError(retryErr); ok && retryAPIErr.IsAuthFailure() {
		c.setAuthState(marketplace.AuthStateUnauthenticated)
	}
	return retryErr
}

// authenticate drives the state machine through a session-establishing call.
// Unlike call it never retries on 401: a failed authentication surfaces
// directly. Idempotent when already authenticated.
func (c *apiClient) authenticate(ctx context.Context, p callParams) error {
	if c.authState() == marketplace.AuthStateAuthenticated {
		return nil
	}
	c.setAuthState(marketplace.AuthStateAuthenticating)

	if err := c.limiter.Acquire(ctx); err != nil {
		c.setAuthState(marketplace.AuthStateUnauthenticated)
		return fmt.Errorf("%s: rate limit wait aborted: %w", c.marketplace, err)
	}
	if err := c.attempt(ctx, p); err != nil {
		c.setAuthState(marketplace.AuthStateUnauthenticated)
		return err
	}
	c.setAuthState(marketplace.AuthStateAuthenticated)
	return nil
}

// attempt executes one signed request and normalizes the response
func (c *apiClient) attempt(ctx context.Context, p callParams) error {
	var bodyReader io.Reader
	if p.body != nil {
		payload, err := json.Marshal(p.body)
		if err != nil {
			return fmt.Errorf("%s: failed to encode request: %w", c.marketplace, err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL + p.path
	if len(p.query) > 0 {
		endpoint += "?" + p.query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, p.method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: failed to create request: %w", c.marketplace, err)
	}
	if p.body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	if err := c.signer.Sign(ctx, req); err != nil {
		return c.newError(p.operation, marketplace.CodeAuthFailed, "request signing failed", err.Error(), 0, 0)
	}

	c.lastUnix.Store(c.now().UnixNano())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.newError(p.operation, marketplace.CodeVendorError, "vendor unreachable", err.Error(), 0, 0)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return c.newError(p.operation, marketplace.CodeVendorError, "failed to read response", err.Error(), resp.StatusCode, 0)
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return c.newError(p.operation, marketplace.CodeRateLimited, "vendor rate limit exceeded",
			string(respBody), resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After")))

	case resp.StatusCode == http.StatusUnauthorized:
		return c.newError(p.operation, marketplace.CodeAuthFailed, "vendor rejected credentials",
			string(respBody), resp.StatusCode, 0)

	case resp.StatusCode >= 400:
		return c.newError(p.operation, marketplace.CodeVendorError,
			fmt.Sprintf("vendor returned HTTP %d", resp.StatusCode), string(respBody), resp.StatusCode, 0)
	}

	if p.out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, p.out); err != nil {
			return c.newError(p.operation, marketplace.CodeVendorError, "failed to decode response", err.Error(), resp.StatusCode, 0)
		}
	}
	return nil
}

func (c *apiClient) newError(operation, code, message, details string, status int, retryAfter time.Duration) *marketplace.APIError {
	return &marketplace.APIError{
		Code:        code,
		Message:     message,
		Details:     details,
		Operation:   operation,
		Marketplace: c.marketplace,
		HTTPStatus:  status,
		RetryAfter:  retryAfter,
	}
}

// parseRetryAfter parses a Retry-After header given in seconds
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
