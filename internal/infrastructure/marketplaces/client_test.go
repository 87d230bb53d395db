package marketplaces

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/ratelimit"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/signer"
)

func newTestClient(t *testing.T, serverURL string) *apiClient {
	t.Helper()
	return newAPIClient(
		marketplace.CodeTrendyol,
		serverURL,
		http.DefaultClient,
		ratelimit.NewWindowLimiter(100, time.Second),
		signer.NewBasicSigner("user", "pass"),
		zap.NewNop(),
	)
}

func TestAPIClient_NormalizesRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.call(context.Background(), callParams{operation: "list_products", method: http.MethodGet, path: "/x"})

	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, marketplace.CodeRateLimited, apiErr.Code)
	assert.True(t, apiErr.IsRateLimited())
	assert.Equal(t, 7*time.Second, apiErr.RetryAfter)
	assert.Equal(t, "list_products", apiErr.Operation)
	assert.Equal(t, marketplace.CodeTrendyol, apiErr.Marketplace)
}

func TestAPIClient_NormalizesVendorError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.call(context.Background(), callParams{operation: "update_price", method: http.MethodPost, path: "/x"})

	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, marketplace.CodeVendorError, apiErr.Code)
	assert.Equal(t, http.StatusInternalServerError, apiErr.HTTPStatus)
	assert.Contains(t, apiErr.Details, "boom")
}

func TestAPIClient_UnauthorizedResetsStateAndRetriesOnce(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.setAuthState(marketplace.AuthStateAuthenticated)

	var reauths atomic.Int32
	client.reauth = func(ctx context.Context) error {
		reauths.Add(1)
		client.setAuthState(marketplace.AuthStateAuthenticated)
		return nil
	}

	err := client.call(context.Background(), callParams{operation: "list_orders", method: http.MethodGet, path: "/x"})
	assert.NoError(t, err)
	assert.Equal(t, int32(1), reauths.Load())
	assert.Equal(t, int32(2), calls.Load())
}

func TestAPIClient_SecondUnauthorizedSurfaces(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.setAuthState(marketplace.AuthStateAuthenticated)
	client.reauth = func(ctx context.Context) error { return nil }

	err := client.call(context.Background(), callParams{operation: "list_orders", method: http.MethodGet, path: "/x"})

	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsAuthFailure())
	assert.Equal(t, marketplace.AuthStateUnauthenticated, client.authState())
}

func TestAPIClient_SecondUnauthorizedAfterRealReauthResetsState(t *testing.T) {
	// Auth endpoint accepts the session but every data call keeps returning
	// 401, e.g. credentials valid for login but lacking API scope
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/auth" {
			w.Write([]byte(`{}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.reauth = func(ctx context.Context) error {
		return client.authenticate(ctx, callParams{operation: "authenticate", method: http.MethodGet, path: "/auth"})
	}

	require.NoError(t, client.reauth(context.Background()))
	require.Equal(t, marketplace.AuthStateAuthenticated, client.authState())

	err := client.call(context.Background(), callParams{operation: "list_orders", method: http.MethodGet, path: "/orders"})

	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsAuthFailure())
	assert.Equal(t, marketplace.AuthStateUnauthenticated, client.authState())
}

func TestAPIClient_RetryAfterReauthSpendsWindowBudget(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	client.limiter = ratelimit.NewWindowLimiter(2, time.Hour)
	client.setAuthState(marketplace.AuthStateAuthenticated)
	client.reauth = func(ctx context.Context) error {
		client.setAuthState(marketplace.AuthStateAuthenticated)
		return nil
	}

	require.NoError(t, client.call(context.Background(), callParams{operation: "update_stock", method: http.MethodPost, path: "/x"}))
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, 0, client.limiter.Remaining())
}

func TestAPIClient_AuthenticateDrivesStateMachine(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.Equal(t, marketplace.AuthStateUnauthenticated, client.authState())

	require.NoError(t, client.authenticate(context.Background(), callParams{operation: "authenticate", method: http.MethodGet, path: "/x"}))
	assert.Equal(t, marketplace.AuthStateAuthenticated, client.authState())
}

func TestAPIClient_AuthenticateFailureResetsState(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	err := client.authenticate(context.Background(), callParams{operation: "authenticate", method: http.MethodGet, path: "/x"})

	require.Error(t, err)
	assert.Equal(t, marketplace.AuthStateUnauthenticated, client.authState())
}

func TestAPIClient_TracksLastRequest(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	assert.True(t, client.lastRequestAt().IsZero())

	require.NoError(t, client.call(context.Background(), callParams{operation: "x", method: http.MethodGet, path: "/x"}))
	assert.WithinDuration(t, time.Now(), client.lastRequestAt(), time.Second)
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, 30*time.Second, parseRetryAfter("30"))
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("not-a-number"))
}
