package marketplaces

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

func testAmazonCreds() *marketplace.AmazonCredentials {
	return &marketplace.AmazonCredentials{
		AccessKeyID:     "AKIAEXAMPLE",
		SecretAccessKey: "secret-key",
		SellerID:        "A1SELLER",
		RefreshToken:    "Atzr|refresh",
		ClientID:        "amzn1.application",
		ClientSecret:    "client-secret",
	}
}

// newAmazonForTest wires the adapter against a fake SP-API and a fake LWA
// token endpoint, returning the refresh-grant counter
func newAmazonForTest(t *testing.T, handler http.Handler) (*AmazonAdapter, *atomic.Int32) {
	t.Helper()

	var refreshes atomic.Int32
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		refreshes.Add(1)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
		assert.Equal(t, "Atzr|refresh", r.Form.Get("refresh_token"))
		json.NewEncoder(w).Encode(lwaTokenResponse{AccessToken: "lwa-token", ExpiresIn: 3600})
	}))
	t.Cleanup(tokenServer.Close)

	apiServer := httptest.NewServer(handler)
	t.Cleanup(apiServer.Close)

	adapter, err := NewAmazonAdapter(testAmazonCreds(), Options{
		BaseURL:     apiServer.URL,
		TokenURL:    tokenServer.URL,
		MaxRequests: 1000,
		Window:      time.Second,
	}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { adapter.Close() })
	return adapter, &refreshes
}

func TestAmazonAdapter_SignsEveryRequest(t *testing.T) {
	adapter, refreshes := newAmazonForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "lwa-token", r.Header.Get("x-amz-access-token"))
		auth := r.Header.Get("Authorization")
		assert.True(t, strings.HasPrefix(auth, "AWS4-HMAC-SHA256 Credential=AKIAEXAMPLE/"), auth)
		assert.Contains(t, auth, "SignedHeaders=")
		assert.NotEmpty(t, r.Header.Get("X-Amz-Date"))
		json.NewEncoder(w).Encode(amazonListingsPage{})
	}))

	_, err := adapter.ListProducts(context.Background(), marketplace.ProductQuery{})
	require.NoError(t, err)
	_, err = adapter.ListProducts(context.Background(), marketplace.ProductQuery{})
	require.NoError(t, err)

	// The token is cached after the first refresh grant
	assert.Equal(t, int32(1), refreshes.Load())
}

func TestAmazonAdapter_ListOrders_MapsStatuses(t *testing.T) {
	adapter, _ := newAmazonForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/v0/orders", r.URL.Path)
		assert.NotEmpty(t, r.URL.Query().Get("CreatedAfter"))

		var resp amazonOrdersResponse
		resp.Payload.Orders = []amazonOrder{
			{AmazonOrderID: "111-1", OrderStatus: "Unshipped", OrderTotal: amazonMoney{Amount: "42.50", CurrencyCode: "EUR"}},
			{AmazonOrderID: "111-2", OrderStatus: "Canceled"},
			{AmazonOrderID: "111-3", OrderStatus: "MysteryState"},
		}
		json.NewEncoder(w).Encode(resp)
	}))

	page, err := adapter.ListOrders(context.Background(), marketplace.OrderQuery{})
	require.NoError(t, err)

	require.Len(t, page.Orders, 3)
	assert.Equal(t, marketplace.OrderStatusConfirmed, page.Orders[0].Status)
	assert.Equal(t, "42.5", page.Orders[0].TotalAmount.String())
	assert.Equal(t, "EUR", page.Orders[0].Currency)
	assert.Equal(t, marketplace.OrderStatusCancelled, page.Orders[1].Status)
	assert.Equal(t, marketplace.OrderStatusPending, page.Orders[2].Status)
}

func TestAmazonAdapter_UpdateOrderStatus_OnlyShipment(t *testing.T) {
	adapter, _ := newAmazonForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/orders/v0/orders/111-1/shipmentConfirmation", r.URL.Path)
		w.Write([]byte(`{}`))
	}))

	require.NoError(t, adapter.UpdateOrderStatus(context.Background(), "111-1", marketplace.OrderStatusShipped))

	err := adapter.UpdateOrderStatus(context.Background(), "111-1", marketplace.OrderStatusConfirmed)
	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, marketplace.CodeVendorError, apiErr.Code)
}

func TestAmazonAdapter_CreateProduct_ReturnsSKU(t *testing.T) {
	adapter, _ := newAmazonForTest(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/listings/2021-08-01/items/A1SELLER/SKU-42", r.URL.Path)
		w.Write([]byte(`{}`))
	}))

	targetID, err := adapter.CreateProduct(context.Background(), &marketplace.Product{SKU: "SKU-42", Title: "Widget"})
	require.NoError(t, err)
	assert.Equal(t, "SKU-42", targetID)
}

func TestAmazonAdapter_InvalidGrantSurfacesAuthFailure(t *testing.T) {
	tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("API must not be reached without a token")
	}))
	defer apiServer.Close()

	adapter, err := NewAmazonAdapter(testAmazonCreds(), Options{
		BaseURL:  apiServer.URL,
		TokenURL: tokenServer.URL,
	}, zap.NewNop())
	require.NoError(t, err)
	defer adapter.Close()

	_, err = adapter.ListProducts(context.Background(), marketplace.ProductQuery{})
	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsAuthFailure())
}
