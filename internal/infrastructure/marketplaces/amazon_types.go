package marketplaces

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/cache"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/signer"
)

// lwaTokenURL is the login-with-amazon token endpoint
const lwaTokenURL = "https://api.amazon.com/auth/o2/token"

// amazonTokenHeader carries the LWA access token on SP-API calls
const amazonTokenHeader = "x-amz-access-token"

// amazonOrderStatuses maps the SP-API order vocabulary onto the canonical
// statuses
var amazonOrderStatuses = map[string]marketplace.OrderStatus{
	"Pending":             marketplace.OrderStatusPending,
	"PendingAvailability": marketplace.OrderStatusPending,
	"Unshipped":           marketplace.OrderStatusConfirmed,
	"PartiallyShipped":    marketplace.OrderStatusProcessing,
	"InvoiceUnconfirmed":  marketplace.OrderStatusProcessing,
	"Shipped":             marketplace.OrderStatusShipped,
	"Delivered":           marketplace.OrderStatusDelivered,
	"Canceled":            marketplace.OrderStatusCancelled,
	"Unfulfillable":       marketplace.OrderStatusCancelled,
}

// ---------------------------------------------------------------------------
// LWA Token Exchange
// ---------------------------------------------------------------------------

// lwaTokenSource exchanges the stored refresh token for access tokens
type lwaTokenSource struct {
	httpClient   *http.Client
	tokenURL     string
	clientID     string
	clientSecret string
	refreshToken string
}

var _ signer.TokenSource = (*lwaTokenSource)(nil)

// lwaTokenResponse is the token grant response
type lwaTokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

// RefreshToken performs the refresh-token grant
func (s *lwaTokenSource) RefreshToken(ctx context.Context) (cache.Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", s.refreshToken)
	form.Set("client_id", s.clientID)
	form.Set("client_secret", s.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return cache.Token{}, fmt.Errorf("lwa: failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return cache.Token{}, fmt.Errorf("lwa: token endpoint unreachable: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return cache.Token{}, fmt.Errorf("lwa: failed to read response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return cache.Token{}, fmt.Errorf("lwa: grant rejected with HTTP %d: %s", resp.StatusCode, body)
	}

	var token lwaTokenResponse
	if err := json.Unmarshal(body, &token); err != nil {
		return cache.Token{}, fmt.Errorf("lwa: failed to decode response: %w", err)
	}
	return cache.Token{
		AccessToken: token.AccessToken,
		ExpiresAt:   time.Now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}, nil
}

// ---------------------------------------------------------------------------
// Composite Signer
// ---------------------------------------------------------------------------

// amazonSigner attaches the LWA access token in its dedicated header and
// then applies the canonical request signature. The token header is set
// before signing so it is covered by the signature.
type amazonSigner struct {
	bearer    *signer.BearerSigner
	canonical *signer.CanonicalSigner
}

var _ signer.RequestSigner = (*amazonSigner)(nil)

func (s *amazonSigner) Sign(ctx context.Context, req *http.Request) error {
	token, err := s.bearer.Token(ctx)
	if err != nil {
		return err
	}
	req.Header.Set(amazonTokenHeader, token.AccessToken)
	return s.canonical.Sign(ctx, req)
}

// ---------------------------------------------------------------------------
// Wire Types
// ---------------------------------------------------------------------------

// amazonMoney is an amount with its currency
type amazonMoney struct {
	Amount       string `json:"Amount"`
	CurrencyCode string `json:"CurrencyCode"`
}

// amazonOrder is one order in the SP-API orders payload
type amazonOrder struct {
	AmazonOrderID string      `json:"AmazonOrderId"`
	OrderStatus   string      `json:"OrderStatus"`
	PurchaseDate  time.Time   `json:"PurchaseDate"`
	OrderTotal    amazonMoney `json:"OrderTotal"`
	BuyerInfo     struct {
		BuyerName string `json:"BuyerName"`
	} `json:"BuyerInfo"`
}

// amazonOrdersResponse is the orders listing envelope
type amazonOrdersResponse struct {
	Payload struct {
		Orders    []amazonOrder `json:"Orders"`
		NextToken string        `json:"NextToken"`
	} `json:"payload"`
}

// amazonListingsItem is one listing in the listings items API
type amazonListingsItem struct {
	SKU       string `json:"sku"`
	Summaries []struct {
		ItemName string   `json:"itemName"`
		ASIN     string   `json:"asin"`
		Status   []string `json:"status"`
	} `json:"summaries"`
}

// amazonListingsPage is the paged listings response
type amazonListingsPage struct {
	Items      []amazonListingsItem `json:"items"`
	Pagination struct {
		NextToken string `json:"nextToken"`
	} `json:"pagination"`
}

// amazonListingsPatch is a JSON-patch style listings update
type amazonListingsPatch struct {
	ProductType string               `json:"productType"`
	Patches     []amazonPatchElement `json:"patches"`
}

type amazonPatchElement struct {
	Op    string        `json:"op"`
	Path  string        `json:"path"`
	Value []interface{} `json:"value"`
}

// amazonShipmentConfirmation confirms an order shipment
type amazonShipmentConfirmation struct {
	PackageDetail struct {
		PackageReferenceID string `json:"packageReferenceId"`
	} `json:"packageDetail"`
}
