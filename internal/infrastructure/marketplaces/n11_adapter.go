package marketplaces

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/ratelimit"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/signer"
)

// n11BaseURL is the seller service endpoint
const n11BaseURL = "https://api.n11.com/ms"

// N11 HMAC header names
const (
	n11KeyHeader       = "X-N11-Api-Key"
	n11TimestampHeader = "X-N11-Timestamp"
	n11SignatureHeader = "X-N11-Signature"
)

// N11Adapter talks to the N11 seller API with shared-secret HMAC signing.
// Every request carries a fresh millisecond timestamp.
type N11Adapter struct {
	creds  *marketplace.N11Credentials
	client *apiClient
	logger *zap.Logger
}

// NewN11Adapter creates an N11Adapter
func NewN11Adapter(creds *marketplace.N11Credentials, opts Options, logger *zap.Logger) (*N11Adapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults(n11BaseURL)

	a := &N11Adapter{creds: creds, logger: logger}
	a.client = newAPIClient(
		marketplace.CodeN11,
		opts.BaseURL,
		opts.HTTPClient,
		ratelimit.NewWindowLimiter(opts.MaxRequests, opts.Window),
		signer.NewHMACSigner(creds.APIKey, creds.APISecret,
			signer.WithHeaderNames(n11KeyHeader, n11TimestampHeader, n11SignatureHeader)),
		logger,
	)
	a.client.reauth = a.Authenticate
	return a, nil
}

var _ marketplace.Adapter = (*N11Adapter)(nil)

// Marketplace returns the code this adapter handles
func (a *N11Adapter) Marketplace() marketplace.Code {
	return marketplace.CodeN11
}

// Authenticate verifies the key pair with a minimal catalog query
func (a *N11Adapter) Authenticate(ctx context.Context) error {
	query := url.Values{}
	query.Set("page", "1")
	query.Set("size", "1")
	return a.client.authenticate(ctx, callParams{
		operation: "authenticate",
		method:    http.MethodGet,
		path:      "/products",
		query:     query,
	})
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// ListProducts retrieves a page of the seller's listings
func (a *N11Adapter) ListProducts(ctx context.Context, query marketplace.ProductQuery) (*marketplace.ProductPage, error) {
	query.Normalize()

	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("size", strconv.Itoa(query.PageSize))

	var page n11ProductPage
	if err := a.client.call(ctx, callParams{
		operation: "list_products",
		method:    http.MethodGet,
		path:      "/products",
		query:     params,
		out:       &page,
	}); err != nil {
		return nil, err
	}

	result := &marketplace.ProductPage{
		TotalCount: page.TotalCount,
		HasMore:    page.Page < page.PageCount,
	}
	for i := range page.Products {
		result.Products = append(result.Products, page.Products[i].toDomain())
	}
	return result, nil
}

// CreateProduct creates a listing and returns its numeric identifier
func (a *N11Adapter) CreateProduct(ctx context.Context, product *marketplace.Product) (string, error) {
	var created n11Product
	if err := a.client.call(ctx, callParams{
		operation: "create_product",
		method:    http.MethodPost,
		path:      "/products",
		body:      n11ProductFromDomain(product),
		out:       &created,
	}); err != nil {
		return "", err
	}
	return formatInt(created.ID), nil
}

// UpdateProduct updates an existing listing
func (a *N11Adapter) UpdateProduct(ctx context.Context, product *marketplace.Product) error {
	return a.client.call(ctx, callParams{
		operation: "update_product",
		method:    http.MethodPut,
		path:      "/products/" + product.TargetID,
		body:      n11ProductFromDomain(product),
	})
}

// DeleteProduct removes a listing
func (a *N11Adapter) DeleteProduct(ctx context.Context, targetID string) error {
	return a.client.call(ctx, callParams{
		operation: "delete_product",
		method:    http.MethodDelete,
		path:      "/products/" + targetID,
	})
}

// UpdateStock sets the available quantity for a listing
func (a *N11Adapter) UpdateStock(ctx context.Context, targetID string, stock decimal.Decimal) error {
	return a.client.call(ctx, callParams{
		operation: "update_stock",
		method:    http.MethodPut,
		path:      "/products/" + targetID + "/stock",
		body:      map[string]interface{}{"quantity": stock.IntPart()},
	})
}

// UpdatePrice sets the selling price for a listing
func (a *N11Adapter) UpdatePrice(ctx context.Context, targetID string, price decimal.Decimal) error {
	return a.client.call(ctx, callParams{
		operation: "update_price",
		method:    http.MethodPut,
		path:      "/products/" + targetID + "/price",
		body:      map[string]interface{}{"salePrice": price.InexactFloat64()},
	})
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// ListOrders pulls orders within the query window
func (a *N11Adapter) ListOrders(ctx context.Context, query marketplace.OrderQuery) (*marketplace.OrderPage, error) {
	query.Normalize(time.Now())

	params := url.Values{}
	params.Set("startDate", query.StartTime.Format(time.RFC3339))
	params.Set("endDate", query.EndTime.Format(time.RFC3339))
	params.Set("page", strconv.Itoa(query.Page))
	params.Set("size", strconv.Itoa(query.PageSize))

	var page n11OrderPage
	if err := a.client.call(ctx, callParams{
		operation: "list_orders",
		method:    http.MethodGet,
		path:      "/orders",
		query:     params,
		out:       &page,
	}); err != nil {
		return nil, err
	}

	result := &marketplace.OrderPage{
		TotalCount: page.TotalCount,
		HasMore:    page.Page < page.PageCount,
	}
	for i := range page.Orders {
		order := a.convertOrder(&page.Orders[i])
		if query.Status != nil && order.Status != *query.Status {
			continue
		}
		result.Orders = append(result.Orders, order)
	}
	return result, nil
}

// convertOrder normalizes a vendor order to the canonical shape
func (a *N11Adapter) convertOrder(no *n11Order) marketplace.Order {
	order := marketplace.Order{
		TargetID:    formatInt(no.ID),
		Marketplace: marketplace.CodeN11,
		Status:      mapOrderStatus(n11OrderStatuses, no.Status, marketplace.CodeN11, a.logger),
		BuyerName:   no.BuyerName,
		TotalAmount: decimal.NewFromFloat(no.TotalAmount),
		Currency:    no.Currency,
		CreatedAt:   no.CreatedAt,
	}
	for _, item := range no.Items {
		order.Lines = append(order.Lines, marketplace.OrderLine{
			TargetID:  formatInt(item.ID),
			SKU:       item.SellerCode,
			Title:     item.Title,
			Quantity:  decimal.NewFromInt(item.Quantity),
			UnitPrice: decimal.NewFromFloat(item.Price),
		})
	}
	return order
}

// UpdateOrderStatus pushes a status change
func (a *N11Adapter) UpdateOrderStatus(ctx context.Context, orderID string, status marketplace.OrderStatus) error {
	vendorStatus, ok := n11OutboundStatuses[status]
	if !ok {
		return &marketplace.APIError{
			Code:        marketplace.CodeVendorError,
			Message:     "status " + status.String() + " cannot be pushed to n11",
			Operation:   "update_order_status",
			Marketplace: marketplace.CodeN11,
		}
	}
	return a.client.call(ctx, callParams{
		operation: "update_order_status",
		method:    http.MethodPut,
		path:      "/orders/" + orderID + "/status",
		body:      map[string]string{"status": vendorStatus},
	})
}

// ---------------------------------------------------------------------------
// Catalog and Batch Operations
// ---------------------------------------------------------------------------

// ListCategories retrieves the category list
func (a *N11Adapter) ListCategories(ctx context.Context) ([]marketplace.Category, error) {
	var list n11CategoryList
	if err := a.client.call(ctx, callParams{
		operation: "list_categories",
		method:    http.MethodGet,
		path:      "/categories",
		out:       &list,
	}); err != nil {
		return nil, err
	}

	categories := make([]marketplace.Category, 0, len(list.Categories))
	for _, category := range list.Categories {
		node := marketplace.Category{
			ID:   formatInt(category.ID),
			Name: category.Name,
		}
		if category.ParentID != 0 {
			node.ParentID = formatInt(category.ParentID)
		}
		categories = append(categories, node)
	}
	return categories, nil
}

// BatchUpdatePricesAndStock applies the items with per-item failure isolation
func (a *N11Adapter) BatchUpdatePricesAndStock(ctx context.Context, items []marketplace.BatchItem) (*marketplace.BatchResult, error) {
	return applyBatchItems(ctx, items,
		func(ctx context.Context, item marketplace.BatchItem) error {
			return a.UpdatePrice(ctx, item.TargetID, *item.Price)
		},
		func(ctx context.Context, item marketplace.BatchItem) error {
			return a.UpdateStock(ctx, item.TargetID, *item.Stock)
		},
	)
}

// LastRequestAt reports when the adapter last issued a vendor call
func (a *N11Adapter) LastRequestAt() time.Time {
	return a.client.lastRequestAt()
}

// Close releases adapter resources
func (a *N11Adapter) Close() error {
	return nil
}
