package marketplaces

import (
	"context"
	"fmt"
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

// trendyolBaseURL is the supplier gateway endpoint
const trendyolBaseURL = "https://api.trendyol.com/sapigw"

// TrendyolAdapter talks to the Trendyol supplier API with static Basic
// credentials. Listings are keyed by barcode.
type TrendyolAdapter struct {
	creds  *marketplace.TrendyolCredentials
	client *apiClient
	logger *zap.Logger
}

// NewTrendyolAdapter creates a TrendyolAdapter. Credentials are validated
// exhaustively up front; missing fields surface as *ConfigError.
func NewTrendyolAdapter(creds *marketplace.TrendyolCredentials, opts Options, logger *zap.Logger) (*TrendyolAdapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults(trendyolBaseURL)

	a := &TrendyolAdapter{creds: creds, logger: logger}
	a.client = newAPIClient(
		marketplace.CodeTrendyol,
		opts.BaseURL,
		opts.HTTPClient,
		ratelimit.NewWindowLimiter(opts.MaxRequests, opts.Window),
		signer.NewBasicSigner(creds.APIKey, creds.APISecret),
		logger,
	)
	a.client.reauth = a.Authenticate
	return a, nil
}

var _ marketplace.Adapter = (*TrendyolAdapter)(nil)

// Marketplace returns the code this adapter handles
func (a *TrendyolAdapter) Marketplace() marketplace.Code {
	return marketplace.CodeTrendyol
}

// Authenticate verifies the credentials with a minimal supplier query
func (a *TrendyolAdapter) Authenticate(ctx context.Context) error {
	query := url.Values{}
	query.Set("page", "0")
	query.Set("size", "1")
	return a.client.authenticate(ctx, callParams{
		operation: "authenticate",
		method:    http.MethodGet,
		path:      a.supplierPath("/products"),
		query:     query,
	})
}

// supplierPath prefixes a path with the supplier scope
func (a *TrendyolAdapter) supplierPath(suffix string) string {
	return "/suppliers/" + a.creds.SupplierID + suffix
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// ListProducts retrieves a page of the supplier's listings. Trendyol pages
// are zero-indexed on the wire.
func (a *TrendyolAdapter) ListProducts(ctx context.Context, query marketplace.ProductQuery) (*marketplace.ProductPage, error) {
	query.Normalize()

	params := url.Values{}
	params.Set("page", strconv.Itoa(query.Page-1))
	params.Set("size", strconv.Itoa(query.PageSize))
	if query.UpdatedAfter != nil {
		params.Set("startDate", strconv.FormatInt(query.UpdatedAfter.UnixMilli(), 10))
	}

	var page trendyolProductPage
	if err := a.client.call(ctx, callParams{
		operation: "list_products",
		method:    http.MethodGet,
		path:      a.supplierPath("/products"),
		query:     params,
		out:       &page,
	}); err != nil {
		return nil, err
	}

	result := &marketplace.ProductPage{
		TotalCount: page.TotalElements,
		HasMore:    page.Page+1 < page.TotalPages,
	}
	for i := range page.Content {
		result.Products = append(result.Products, page.Content[i].toDomain())
	}
	return result, nil
}

// CreateProduct submits a new listing. Trendyol keys listings by barcode,
// which doubles as the target identifier.
func (a *TrendyolAdapter) CreateProduct(ctx context.Context, product *marketplace.Product) (string, error) {
	payload := map[string]interface{}{
		"items": []trendyolProduct{trendyolProductFromDomain(product)},
	}
	if err := a.client.call(ctx, callParams{
		operation: "create_product",
		method:    http.MethodPost,
		path:      a.supplierPath("/v2/products"),
		body:      payload,
	}); err != nil {
		return "", err
	}
	if product.Barcode != "" {
		return product.Barcode, nil
	}
	return product.TargetID, nil
}

// UpdateProduct upserts an existing listing
func (a *TrendyolAdapter) UpdateProduct(ctx context.Context, product *marketplace.Product) error {
	payload := map[string]interface{}{
		"items": []trendyolProduct{trendyolProductFromDomain(product)},
	}
	return a.client.call(ctx, callParams{
		operation: "update_product",
		method:    http.MethodPut,
		path:      a.supplierPath("/v2/products"),
		body:      payload,
	})
}

// DeleteProduct removes a listing by barcode
func (a *TrendyolAdapter) DeleteProduct(ctx context.Context, targetID string) error {
	payload := map[string]interface{}{
		"items": []map[string]string{{"barcode": targetID}},
	}
	return a.client.call(ctx, callParams{
		operation: "delete_product",
		method:    http.MethodDelete,
		path:      a.supplierPath("/v2/products"),
		body:      payload,
	})
}

// UpdateStock sets the available quantity for a listing
func (a *TrendyolAdapter) UpdateStock(ctx context.Context, targetID string, stock decimal.Decimal) error {
	quantity := stock.IntPart()
	return a.client.call(ctx, callParams{
		operation: "update_stock",
		method:    http.MethodPost,
		path:      a.supplierPath("/products/price-and-inventory"),
		body: trendyolPriceInventoryRequest{Items: []trendyolPriceInventoryItem{
			{Barcode: targetID, Quantity: &quantity},
		}},
	})
}

// UpdatePrice sets the selling price for a listing
func (a *TrendyolAdapter) UpdatePrice(ctx context.Context, targetID string, price decimal.Decimal) error {
	salePrice := price.InexactFloat64()
	return a.client.call(ctx, callParams{
		operation: "update_price",
		method:    http.MethodPost,
		path:      a.supplierPath("/products/price-and-inventory"),
		body: trendyolPriceInventoryRequest{Items: []trendyolPriceInventoryItem{
			{Barcode: targetID, SalePrice: &salePrice, ListPrice: &salePrice},
		}},
	})
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// ListOrders pulls shipment packages within the query window
func (a *TrendyolAdapter) ListOrders(ctx context.Context, query marketplace.OrderQuery) (*marketplace.OrderPage, error) {
	query.Normalize(time.Now())

	params := url.Values{}
	params.Set("startDate", strconv.FormatInt(query.StartTime.UnixMilli(), 10))
	params.Set("endDate", strconv.FormatInt(query.EndTime.UnixMilli(), 10))
	params.Set("page", strconv.Itoa(query.Page-1))
	params.Set("size", strconv.Itoa(query.PageSize))

	var page trendyolOrderPage
	if err := a.client.call(ctx, callParams{
		operation: "list_orders",
		method:    http.MethodGet,
		path:      a.supplierPath("/orders"),
		query:     params,
		out:       &page,
	}); err != nil {
		return nil, err
	}

	result := &marketplace.OrderPage{
		TotalCount: page.TotalElements,
		HasMore:    page.Page+1 < page.TotalPages,
	}
	for i := range page.Content {
		result.Orders = append(result.Orders, a.convertOrder(&page.Content[i]))
	}
	if query.Status != nil {
		filtered := result.Orders[:0]
		for _, order := range result.Orders {
			if order.Status == *query.Status {
				filtered = append(filtered, order)
			}
		}
		result.Orders = filtered
	}
	return result, nil
}

// convertOrder normalizes a shipment package to the canonical order shape
func (a *TrendyolAdapter) convertOrder(to *trendyolOrder) marketplace.Order {
	order := marketplace.Order{
		TargetID:    strconv.FormatInt(to.ID, 10),
		Marketplace: marketplace.CodeTrendyol,
		Status:      mapOrderStatus(trendyolOrderStatuses, to.Status, marketplace.CodeTrendyol, a.logger),
		BuyerName:   to.CustomerFirstName + " " + to.CustomerLastName,
		TotalAmount: decimal.NewFromFloat(to.TotalPrice),
		Currency:    to.CurrencyCode,
		CreatedAt:   time.UnixMilli(to.OrderDate),
	}
	for _, line := range to.Lines {
		order.Lines = append(order.Lines, marketplace.OrderLine{
			TargetID:  strconv.FormatInt(line.ID, 10),
			SKU:       line.MerchantSKU,
			Title:     line.ProductName,
			Quantity:  decimal.NewFromInt(line.Quantity),
			UnitPrice: decimal.NewFromFloat(line.Price),
		})
	}
	return order
}

// UpdateOrderStatus pushes a status change for a shipment package
func (a *TrendyolAdapter) UpdateOrderStatus(ctx context.Context, orderID string, status marketplace.OrderStatus) error {
	vendorStatus, ok := trendyolOutboundStatuses[status]
	if !ok {
		return &marketplace.APIError{
			Code:        marketplace.CodeVendorError,
			Message:     fmt.Sprintf("status %q cannot be pushed to trendyol", status),
			Operation:   "update_order_status",
			Marketplace: marketplace.CodeTrendyol,
		}
	}
	return a.client.call(ctx, callParams{
		operation: "update_order_status",
		method:    http.MethodPut,
		path:      a.supplierPath("/shipment-packages/" + orderID),
		body:      trendyolStatusUpdate{Status: vendorStatus},
	})
}

// ---------------------------------------------------------------------------
// Catalog and Batch Operations
// ---------------------------------------------------------------------------

// ListCategories retrieves the category tree, flattened
func (a *TrendyolAdapter) ListCategories(ctx context.Context) ([]marketplace.Category, error) {
	var tree trendyolCategoryTree
	if err := a.client.call(ctx, callParams{
		operation: "list_categories",
		method:    http.MethodGet,
		path:      "/product-categories",
		out:       &tree,
	}); err != nil {
		return nil, err
	}

	var categories []marketplace.Category
	var flatten func(nodes []trendyolCategory, parentID string)
	flatten = func(nodes []trendyolCategory, parentID string) {
		for _, node := range nodes {
			id := strconv.FormatInt(node.ID, 10)
			categories = append(categories, marketplace.Category{
				ID:       id,
				Name:     node.Name,
				ParentID: parentID,
			})
			flatten(node.SubCategories, id)
		}
	}
	flatten(tree.Categories, "")
	return categories, nil
}

// BatchUpdatePricesAndStock applies the items with per-item failure isolation
func (a *TrendyolAdapter) BatchUpdatePricesAndStock(ctx context.Context, items []marketplace.BatchItem) (*marketplace.BatchResult, error) {
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
func (a *TrendyolAdapter) LastRequestAt() time.Time {
	return a.client.lastRequestAt()
}

// Close releases adapter resources
func (a *TrendyolAdapter) Close() error {
	return nil
}
