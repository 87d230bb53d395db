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

// shopifyAPIVersion pins the admin API version
const shopifyAPIVersion = "2024-01"

// shopifyTokenHeader carries the shop access token
const shopifyTokenHeader = "X-Shopify-Access-Token"

// ShopifyAdapter talks to the Shopify admin API with a static shop access
// token. The endpoint is derived from the shop domain.
type ShopifyAdapter struct {
	creds  *marketplace.ShopifyCredentials
	client *apiClient
	logger *zap.Logger
}

// NewShopifyAdapter creates a ShopifyAdapter
func NewShopifyAdapter(creds *marketplace.ShopifyCredentials, opts Options, logger *zap.Logger) (*ShopifyAdapter, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults("https://" + creds.ShopDomain + "/admin/api/" + shopifyAPIVersion)

	a := &ShopifyAdapter{creds: creds, logger: logger}
	a.client = newAPIClient(
		marketplace.CodeShopify,
		opts.BaseURL,
		opts.HTTPClient,
		ratelimit.NewWindowLimiter(opts.MaxRequests, opts.Window),
		signer.NewHeaderSigner(shopifyTokenHeader, creds.AccessToken),
		logger,
	)
	a.client.reauth = a.Authenticate
	return a, nil
}

var _ marketplace.Adapter = (*ShopifyAdapter)(nil)

// Marketplace returns the code this adapter handles
func (a *ShopifyAdapter) Marketplace() marketplace.Code {
	return marketplace.CodeShopify
}

// Authenticate verifies the token against the shop endpoint
func (a *ShopifyAdapter) Authenticate(ctx context.Context) error {
	return a.client.authenticate(ctx, callParams{
		operation: "authenticate",
		method:    http.MethodGet,
		path:      "/shop.json",
	})
}

// ---------------------------------------------------------------------------
// Product Operations
// ---------------------------------------------------------------------------

// ListProducts retrieves a page of the shop's products
func (a *ShopifyAdapter) ListProducts(ctx context.Context, query marketplace.ProductQuery) (*marketplace.ProductPage, error) {
	query.Normalize()

	params := url.Values{}
	params.Set("limit", strconv.Itoa(query.PageSize))
	params.Set("page", strconv.Itoa(query.Page))
	if query.UpdatedAfter != nil {
		params.Set("updated_at_min", query.UpdatedAfter.Format(time.RFC3339))
	}

	var list shopifyProductList
	if err := a.client.call(ctx, callParams{
		operation: "list_products",
		method:    http.MethodGet,
		path:      "/products.json",
		query:     params,
		out:       &list,
	}); err != nil {
		return nil, err
	}

	result := &marketplace.ProductPage{
		TotalCount: int64(len(list.Products)),
		HasMore:    len(list.Products) == query.PageSize,
	}
	for i := range list.Products {
		result.Products = append(result.Products, list.Products[i].toDomain())
	}
	return result, nil
}

// CreateProduct creates a product and returns its numeric identifier
func (a *ShopifyAdapter) CreateProduct(ctx context.Context, product *marketplace.Product) (string, error) {
	var resp shopifyProductEnvelope
	if err := a.client.call(ctx, callParams{
		operation: "create_product",
		method:    http.MethodPost,
		path:      "/products.json",
		body:      shopifyProductEnvelope{Product: shopifyProductFromDomain(product)},
		out:       &resp,
	}); err != nil {
		return "", err
	}
	return formatInt(resp.Product.ID), nil
}

// UpdateProduct updates an existing product
func (a *ShopifyAdapter) UpdateProduct(ctx context.Context, product *marketplace.Product) error {
	payload := shopifyProductEnvelope{Product: shopifyProductFromDomain(product)}
	return a.client.call(ctx, callParams{
		operation: "update_product",
		method:    http.MethodPut,
		path:      "/products/" + product.TargetID + ".json",
		body:      payload,
	})
}

// DeleteProduct removes a product
func (a *ShopifyAdapter) DeleteProduct(ctx context.Context, targetID string) error {
	return a.client.call(ctx, callParams{
		operation: "delete_product",
		method:    http.MethodDelete,
		path:      "/products/" + targetID + ".json",
	})
}

// UpdateStock sets the first variant's inventory quantity
func (a *ShopifyAdapter) UpdateStock(ctx context.Context, targetID string, stock decimal.Decimal) error {
	payload := map[string]interface{}{
		"product": map[string]interface{}{
			"variants": []map[string]interface{}{
				{"inventory_quantity": stock.IntPart()},
			},
		},
	}
	return a.client.call(ctx, callParams{
		operation: "update_stock",
		method:    http.MethodPut,
		path:      "/products/" + targetID + ".json",
		body:      payload,
	})
}

// UpdatePrice sets the first variant's price
func (a *ShopifyAdapter) UpdatePrice(ctx context.Context, targetID string, price decimal.Decimal) error {
	payload := map[string]interface{}{
		"product": map[string]interface{}{
			"variants": []map[string]interface{}{
				{"price": price.String()},
			},
		},
	}
	return a.client.call(ctx, callParams{
		operation: "update_price",
		method:    http.MethodPut,
		path:      "/products/" + targetID + ".json",
		body:      payload,
	})
}

// ---------------------------------------------------------------------------
// Order Operations
// ---------------------------------------------------------------------------

// ListOrders pulls orders within the query window
func (a *ShopifyAdapter) ListOrders(ctx context.Context, query marketplace.OrderQuery) (*marketplace.OrderPage, error) {
	query.Normalize(time.Now())

	params := url.Values{}
	params.Set("status", "any")
	params.Set("created_at_min", query.StartTime.Format(time.RFC3339))
	params.Set("created_at_max", query.EndTime.Format(time.RFC3339))
	params.Set("limit", strconv.Itoa(query.PageSize))
	params.Set("page", strconv.Itoa(query.Page))

	var list shopifyOrderList
	if err := a.client.call(ctx, callParams{
		operation: "list_orders",
		method:    http.MethodGet,
		path:      "/orders.json",
		query:     params,
		out:       &list,
	}); err != nil {
		return nil, err
	}

	result := &marketplace.OrderPage{
		TotalCount: int64(len(list.Orders)),
		HasMore:    len(list.Orders) == query.PageSize,
	}
	for i := range list.Orders {
		order := a.convertOrder(&list.Orders[i])
		if query.Status != nil && order.Status != *query.Status {
			continue
		}
		result.Orders = append(result.Orders, order)
	}
	return result, nil
}

// convertOrder normalizes a vendor order to the canonical shape
func (a *ShopifyAdapter) convertOrder(so *shopifyOrder) marketplace.Order {
	total, _ := decimal.NewFromString(so.TotalPrice)
	order := marketplace.Order{
		TargetID:    formatInt(so.ID),
		Marketplace: marketplace.CodeShopify,
		Status:      mapOrderStatus(shopifyOrderStatuses, shopifyStatusOf(so), marketplace.CodeShopify, a.logger),
		BuyerName:   so.Customer.FirstName + " " + so.Customer.LastName,
		TotalAmount: total,
		Currency:    so.Currency,
		CreatedAt:   so.CreatedAt,
	}
	for _, line := range so.LineItems {
		unitPrice, _ := decimal.NewFromString(line.Price)
		order.Lines = append(order.Lines, marketplace.OrderLine{
			TargetID:  formatInt(line.ID),
			SKU:       line.SKU,
			Title:     line.Title,
			Quantity:  decimal.NewFromInt(line.Quantity),
			UnitPrice: unitPrice,
		})
	}
	return order
}

// UpdateOrderStatus pushes a status change. Shopify models state through
// fulfillments and cancellations rather than one status field.
func (a *ShopifyAdapter) UpdateOrderStatus(ctx context.Context, orderID string, status marketplace.OrderStatus) error {
	switch status {
	case marketplace.OrderStatusShipped, marketplace.OrderStatusDelivered:
		return a.client.call(ctx, callParams{
			operation: "update_order_status",
			method:    http.MethodPost,
			path:      "/orders/" + orderID + "/fulfillments.json",
			body:      map[string]interface{}{"fulfillment": map[string]interface{}{"notify_customer": false}},
		})
	case marketplace.OrderStatusCancelled:
		return a.client.call(ctx, callParams{
			operation: "update_order_status",
			method:    http.MethodPost,
			path:      "/orders/" + orderID + "/cancel.json",
		})
	default:
		return &marketplace.APIError{
			Code:        marketplace.CodeVendorError,
			Message:     "status " + status.String() + " cannot be pushed to shopify",
			Operation:   "update_order_status",
			Marketplace: marketplace.CodeShopify,
		}
	}
}

// ---------------------------------------------------------------------------
// Catalog and Batch Operations
// ---------------------------------------------------------------------------

// ListCategories lists the shop's custom collections as categories
func (a *ShopifyAdapter) ListCategories(ctx context.Context) ([]marketplace.Category, error) {
	var list shopifyCollectionList
	if err := a.client.call(ctx, callParams{
		operation: "list_categories",
		method:    http.MethodGet,
		path:      "/custom_collections.json",
		out:       &list,
	}); err != nil {
		return nil, err
	}

	categories := make([]marketplace.Category, 0, len(list.CustomCollections))
	for _, collection := range list.CustomCollections {
		categories = append(categories, marketplace.Category{
			ID:   formatInt(collection.ID),
			Name: collection.Title,
		})
	}
	return categories, nil
}

// BatchUpdatePricesAndStock applies the items with per-item failure isolation
func (a *ShopifyAdapter) BatchUpdatePricesAndStock(ctx context.Context, items []marketplace.BatchItem) (*marketplace.BatchResult, error) {
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
func (a *ShopifyAdapter) LastRequestAt() time.Time {
	return a.client.lastRequestAt()
}

// Close releases adapter resources
func (a *ShopifyAdapter) Close() error {
	return nil
}
