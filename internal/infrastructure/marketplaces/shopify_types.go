package marketplaces

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// shopifyOrderStatuses maps the derived Shopify fulfillment vocabulary onto
// the canonical statuses. The vendor splits state across fulfillment_status,
// financial_status and cancelled_at; shopifyStatusOf derives one code first.
var shopifyOrderStatuses = map[string]marketplace.OrderStatus{
	"pending":   marketplace.OrderStatusPending,
	"paid":      marketplace.OrderStatusConfirmed,
	"partial":   marketplace.OrderStatusProcessing,
	"fulfilled": marketplace.OrderStatusShipped,
	"delivered": marketplace.OrderStatusDelivered,
	"cancelled": marketplace.OrderStatusCancelled,
	"restocked": marketplace.OrderStatusReturned,
}

// shopifyStatusOf collapses the vendor's split state fields into one code
func shopifyStatusOf(o *shopifyOrder) string {
	if o.CancelledAt != nil {
		return "cancelled"
	}
	if o.FulfillmentStatus != "" {
		return o.FulfillmentStatus
	}
	if o.FinancialStatus == "paid" {
		return "paid"
	}
	return "pending"
}

// shopifyVariant is one sellable variant of a product
type shopifyVariant struct {
	ID                int64  `json:"id,omitempty"`
	SKU               string `json:"sku,omitempty"`
	Price             string `json:"price,omitempty"`
	CompareAtPrice    string `json:"compare_at_price,omitempty"`
	Barcode           string `json:"barcode,omitempty"`
	InventoryQuantity int64  `json:"inventory_quantity"`
}

// shopifyProduct is one product in the admin API
type shopifyProduct struct {
	ID       int64            `json:"id,omitempty"`
	Title    string           `json:"title"`
	BodyHTML string           `json:"body_html,omitempty"`
	Variants []shopifyVariant `json:"variants,omitempty"`
	Images   []struct {
		Src string `json:"src"`
	} `json:"images,omitempty"`
}

func (p *shopifyProduct) toDomain() marketplace.Product {
	product := marketplace.Product{
		TargetID:    formatInt(p.ID),
		Title:       p.Title,
		Description: p.BodyHTML,
	}
	if len(p.Variants) > 0 {
		v := p.Variants[0]
		product.SKU = v.SKU
		product.Barcode = v.Barcode
		product.Stock = decimal.NewFromInt(v.InventoryQuantity)
		if price, err := decimal.NewFromString(v.Price); err == nil {
			product.Price = price
		}
		if listPrice, err := decimal.NewFromString(v.CompareAtPrice); err == nil {
			product.ListPrice = listPrice
		}
	}
	for _, image := range p.Images {
		product.ImageURLs = append(product.ImageURLs, image.Src)
	}
	return product
}

func shopifyProductFromDomain(product *marketplace.Product) shopifyProduct {
	sp := shopifyProduct{
		Title:    product.Title,
		BodyHTML: product.Description,
		Variants: []shopifyVariant{{
			SKU:               product.SKU,
			Price:             product.Price.String(),
			Barcode:           product.Barcode,
			InventoryQuantity: product.Stock.IntPart(),
		}},
	}
	if !product.ListPrice.IsZero() {
		sp.Variants[0].CompareAtPrice = product.ListPrice.String()
	}
	for _, url := range product.ImageURLs {
		sp.Images = append(sp.Images, struct {
			Src string `json:"src"`
		}{Src: url})
	}
	return sp
}

// shopifyProductEnvelope wraps single-product requests and responses
type shopifyProductEnvelope struct {
	Product shopifyProduct `json:"product"`
}

// shopifyProductList is the paged product response
type shopifyProductList struct {
	Products []shopifyProduct `json:"products"`
}

// shopifyOrder is one order in the admin API
type shopifyOrder struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	FinancialStatus   string     `json:"financial_status"`
	FulfillmentStatus string     `json:"fulfillment_status"`
	CancelledAt       *time.Time `json:"cancelled_at"`
	TotalPrice        string     `json:"total_price"`
	Currency          string     `json:"currency"`
	CreatedAt         time.Time  `json:"created_at"`
	Customer          struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"customer"`
	LineItems []shopifyLineItem `json:"line_items"`
}

type shopifyLineItem struct {
	ID       int64  `json:"id"`
	SKU      string `json:"sku"`
	Title    string `json:"title"`
	Quantity int64  `json:"quantity"`
	Price    string `json:"price"`
}

// shopifyOrderList is the paged order response
type shopifyOrderList struct {
	Orders []shopifyOrder `json:"orders"`
}

// shopifyCollection stands in for a category node
type shopifyCollection struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// shopifyCollectionList is the collection listing response
type shopifyCollectionList struct {
	CustomCollections []shopifyCollection `json:"custom_collections"`
}
