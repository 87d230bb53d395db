package marketplaces

import (
	"github.com/shopspring/decimal"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// trendyolOrderStatuses maps Trendyol's order vocabulary onto the canonical
// statuses
var trendyolOrderStatuses = map[string]marketplace.OrderStatus{
	"Created":           marketplace.OrderStatusPending,
	"Awaiting":          marketplace.OrderStatusPending,
	"Picking":           marketplace.OrderStatusConfirmed,
	"Invoiced":          marketplace.OrderStatusProcessing,
	"Shipped":           marketplace.OrderStatusShipped,
	"AtCollectionPoint": marketplace.OrderStatusShipped,
	"Delivered":         marketplace.OrderStatusDelivered,
	"Cancelled":         marketplace.OrderStatusCancelled,
	"UnSupplied":        marketplace.OrderStatusCancelled,
	"Returned":          marketplace.OrderStatusReturned,
}

// trendyolOutboundStatuses maps canonical statuses to what Trendyol accepts
// on a shipment package update
var trendyolOutboundStatuses = map[marketplace.OrderStatus]string{
	marketplace.OrderStatusConfirmed:  "Picking",
	marketplace.OrderStatusProcessing: "Invoiced",
	marketplace.OrderStatusShipped:    "Shipped",
	marketplace.OrderStatusDelivered:  "Delivered",
	marketplace.OrderStatusCancelled:  "UnSupplied",
}

// trendyolProduct is one listing in the supplier product feed
type trendyolProduct struct {
	Barcode       string  `json:"barcode"`
	Title         string  `json:"title"`
	Description   string  `json:"description,omitempty"`
	StockCode     string  `json:"stockCode,omitempty"`
	CategoryID    int64   `json:"pimCategoryId,omitempty"`
	Quantity      int64   `json:"quantity"`
	SalePrice     float64 `json:"salePrice"`
	ListPrice     float64 `json:"listPrice"`
	CurrencyType  string  `json:"currencyType,omitempty"`
	ProductMainID string  `json:"productMainId,omitempty"`
	Images        []struct {
		URL string `json:"url"`
	} `json:"images,omitempty"`
}

func (p *trendyolProduct) toDomain() marketplace.Product {
	product := marketplace.Product{
		TargetID:    p.Barcode,
		SKU:         p.StockCode,
		Barcode:     p.Barcode,
		Title:       p.Title,
		Description: p.Description,
		Price:       decimal.NewFromFloat(p.SalePrice),
		ListPrice:   decimal.NewFromFloat(p.ListPrice),
		Stock:       decimal.NewFromInt(p.Quantity),
		Currency:    p.CurrencyType,
	}
	for _, image := range p.Images {
		product.ImageURLs = append(product.ImageURLs, image.URL)
	}
	return product
}

func trendyolProductFromDomain(product *marketplace.Product) trendyolProduct {
	tp := trendyolProduct{
		Barcode:      product.Barcode,
		Title:        product.Title,
		Description:  product.Description,
		StockCode:    product.SKU,
		Quantity:     product.Stock.IntPart(),
		SalePrice:    product.Price.InexactFloat64(),
		ListPrice:    product.ListPrice.InexactFloat64(),
		CurrencyType: product.Currency,
	}
	if tp.Barcode == "" {
		tp.Barcode = product.TargetID
	}
	for _, url := range product.ImageURLs {
		tp.Images = append(tp.Images, struct {
			URL string `json:"url"`
		}{URL: url})
	}
	return tp
}

// trendyolProductPage is the paged supplier product response
type trendyolProductPage struct {
	TotalElements int64             `json:"totalElements"`
	TotalPages    int64             `json:"totalPages"`
	Page          int64             `json:"page"`
	Content       []trendyolProduct `json:"content"`
}

// trendyolPriceInventoryRequest updates price and/or stock for listings
type trendyolPriceInventoryRequest struct {
	Items []trendyolPriceInventoryItem `json:"items"`
}

type trendyolPriceInventoryItem struct {
	Barcode   string   `json:"barcode"`
	Quantity  *int64   `json:"quantity,omitempty"`
	SalePrice *float64 `json:"salePrice,omitempty"`
	ListPrice *float64 `json:"listPrice,omitempty"`
}

// trendyolOrder is one shipment package in the order feed
type trendyolOrder struct {
	ID                int64               `json:"id"`
	OrderNumber       string              `json:"orderNumber"`
	Status            string              `json:"status"`
	CustomerFirstName string              `json:"customerFirstName"`
	CustomerLastName  string              `json:"customerLastName"`
	TotalPrice        float64             `json:"totalPrice"`
	CurrencyCode      string              `json:"currencyCode"`
	OrderDate         int64               `json:"orderDate"`
	Lines             []trendyolOrderLine `json:"lines"`
}

type trendyolOrderLine struct {
	ID          int64   `json:"id"`
	MerchantSKU string  `json:"merchantSku"`
	ProductName string  `json:"productName"`
	Quantity    int64   `json:"quantity"`
	Price       float64 `json:"price"`
}

// trendyolOrderPage is the paged order response
type trendyolOrderPage struct {
	TotalElements int64           `json:"totalElements"`
	TotalPages    int64           `json:"totalPages"`
	Page          int64           `json:"page"`
	Content       []trendyolOrder `json:"content"`
}

// trendyolCategory is one node of the category tree
type trendyolCategory struct {
	ID            int64              `json:"id"`
	Name          string             `json:"name"`
	ParentID      int64              `json:"parentId"`
	SubCategories []trendyolCategory `json:"subCategories"`
}

// trendyolCategoryTree is the category tree response
type trendyolCategoryTree struct {
	Categories []trendyolCategory `json:"categories"`
}

// trendyolStatusUpdate pushes a status change for a shipment package
type trendyolStatusUpdate struct {
	Status string `json:"status"`
}
