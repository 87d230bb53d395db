package marketplaces

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// n11OrderStatuses maps the N11 order vocabulary onto the canonical statuses
var n11OrderStatuses = map[string]marketplace.OrderStatus{
	"Created":   marketplace.OrderStatusPending,
	"Approved":  marketplace.OrderStatusConfirmed,
	"Picking":   marketplace.OrderStatusProcessing,
	"Shipped":   marketplace.OrderStatusShipped,
	"Delivered": marketplace.OrderStatusDelivered,
	"Cancelled": marketplace.OrderStatusCancelled,
	"Rejected":  marketplace.OrderStatusCancelled,
	"Returned":  marketplace.OrderStatusReturned,
}

// n11OutboundStatuses maps canonical statuses to what N11 accepts
var n11OutboundStatuses = map[marketplace.OrderStatus]string{
	marketplace.OrderStatusConfirmed: "Approved",
	marketplace.OrderStatusShipped:   "Shipped",
	marketplace.OrderStatusDelivered: "Delivered",
	marketplace.OrderStatusCancelled: "Rejected",
}

// n11Product is one listing in the seller catalog
type n11Product struct {
	ID           int64   `json:"id,omitempty"`
	SellerCode   string  `json:"sellerCode"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	CategoryID   int64   `json:"categoryId,omitempty"`
	Barcode      string  `json:"barcode,omitempty"`
	Quantity     int64   `json:"quantity"`
	SalePrice    float64 `json:"salePrice"`
	ListPrice    float64 `json:"listPrice,omitempty"`
	CurrencyType string  `json:"currencyType,omitempty"`
	Images       []struct {
		URL string `json:"url"`
	} `json:"images,omitempty"`
}

func (p *n11Product) toDomain() marketplace.Product {
	product := marketplace.Product{
		TargetID:    formatInt(p.ID),
		SKU:         p.SellerCode,
		Barcode:     p.Barcode,
		Title:       p.Title,
		Description: p.Description,
		CategoryID:  formatInt(p.CategoryID),
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

func n11ProductFromDomain(product *marketplace.Product) n11Product {
	np := n11Product{
		SellerCode:   product.SKU,
		Title:        product.Title,
		Description:  product.Description,
		Barcode:      product.Barcode,
		Quantity:     product.Stock.IntPart(),
		SalePrice:    product.Price.InexactFloat64(),
		ListPrice:    product.ListPrice.InexactFloat64(),
		CurrencyType: product.Currency,
	}
	for _, url := range product.ImageURLs {
		np.Images = append(np.Images, struct {
			URL string `json:"url"`
		}{URL: url})
	}
	return np
}

// n11ProductPage is the paged product response
type n11ProductPage struct {
	TotalCount int64        `json:"totalCount"`
	PageCount  int64        `json:"pageCount"`
	Page       int64        `json:"page"`
	Products   []n11Product `json:"products"`
}

// n11Order is one order in the seller order feed
type n11Order struct {
	ID          int64          `json:"id"`
	OrderNumber string         `json:"orderNumber"`
	Status      string         `json:"status"`
	BuyerName   string         `json:"buyerName"`
	TotalAmount float64        `json:"totalAmount"`
	Currency    string         `json:"currency"`
	CreatedAt   time.Time      `json:"createdAt"`
	Items       []n11OrderItem `json:"items"`
}

type n11OrderItem struct {
	ID         int64   `json:"id"`
	SellerCode string  `json:"sellerCode"`
	Title      string  `json:"productName"`
	Quantity   int64   `json:"quantity"`
	Price      float64 `json:"price"`
}

// n11OrderPage is the paged order response
type n11OrderPage struct {
	TotalCount int64      `json:"totalCount"`
	PageCount  int64      `json:"pageCount"`
	Page       int64      `json:"page"`
	Orders     []n11Order `json:"orders"`
}

// n11Category is one node of the category tree
type n11Category struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	ParentID int64  `json:"parentId"`
}

// n11CategoryList is the category listing response
type n11CategoryList struct {
	Categories []n11Category `json:"categories"`
}
