package marketplace

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Product Value Objects
// ---------------------------------------------------------------------------

// Product represents a listing as exchanged with a marketplace
type Product struct {
	// TargetID is the product's identifier on the marketplace (empty for new)
	TargetID string
	// SKU is our internal stock keeping unit code
	SKU string
	// Barcode is the product barcode, when the vendor keys on it
	Barcode string
	// Title is the listing title
	Title string
	// Description is the listing description
	Description string
	// CategoryID is the marketplace category identifier
	CategoryID string
	// Price is the selling price
	Price decimal.Decimal
	// ListPrice is the strike-through/compare price
	ListPrice decimal.Decimal
	// Stock is the available quantity
	Stock decimal.Decimal
	// Currency is the listing currency (default: TRY)
	Currency string
	// ImageURLs contains listing image URLs
	ImageURLs []string
	// Attributes carries vendor category attributes
	Attributes map[string]string
}

// ProductQuery narrows a product listing request
type ProductQuery struct {
	// Page is the page number (1-indexed)
	Page int
	// PageSize is the number of products per page
	PageSize int
	// UpdatedAfter filters to products changed after this time (optional)
	UpdatedAfter *time.Time
}

// Normalize clamps paging values into the vendor-safe range
func (q *ProductQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = 50
	}
}

// ProductPage is one page of listed products
type ProductPage struct {
	// Products contains the page contents
	Products []Product
	// TotalCount is the total number of products on the marketplace
	TotalCount int64
	// HasMore indicates whether further pages exist
	HasMore bool
}

// ---------------------------------------------------------------------------
// Order Value Objects
// ---------------------------------------------------------------------------

// Order represents an order pulled from a marketplace, already normalized
// to the canonical status vocabulary
type Order struct {
	// TargetID is the order's identifier on the marketplace
	TargetID string
	// Marketplace identifies the source vendor
	Marketplace Code
	// Status is the canonical order status
	Status OrderStatus
	// BuyerName is the buyer's display name
	BuyerName string
	// TotalAmount is what the buyer paid
	TotalAmount decimal.Decimal
	// Currency is the payment currency
	Currency string
	// Lines contains the order line items
	Lines []OrderLine
	// CreatedAt is when the order was created on the marketplace
	CreatedAt time.Time
}

// OrderLine is a single line item within an Order
type OrderLine struct {
	// TargetID is the line identifier on the marketplace
	TargetID string
	// SKU is our product code for the line
	SKU string
	// Title is the product title as sold
	Title string
	// Quantity is the ordered quantity
	Quantity decimal.Decimal
	// UnitPrice is the per-unit price paid
	UnitPrice decimal.Decimal
}

// OrderQuery narrows an order listing request
type OrderQuery struct {
	// StartTime is the beginning of the pull window
	StartTime time.Time
	// EndTime is the end of the pull window
	EndTime time.Time
	// Status filters by canonical status (optional)
	Status *OrderStatus
	// Page is the page number (1-indexed)
	Page int
	// PageSize is the number of orders per page
	PageSize int
}

// Normalize clamps paging values and defaults the window to the last day
func (q *OrderQuery) Normalize(now time.Time) {
	if q.EndTime.IsZero() {
		q.EndTime = now
	}
	if q.StartTime.IsZero() {
		q.StartTime = q.EndTime.Add(-24 * time.Hour)
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 || q.PageSize > 200 {
		q.PageSize = 50
	}
}

// OrderPage is one page of pulled orders
type OrderPage struct {
	// Orders contains the page contents
	Orders []Order
	// TotalCount is the total number of orders matching the query
	TotalCount int64
	// HasMore indicates whether further pages exist
	HasMore bool
}

// Category is one node of a marketplace category tree
type Category struct {
	// ID is the category identifier on the marketplace
	ID string
	// Name is the category display name
	Name string
	// ParentID is the parent category, empty for roots
	ParentID string
}

// ---------------------------------------------------------------------------
// Batch Contracts
// ---------------------------------------------------------------------------

// BatchItem is one desired price/stock change within a batch job.
// Either Price or Stock (or both) must be set.
type BatchItem struct {
	// TargetID is the product identifier on the marketplace
	TargetID string `json:"target_id"`
	// Price is the desired price, nil to leave unchanged
	Price *decimal.Decimal `json:"price,omitempty"`
	// Stock is the desired stock quantity, nil to leave unchanged
	Stock *decimal.Decimal `json:"stock,omitempty"`
}

// BatchItemStatus is the per-item outcome within a batch
type BatchItemStatus string

const (
	// BatchItemSuccess indicates the item was applied
	BatchItemSuccess BatchItemStatus = "success"
	// BatchItemFailed indicates the item failed; the batch continued
	BatchItemFailed BatchItemStatus = "failed"
)

// BatchItemResult is the recorded outcome for one batch item
type BatchItemResult struct {
	// TargetID echoes the item identifier
	TargetID string `json:"target_id"`
	// Status is success or failed
	Status BatchItemStatus `json:"status"`
	// Message describes the failure, empty on success
	Message string `json:"message,omitempty"`
	// Err holds the underlying error, nil on success. Not serialized.
	Err error `json:"-"`
}

// BatchResult aggregates the outcome of one batch job. A batch never aborts
// on individual item failures; it always carries one detail per input item.
type BatchResult struct {
	// Successful is the count of applied items
	Successful int `json:"successful"`
	// Failed is the count of failed items
	Failed int `json:"failed"`
	// Details carries one entry per input item, in input order
	Details []BatchItemResult `json:"details"`
}

// Record appends an item outcome and bumps the aggregate counters
func (r *BatchResult) Record(item BatchItemResult) {
	if item.Status == BatchItemSuccess {
		r.Successful++
	} else {
		r.Failed++
	}
	r.Details = append(r.Details, item)
}
