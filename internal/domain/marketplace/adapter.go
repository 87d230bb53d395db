package marketplace

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Auth State
// ---------------------------------------------------------------------------

// AuthState tracks where an adapter instance is in its authentication
// lifecycle. Receiving HTTP 401 from any call forces the adapter back to
// AuthStateUnauthenticated so the next use re-authenticates.
type AuthState int32

const (
	// AuthStateUnauthenticated means no valid session/token is held
	AuthStateUnauthenticated AuthState = iota
	// AuthStateAuthenticating means an authentication attempt is in flight
	AuthStateAuthenticating
	// AuthStateAuthenticated means the adapter holds valid credentials
	AuthStateAuthenticated
)

// String returns the string representation of AuthState
func (s AuthState) String() string {
	switch s {
	case AuthStateUnauthenticated:
		return "unauthenticated"
	case AuthStateAuthenticating:
		return "authenticating"
	case AuthStateAuthenticated:
		return "authenticated"
	default:
		return "unknown"
	}
}

// ---------------------------------------------------------------------------
// Adapter Port Interface
// ---------------------------------------------------------------------------

// Adapter is the uniform operation set every vendor adapter implements.
// Concrete implementations live in the infrastructure layer; each call path
// goes through the instance's rate limiter and request signer before the
// network, and surfaces failures as *APIError.
type Adapter interface {
	// Marketplace returns the code this adapter handles
	Marketplace() Code

	// Authenticate establishes (or re-establishes) the vendor session.
	// It is idempotent when already authenticated.
	Authenticate(ctx context.Context) error

	// ---------------------------------------------------------------------------
	// Product Operations
	// ---------------------------------------------------------------------------

	// ListProducts retrieves a page of the seller's listings
	ListProducts(ctx context.Context, query ProductQuery) (*ProductPage, error)

	// CreateProduct creates a listing and returns its marketplace identifier
	CreateProduct(ctx context.Context, product *Product) (string, error)

	// UpdateProduct updates an existing listing identified by product.TargetID
	UpdateProduct(ctx context.Context, product *Product) error

	// DeleteProduct removes a listing
	DeleteProduct(ctx context.Context, targetID string) error

	// UpdateStock sets the available quantity for a listing
	UpdateStock(ctx context.Context, targetID string, stock decimal.Decimal) error

	// UpdatePrice sets the selling price for a listing
	UpdatePrice(ctx context.Context, targetID string, price decimal.Decimal) error

	// ---------------------------------------------------------------------------
	// Order Operations
	// ---------------------------------------------------------------------------

	// ListOrders pulls orders within the query window, normalized to the
	// canonical status vocabulary
	ListOrders(ctx context.Context, query OrderQuery) (*OrderPage, error)

	// UpdateOrderStatus pushes a canonical status change to the marketplace
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error

	// ---------------------------------------------------------------------------
	// Catalog Operations
	// ---------------------------------------------------------------------------

	// ListCategories retrieves the marketplace category tree
	ListCategories(ctx context.Context) ([]Category, error)

	// ---------------------------------------------------------------------------
	// Batch Operations
	// ---------------------------------------------------------------------------

	// BatchUpdatePricesAndStock applies the items' price/stock changes with
	// per-item failure isolation: one item's failure never aborts the rest.
	BatchUpdatePricesAndStock(ctx context.Context, items []BatchItem) (*BatchResult, error)

	// LastRequestAt reports when the adapter last issued a vendor call,
	// used by the idle eviction sweep
	LastRequestAt() time.Time

	// Close releases any resources held by the adapter instance
	Close() error
}

// ---------------------------------------------------------------------------
// Adapter Factory Port
// ---------------------------------------------------------------------------

// Factory builds adapter instances from resolved credentials.
// The infrastructure layer registers one builder per supported marketplace.
type Factory interface {
	// Build constructs an unauthenticated adapter for the resolved
	// credential set. Missing required fields surface as *ConfigError.
	Build(creds *ResolvedCredentials) (Adapter, error)

	// Supported returns the marketplace codes builders are registered for
	Supported() []Code
}
