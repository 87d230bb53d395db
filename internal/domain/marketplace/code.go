package marketplace

// ---------------------------------------------------------------------------
// Code represents an external marketplace
// ---------------------------------------------------------------------------

// Code identifies one external e-commerce marketplace
type Code string

const (
	// CodeTrendyol represents the Trendyol marketplace
	CodeTrendyol Code = "trendyol"
	// CodeHepsiburada represents the Hepsiburada marketplace
	CodeHepsiburada Code = "hepsiburada"
	// CodeN11 represents the N11 marketplace
	CodeN11 Code = "n11"
	// CodeAmazon represents the Amazon marketplace (SP-API)
	CodeAmazon Code = "amazon"
	// CodeShopify represents a Shopify storefront
	CodeShopify Code = "shopify"
	// CodeCicekSepeti represents the CicekSepeti marketplace
	CodeCicekSepeti Code = "ciceksepeti"
	// CodePazarama represents the Pazarama marketplace
	CodePazarama Code = "pazarama"
	// CodePTTAvm represents the PTT AVM marketplace
	CodePTTAvm Code = "pttavm"
)

// IsValid returns true if the marketplace code is valid
func (c Code) IsValid() bool {
	switch c {
	case CodeTrendyol, CodeHepsiburada, CodeN11, CodeAmazon,
		CodeShopify, CodeCicekSepeti, CodePazarama, CodePTTAvm:
		return true
	default:
		return false
	}
}

// String returns the string representation of Code
func (c Code) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the marketplace
func (c Code) DisplayName() string {
	switch c {
	case CodeTrendyol:
		return "Trendyol"
	case CodeHepsiburada:
		return "Hepsiburada"
	case CodeN11:
		return "N11"
	case CodeAmazon:
		return "Amazon"
	case CodeShopify:
		return "Shopify"
	case CodeCicekSepeti:
		return "ÇiçekSepeti"
	case CodePazarama:
		return "Pazarama"
	case CodePTTAvm:
		return "PTT AVM"
	default:
		return string(c)
	}
}

// AllCodes returns every known marketplace code
func AllCodes() []Code {
	return []Code{
		CodeTrendyol, CodeHepsiburada, CodeN11, CodeAmazon,
		CodeShopify, CodeCicekSepeti, CodePazarama, CodePTTAvm,
	}
}

// ---------------------------------------------------------------------------
// OrderStatus is the canonical order status vocabulary
// ---------------------------------------------------------------------------

// OrderStatus is the canonical order status every adapter maps its vendor
// vocabulary onto. Vendor codes that have no mapping fall back to
// OrderStatusPending; adapters log the unrecognized code but never fail on it.
type OrderStatus string

const (
	// OrderStatusPending indicates the order is awaiting confirmation
	OrderStatusPending OrderStatus = "pending"
	// OrderStatusConfirmed indicates the order has been confirmed
	OrderStatusConfirmed OrderStatus = "confirmed"
	// OrderStatusProcessing indicates the order is being prepared
	OrderStatusProcessing OrderStatus = "processing"
	// OrderStatusShipped indicates the order has been handed to a carrier
	OrderStatusShipped OrderStatus = "shipped"
	// OrderStatusDelivered indicates the order reached the buyer
	OrderStatusDelivered OrderStatus = "delivered"
	// OrderStatusCancelled indicates the order was cancelled
	OrderStatusCancelled OrderStatus = "cancelled"
	// OrderStatusReturned indicates the order was returned by the buyer
	OrderStatusReturned OrderStatus = "returned"
)

// IsValid returns true if the status is valid
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled,
		OrderStatusReturned:
		return true
	default:
		return false
	}
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// IsFinal returns true if the status is a terminal state
func (s OrderStatus) IsFinal() bool {
	switch s {
	case OrderStatusDelivered, OrderStatusCancelled, OrderStatusReturned:
		return true
	default:
		return false
	}
}
