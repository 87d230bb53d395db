package marketplace

// ---------------------------------------------------------------------------
// Credential Source
// ---------------------------------------------------------------------------

// CredentialSource tags where a resolved credential set came from.
// It is observable for audit purposes only; callers must not branch on it.
type CredentialSource string

const (
	// SourceTenant indicates the tenant's own active credential record
	SourceTenant CredentialSource = "tenant"
	// SourceOperatorDefault indicates the operator-wide fallback credentials
	SourceOperatorDefault CredentialSource = "operator-default"
)

// Well-known field names used in resolved credential maps
const (
	FieldAPIKey     = "api_key"
	FieldAPISecret  = "api_secret"
	FieldIdentifier = "identifier"
)

// ---------------------------------------------------------------------------
// ResolvedCredentials
// ---------------------------------------------------------------------------

// ResolvedCredentials is the decrypted credential set for one
// (tenant, marketplace) pair, as returned by the vault.
type ResolvedCredentials struct {
	// Marketplace the credentials belong to
	Marketplace Code
	// Source tags whether the tenant record or the operator default was used
	Source CredentialSource
	// APIKey is the primary key/token (meaning varies per marketplace)
	APIKey string
	// APISecret is the secondary secret, empty for single-token vendors
	APISecret string
	// Identifier is the vendor-specific account id
	// (supplier_id, seller_id, merchant_id or shop domain)
	Identifier string
	// Extra carries vendor-specific auxiliary fields (e.g. LWA client pair)
	Extra map[string]string
}

// Typed converts the flat resolved set into the marketplace's tagged
// credential variant, validating required fields exhaustively.
func (rc *ResolvedCredentials) Typed() (Credentials, error) {
	var creds Credentials
	switch rc.Marketplace {
	case CodeTrendyol:
		creds = &TrendyolCredentials{
			APIKey:     rc.APIKey,
			APISecret:  rc.APISecret,
			SupplierID: rc.Identifier,
		}
	case CodeAmazon:
		creds = &AmazonCredentials{
			AccessKeyID:     rc.APIKey,
			SecretAccessKey: rc.APISecret,
			SellerID:        rc.Identifier,
			Region:          rc.Extra["region"],
			RefreshToken:    rc.Extra["refresh_token"],
			ClientID:        rc.Extra["client_id"],
			ClientSecret:    rc.Extra["client_secret"],
		}
	case CodeShopify:
		creds = &ShopifyCredentials{
			ShopDomain:  rc.Identifier,
			AccessToken: rc.APIKey,
		}
	case CodeN11:
		creds = &N11Credentials{
			APIKey:    rc.APIKey,
			APISecret: rc.APISecret,
		}
	default:
		return nil, ErrAdapterNotSupported
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return creds, nil
}

// ---------------------------------------------------------------------------
// Credentials variants
// ---------------------------------------------------------------------------

// Credentials is implemented by every per-marketplace credential variant
type Credentials interface {
	// Marketplace returns the code the credentials belong to
	Marketplace() Code
	// Validate checks all required fields are present, returning a
	// *ConfigError listing missing ones otherwise
	Validate() error
}

// TrendyolCredentials authenticate against the Trendyol supplier API
type TrendyolCredentials struct {
	APIKey     string
	APISecret  string
	SupplierID string
}

// Marketplace returns CodeTrendyol
func (c *TrendyolCredentials) Marketplace() Code { return CodeTrendyol }

// Validate checks required fields
func (c *TrendyolCredentials) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if c.APISecret == "" {
		missing = append(missing, "api_secret")
	}
	if c.SupplierID == "" {
		missing = append(missing, "supplier_id")
	}
	if len(missing) > 0 {
		return NewConfigError(CodeTrendyol, missing...)
	}
	return nil
}

// AmazonCredentials authenticate against the Amazon SP-API. Request signing
// uses the access key pair; the LWA client pair and refresh token drive the
// bearer token refresh grant.
type AmazonCredentials struct {
	AccessKeyID     string
	SecretAccessKey string
	SellerID        string
	Region          string
	RefreshToken    string
	ClientID        string
	ClientSecret    string
}

// Marketplace returns CodeAmazon
func (c *AmazonCredentials) Marketplace() Code { return CodeAmazon }

// Validate checks required fields
func (c *AmazonCredentials) Validate() error {
	var missing []string
	if c.AccessKeyID == "" {
		missing = append(missing, "access_key_id")
	}
	if c.SecretAccessKey == "" {
		missing = append(missing, "secret_access_key")
	}
	if c.SellerID == "" {
		missing = append(missing, "seller_id")
	}
	if c.RefreshToken == "" {
		missing = append(missing, "refresh_token")
	}
	if c.ClientID == "" {
		missing = append(missing, "client_id")
	}
	if c.ClientSecret == "" {
		missing = append(missing, "client_secret")
	}
	if len(missing) > 0 {
		return NewConfigError(CodeAmazon, missing...)
	}
	return nil
}

// SigningRegion returns the configured signing region, defaulting to eu-west-1
func (c *AmazonCredentials) SigningRegion() string {
	if c.Region == "" {
		return "eu-west-1"
	}
	return c.Region
}

// ShopifyCredentials authenticate against a Shopify storefront admin API
type ShopifyCredentials struct {
	ShopDomain  string
	AccessToken string
}

// Marketplace returns CodeShopify
func (c *ShopifyCredentials) Marketplace() Code { return CodeShopify }

// Validate checks required fields
func (c *ShopifyCredentials) Validate() error {
	var missing []string
	if c.ShopDomain == "" {
		missing = append(missing, "shop_domain")
	}
	if c.AccessToken == "" {
		missing = append(missing, "access_token")
	}
	if len(missing) > 0 {
		return NewConfigError(CodeShopify, missing...)
	}
	return nil
}

// N11Credentials authenticate against the N11 marketplace API
type N11Credentials struct {
	APIKey    string
	APISecret string
}

// Marketplace returns CodeN11
func (c *N11Credentials) Marketplace() Code { return CodeN11 }

// Validate checks required fields
func (c *N11Credentials) Validate() error {
	var missing []string
	if c.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if c.APISecret == "" {
		missing = append(missing, "api_secret")
	}
	if len(missing) > 0 {
		return NewConfigError(CodeN11, missing...)
	}
	return nil
}
