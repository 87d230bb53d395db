package marketplaces

import (
	"net/http"
	"time"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/cache"
)

// Default client settings, overridable per marketplace via configuration.
// Vendor budgets are operator-tunable policy values, not verified limits.
const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRequests = 10
	defaultWindow      = time.Second
)

// Options carries the tunables shared by every adapter constructor. Zero
// values fall back to vendor defaults; tests override BaseURL and HTTPClient.
type Options struct {
	// BaseURL overrides the vendor API endpoint
	BaseURL string
	// TokenURL overrides the OAuth2 token endpoint (bearer adapters only)
	TokenURL string
	// HTTPClient overrides the transport
	HTTPClient *http.Client
	// MaxRequests is the rate-limit budget per window
	MaxRequests int
	// Window is the rate-limit window duration
	Window time.Duration
	// TokenStore shares refreshed access tokens (bearer adapters only).
	// When nil the adapter owns a private in-memory store.
	TokenStore cache.TokenStore
}

// withDefaults fills unset fields from the vendor default base URL
func (o Options) withDefaults(baseURL string) Options {
	if o.BaseURL == "" {
		o.BaseURL = baseURL
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if o.MaxRequests <= 0 {
		o.MaxRequests = defaultMaxRequests
	}
	if o.Window <= 0 {
		o.Window = defaultWindow
	}
	return o
}
