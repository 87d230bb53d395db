package marketplaces

import (
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/infrastructure/cache"
)

// AdapterFactory builds vendor adapters from resolved credentials. One
// builder per supported marketplace; per-marketplace options come from
// configuration and default sensibly.
type AdapterFactory struct {
	options    map[marketplace.Code]Options
	tokenStore cache.TokenStore
	logger     *zap.Logger
}

// NewAdapterFactory creates an AdapterFactory. The token store is shared
// by bearer-based adapters; pass nil to let each adapter own one.
func NewAdapterFactory(tokenStore cache.TokenStore, logger *zap.Logger) *AdapterFactory {
	return &AdapterFactory{
		options:    make(map[marketplace.Code]Options),
		tokenStore: tokenStore,
		logger:     logger,
	}
}

var _ marketplace.Factory = (*AdapterFactory)(nil)

// SetOptions overrides the construction options for one marketplace
func (f *AdapterFactory) SetOptions(code marketplace.Code, opts Options) {
	f.options[code] = opts
}

// optionsFor returns the configured options for the marketplace
func (f *AdapterFactory) optionsFor(code marketplace.Code) Options {
	opts := f.options[code]
	if opts.TokenStore == nil {
		opts.TokenStore = f.tokenStore
	}
	return opts
}

// Build constructs an unauthenticated adapter for the credential set.
// Validation happens inside the typed conversion; missing fields surface
// as *ConfigError before any construction work.
func (f *AdapterFactory) Build(creds *marketplace.ResolvedCredentials) (marketplace.Adapter, error) {
	typed, err := creds.Typed()
	if err != nil {
		return nil, err
	}

	logger := f.logger.With(
		zap.String("marketplace", creds.Marketplace.String()),
		zap.String("credential_source", string(creds.Source)),
	)

	switch c := typed.(type) {
	case *marketplace.TrendyolCredentials:
		return NewTrendyolAdapter(c, f.optionsFor(marketplace.CodeTrendyol), logger)
	case *marketplace.AmazonCredentials:
		return NewAmazonAdapter(c, f.optionsFor(marketplace.CodeAmazon), logger)
	case *marketplace.ShopifyCredentials:
		return NewShopifyAdapter(c, f.optionsFor(marketplace.CodeShopify), logger)
	case *marketplace.N11Credentials:
		return NewN11Adapter(c, f.optionsFor(marketplace.CodeN11), logger)
	default:
		return nil, marketplace.ErrAdapterNotSupported
	}
}

// Supported returns the marketplace codes builders exist for
func (f *AdapterFactory) Supported() []marketplace.Code {
	return []marketplace.Code{
		marketplace.CodeTrendyol,
		marketplace.CodeAmazon,
		marketplace.CodeShopify,
		marketplace.CodeN11,
	}
}
