package gateway

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// ---------------------------------------------------------------------------
// Fakes
// ---------------------------------------------------------------------------

type stubAdapter struct {
	code      marketplace.Code
	authCalls atomic.Int32
	authErr   error
	closed    atomic.Bool
	lastReq   atomic.Int64
}

func (a *stubAdapter) Marketplace() marketplace.Code { return a.code }

func (a *stubAdapter) Authenticate(ctx context.Context) error {
	a.authCalls.Add(1)
	return a.authErr
}

func (a *stubAdapter) ListProducts(ctx context.Context, q marketplace.ProductQuery) (*marketplace.ProductPage, error) {
	return &marketplace.ProductPage{}, nil
}

func (a *stubAdapter) CreateProduct(ctx context.Context, p *marketplace.Product) (string, error) {
	return "", nil
}

func (a *stubAdapter) UpdateProduct(ctx context.Context, p *marketplace.Product) error { return nil }
func (a *stubAdapter) DeleteProduct(ctx context.Context, targetID string) error        { return nil }

func (a *stubAdapter) UpdateStock(ctx context.Context, targetID string, stock decimal.Decimal) error {
	return nil
}

func (a *stubAdapter) UpdatePrice(ctx context.Context, targetID string, price decimal.Decimal) error {
	return nil
}

func (a *stubAdapter) ListOrders(ctx context.Context, q marketplace.OrderQuery) (*marketplace.OrderPage, error) {
	return &marketplace.OrderPage{}, nil
}

func (a *stubAdapter) UpdateOrderStatus(ctx context.Context, orderID string, status marketplace.OrderStatus) error {
	return nil
}

func (a *stubAdapter) ListCategories(ctx context.Context) ([]marketplace.Category, error) {
	return nil, nil
}

func (a *stubAdapter) BatchUpdatePricesAndStock(ctx context.Context, items []marketplace.BatchItem) (*marketplace.BatchResult, error) {
	return &marketplace.BatchResult{}, nil
}

func (a *stubAdapter) LastRequestAt() time.Time {
	if unix := a.lastReq.Load(); unix != 0 {
		return time.Unix(unix, 0)
	}
	return time.Time{}
}

func (a *stubAdapter) Close() error {
	a.closed.Store(true)
	return nil
}

var _ marketplace.Adapter = (*stubAdapter)(nil)

type stubFactory struct {
	mu      sync.Mutex
	builds  int
	authErr error
	built   []*stubAdapter
}

func (f *stubFactory) Build(creds *marketplace.ResolvedCredentials) (marketplace.Adapter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.builds++
	adapter := &stubAdapter{code: creds.Marketplace, authErr: f.authErr}
	f.built = append(f.built, adapter)
	return adapter, nil
}

func (f *stubFactory) Supported() []marketplace.Code {
	return []marketplace.Code{marketplace.CodeTrendyol}
}

func (f *stubFactory) buildCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.builds
}

type stubResolver struct {
	resolves atomic.Int32
	err      error
}

func (r *stubResolver) Resolve(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) (*marketplace.ResolvedCredentials, error) {
	r.resolves.Add(1)
	if r.err != nil {
		return nil, r.err
	}
	return &marketplace.ResolvedCredentials{
		Marketplace: code,
		Source:      marketplace.SourceTenant,
		APIKey:      "k",
		APISecret:   "s",
		Identifier:  "9001",
	}, nil
}

// ---------------------------------------------------------------------------
// Tests
// ---------------------------------------------------------------------------

func TestAdapterManager_ReusesInstanceAndAuthenticatesOnce(t *testing.T) {
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	defer manager.Close()

	tenantID := uuid.New()
	first, err := manager.GetAdapter(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)
	second, err := manager.GetAdapter(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, factory.buildCount())
	assert.Equal(t, int32(1), factory.built[0].authCalls.Load())
}

func TestAdapterManager_DistinctPairsGetDistinctInstances(t *testing.T) {
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	defer manager.Close()

	tenantA := uuid.New()
	tenantB := uuid.New()

	a1, err := manager.GetAdapter(context.Background(), tenantA, marketplace.CodeTrendyol)
	require.NoError(t, err)
	a2, err := manager.GetAdapter(context.Background(), tenantA, marketplace.CodeN11)
	require.NoError(t, err)
	b1, err := manager.GetAdapter(context.Background(), tenantB, marketplace.CodeTrendyol)
	require.NoError(t, err)

	assert.NotSame(t, a1, a2)
	assert.NotSame(t, a1, b1)
	assert.Equal(t, 3, manager.PoolSize())
}

func TestAdapterManager_ConcurrentFirstUseBuildsOnce(t *testing.T) {
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	defer manager.Close()

	tenantID := uuid.New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := manager.GetAdapter(context.Background(), tenantID, marketplace.CodeTrendyol)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, factory.buildCount())
	assert.Equal(t, int32(1), factory.built[0].authCalls.Load())
}

func TestAdapterManager_AuthFailureIsNotPooled(t *testing.T) {
	factory := &stubFactory{authErr: &marketplace.APIError{
		Code:        marketplace.CodeAuthFailed,
		Message:     "bad credentials",
		Marketplace: marketplace.CodeTrendyol,
	}}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	defer manager.Close()

	_, err := manager.GetAdapter(context.Background(), uuid.New(), marketplace.CodeTrendyol)
	require.Error(t, err)

	apiErr, ok := marketplace.AsAPIError(err)
	require.True(t, ok)
	assert.True(t, apiErr.IsAuthFailure())
	assert.Equal(t, 0, manager.PoolSize())
	assert.True(t, factory.built[0].closed.Load())
}

func TestAdapterManager_ResolveFailurePropagates(t *testing.T) {
	manager := NewAdapterManager(&stubResolver{err: marketplace.ErrCredentialsNotFound}, &stubFactory{}, zap.NewNop())
	defer manager.Close()

	_, err := manager.GetAdapter(context.Background(), uuid.New(), marketplace.CodeTrendyol)
	assert.ErrorIs(t, err, marketplace.ErrCredentialsNotFound)
}

func TestAdapterManager_ValidatesInput(t *testing.T) {
	manager := NewAdapterManager(&stubResolver{}, &stubFactory{}, zap.NewNop())
	defer manager.Close()

	_, err := manager.GetAdapter(context.Background(), uuid.Nil, marketplace.CodeTrendyol)
	assert.ErrorIs(t, err, marketplace.ErrInvalidTenantID)

	_, err = manager.GetAdapter(context.Background(), uuid.New(), marketplace.Code("ebay"))
	assert.ErrorIs(t, err, marketplace.ErrInvalidMarketplaceCode)
}

func TestAdapterManager_InvalidateForcesRebuild(t *testing.T) {
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	defer manager.Close()

	tenantID := uuid.New()
	first, err := manager.GetAdapter(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)

	manager.Invalidate(tenantID, marketplace.CodeTrendyol)
	assert.True(t, factory.built[0].closed.Load())

	second, err := manager.GetAdapter(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)
	assert.NotSame(t, first, second)
	assert.Equal(t, 2, factory.buildCount())
}

func TestAdapterManager_ClearTenant(t *testing.T) {
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	defer manager.Close()

	tenantA := uuid.New()
	tenantB := uuid.New()
	_, err := manager.GetAdapter(context.Background(), tenantA, marketplace.CodeTrendyol)
	require.NoError(t, err)
	_, err = manager.GetAdapter(context.Background(), tenantA, marketplace.CodeN11)
	require.NoError(t, err)
	_, err = manager.GetAdapter(context.Background(), tenantB, marketplace.CodeTrendyol)
	require.NoError(t, err)

	manager.ClearTenant(tenantA)
	assert.Equal(t, 1, manager.PoolSize())
}

func TestAdapterManager_SweepEvictsIdleAdapters(t *testing.T) {
	current := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop(),
		WithIdleTTL(time.Hour),
		WithClock(func() time.Time { return current }),
	)
	defer manager.Close()

	tenantID := uuid.New()
	_, err := manager.GetAdapter(context.Background(), tenantID, marketplace.CodeTrendyol)
	require.NoError(t, err)

	// Still inside the TTL, nothing is evicted
	current = current.Add(30 * time.Minute)
	assert.Equal(t, 0, manager.SweepIdle())
	assert.Equal(t, 1, manager.PoolSize())

	// Past the TTL with no requests since creation
	current = current.Add(45 * time.Minute)
	assert.Equal(t, 1, manager.SweepIdle())
	assert.Equal(t, 0, manager.PoolSize())
	assert.True(t, factory.built[0].closed.Load())
}

func TestAdapterManager_SweepKeepsRecentlyUsedAdapters(t *testing.T) {
	current := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop(),
		WithIdleTTL(time.Hour),
		WithClock(func() time.Time { return current }),
	)
	defer manager.Close()

	_, err := manager.GetAdapter(context.Background(), uuid.New(), marketplace.CodeTrendyol)
	require.NoError(t, err)

	// The adapter made a call halfway through the idle window
	current = current.Add(2 * time.Hour)
	factory.built[0].lastReq.Store(current.Add(-30 * time.Minute).Unix())

	assert.Equal(t, 0, manager.SweepIdle())
	assert.Equal(t, 1, manager.PoolSize())
}

func TestAdapterManager_CloseShutsDownPool(t *testing.T) {
	factory := &stubFactory{}
	manager := NewAdapterManager(&stubResolver{}, factory, zap.NewNop())
	manager.StartSweeper(time.Minute)

	_, err := manager.GetAdapter(context.Background(), uuid.New(), marketplace.CodeTrendyol)
	require.NoError(t, err)

	require.NoError(t, manager.Close())
	assert.Equal(t, 0, manager.PoolSize())
	assert.True(t, factory.built[0].closed.Load())

	// Idempotent
	require.NoError(t, manager.Close())
}
