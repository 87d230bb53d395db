// Package gateway manages the pool of live marketplace adapter instances.
// One authenticated adapter is held per (tenant, marketplace) pair; idle
// instances are evicted by a background sweep.
package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// defaultIdleTTL is how long an adapter may sit unused before eviction
const defaultIdleTTL = time.Hour

// defaultSweepInterval is how often the idle sweep runs
const defaultSweepInterval = 10 * time.Minute

// CredentialResolver resolves effective credentials for a tenant and
// marketplace. The vault implements this.
type CredentialResolver interface {
	Resolve(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) (*marketplace.ResolvedCredentials, error)
}

// adapterKey identifies one pooled adapter instance
type adapterKey struct {
	tenantID uuid.UUID
	code     marketplace.Code
}

func (k adapterKey) String() string {
	return k.tenantID.String() + "|" + k.code.String()
}

// adapterEntry is one pooled adapter with its bookkeeping
type adapterEntry struct {
	adapter   marketplace.Adapter
	createdAt time.Time
}

// lastUsedAt falls back to creation time until the adapter has made a call
func (e *adapterEntry) lastUsedAt() time.Time {
	if last := e.adapter.LastRequestAt(); !last.IsZero() {
		return last
	}
	return e.createdAt
}

// AdapterManager hands out authenticated adapter instances, creating and
// authenticating each (tenant, marketplace) pair at most once. Concurrent
// first requests for the same pair share one construction via single-flight.
type AdapterManager struct {
	resolver CredentialResolver
	factory  marketplace.Factory
	logger   *zap.Logger

	mu       sync.RWMutex
	adapters map[adapterKey]*adapterEntry
	group    singleflight.Group

	idleTTL time.Duration
	now     func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// ManagerOption customizes an AdapterManager
type ManagerOption func(*AdapterManager)

// WithIdleTTL overrides how long adapters may sit unused before eviction
func WithIdleTTL(ttl time.Duration) ManagerOption {
	return func(m *AdapterManager) {
		m.idleTTL = ttl
	}
}

// WithClock overrides the time source, for tests
func WithClock(now func() time.Time) ManagerOption {
	return func(m *AdapterManager) {
		m.now = now
	}
}

// NewAdapterManager creates an AdapterManager
func NewAdapterManager(resolver CredentialResolver, factory marketplace.Factory, logger *zap.Logger, opts ...ManagerOption) *AdapterManager {
	m := &AdapterManager{
		resolver: resolver,
		factory:  factory,
		logger:   logger,
		adapters: make(map[adapterKey]*adapterEntry),
		idleTTL:  defaultIdleTTL,
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetAdapter returns the live adapter for the pair, creating and
// authenticating it on first use
func (m *AdapterManager) GetAdapter(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) (marketplace.Adapter, error) {
	if tenantID == uuid.Nil {
		return nil, marketplace.ErrInvalidTenantID
	}
	if !code.IsValid() {
		return nil, marketplace.ErrInvalidMarketplaceCode
	}

	key := adapterKey{tenantID: tenantID, code: code}

	m.mu.RLock()
	entry, ok := m.adapters[key]
	m.mu.RUnlock()
	if ok {
		return entry.adapter, nil
	}

	result, err, _ := m.group.Do(key.String(), func() (interface{}, error) {
		// Another caller may have populated the pool while this one
		// waited for the flight slot
		m.mu.RLock()
		entry, ok := m.adapters[key]
		m.mu.RUnlock()
		if ok {
			return entry.adapter, nil
		}
		return m.createAdapter(ctx, key)
	})
	if err != nil {
		return nil, err
	}
	return result.(marketplace.Adapter), nil
}

// createAdapter resolves credentials, builds the adapter, authenticates it
// and registers it in the pool
func (m *AdapterManager) createAdapter(ctx context.Context, key adapterKey) (marketplace.Adapter, error) {
	creds, err := m.resolver.Resolve(ctx, key.tenantID, key.code)
	if err != nil {
		return nil, err
	}

	adapter, err := m.factory.Build(creds)
	if err != nil {
		return nil, err
	}

	if err := adapter.Authenticate(ctx); err != nil {
		adapter.Close()
		return nil, fmt.Errorf("gateway: initial authentication failed: %w", err)
	}

	m.mu.Lock()
	m.adapters[key] = &adapterEntry{adapter: adapter, createdAt: m.now()}
	poolSize := len(m.adapters)
	m.mu.Unlock()

	m.logger.Info("gateway: adapter created",
		zap.String("tenant_id", key.tenantID.String()),
		zap.String("marketplace", key.code.String()),
		zap.String("credential_source", string(creds.Source)),
		zap.Int("pool_size", poolSize),
	)
	return adapter, nil
}

// Invalidate drops the pooled adapter for the pair, if any. The next
// GetAdapter re-resolves credentials and re-authenticates, so this is the
// hook for credential rotation.
func (m *AdapterManager) Invalidate(tenantID uuid.UUID, code marketplace.Code) {
	key := adapterKey{tenantID: tenantID, code: code}

	m.mu.Lock()
	entry, ok := m.adapters[key]
	if ok {
		delete(m.adapters, key)
	}
	m.mu.Unlock()

	if ok {
		m.closeEntry(key, entry)
	}
}

// ClearTenant drops every pooled adapter the tenant owns
func (m *AdapterManager) ClearTenant(tenantID uuid.UUID) {
	evicted := make(map[adapterKey]*adapterEntry)

	m.mu.Lock()
	for key, entry := range m.adapters {
		if key.tenantID == tenantID {
			evicted[key] = entry
			delete(m.adapters, key)
		}
	}
	m.mu.Unlock()

	for key, entry := range evicted {
		m.closeEntry(key, entry)
	}
}

// PoolSize reports how many adapters are currently pooled
func (m *AdapterManager) PoolSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.adapters)
}

// StartSweeper launches the background idle eviction loop
func (m *AdapterManager) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = defaultSweepInterval
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.SweepIdle()
			case <-m.stopChan:
				return
			}
		}
	}()
}

// SweepIdle evicts every adapter that has been idle longer than the TTL
// and returns how many were evicted
func (m *AdapterManager) SweepIdle() int {
	cutoff := m.now().Add(-m.idleTTL)
	evicted := make(map[adapterKey]*adapterEntry)

	m.mu.Lock()
	for key, entry := range m.adapters {
		if entry.lastUsedAt().Before(cutoff) {
			evicted[key] = entry
			delete(m.adapters, key)
		}
	}
	m.mu.Unlock()

	for key, entry := range evicted {
		m.logger.Info("gateway: evicting idle adapter",
			zap.String("tenant_id", key.tenantID.String()),
			zap.String("marketplace", key.code.String()),
			zap.Time("last_used_at", entry.lastUsedAt()),
		)
		m.closeEntry(key, entry)
	}
	return len(evicted)
}

// closeEntry closes one adapter, logging failures
func (m *AdapterManager) closeEntry(key adapterKey, entry *adapterEntry) {
	if err := entry.adapter.Close(); err != nil {
		m.logger.Warn("gateway: adapter close failed",
			zap.String("tenant_id", key.tenantID.String()),
			zap.String("marketplace", key.code.String()),
			zap.Error(err),
		)
	}
}

// Close stops the sweeper and closes every pooled adapter
func (m *AdapterManager) Close() error {
	m.closeOnce.Do(func() {
		close(m.stopChan)
		m.wg.Wait()

		m.mu.Lock()
		adapters := m.adapters
		m.adapters = make(map[adapterKey]*adapterEntry)
		m.mu.Unlock()

		for key, entry := range adapters {
			m.closeEntry(key, entry)
		}
	})
	return nil
}
