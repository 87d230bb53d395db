// Package sync pushes price and stock changes to marketplaces in paced,
// failure-isolated batches.
package sync

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

const (
	// defaultChunkSize is how many items one chunk carries
	defaultChunkSize = 50
	// defaultConcurrency bounds in-flight items within a chunk
	defaultConcurrency = 5
	// defaultChunkPause is the minimum spacing between chunk starts
	defaultChunkPause = time.Second
)

// AdapterProvider hands out live adapters. The gateway manager implements
// this.
type AdapterProvider interface {
	GetAdapter(ctx context.Context, tenantID uuid.UUID, code marketplace.Code) (marketplace.Adapter, error)
}

// Engine applies batched price/stock changes through pooled adapters.
// Items are processed in chunks with bounded concurrency inside each chunk
// and rate-limited pacing between chunks, so a large batch cannot starve
// the vendor budget of interactive calls.
type Engine struct {
	provider    AdapterProvider
	logger      *zap.Logger
	chunkSize   int
	concurrency int
	pacer       *rate.Limiter
}

// EngineOption customizes an Engine
type EngineOption func(*Engine)

// WithChunkSize overrides how many items one chunk carries
func WithChunkSize(size int) EngineOption {
	return func(e *Engine) {
		if size > 0 {
			e.chunkSize = size
		}
	}
}

// WithConcurrency overrides the in-chunk worker bound
func WithConcurrency(n int) EngineOption {
	return func(e *Engine) {
		if n > 0 {
			e.concurrency = n
		}
	}
}

// WithChunkPause overrides the minimum spacing between chunk starts
func WithChunkPause(pause time.Duration) EngineOption {
	return func(e *Engine) {
		if pause > 0 {
			e.pacer = rate.NewLimiter(rate.Every(pause), 1)
		}
	}
}

// NewEngine creates an Engine
func NewEngine(provider AdapterProvider, logger *zap.Logger, opts ...EngineOption) *Engine {
	e := &Engine{
		provider:    provider,
		logger:      logger,
		chunkSize:   defaultChunkSize,
		concurrency: defaultConcurrency,
		pacer:       rate.NewLimiter(rate.Every(defaultChunkPause), 1),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// UpdatePricesAndStock applies the items against one marketplace. Item
// failures are recorded, never fatal; the result carries one detail per
// input item in input order. Context cancellation stops scheduling new
// items while letting in-flight ones finish.
func (e *Engine) UpdatePricesAndStock(ctx context.Context, tenantID uuid.UUID, code marketplace.Code, items []marketplace.BatchItem) (*marketplace.BatchResult, error) {
	if len(items) == 0 {
		return nil, marketplace.ErrEmptyBatch
	}

	adapter, err := e.provider.GetAdapter(ctx, tenantID, code)
	if err != nil {
		return nil, err
	}

	details := make([]marketplace.BatchItemResult, len(items))
	cancelled := false

	for start := 0; start < len(items) && !cancelled; start += e.chunkSize {
		if start > 0 {
			if err := e.pacer.Wait(ctx); err != nil {
				cancelled = true
				break
			}
		}

		end := start + e.chunkSize
		if end > len(items) {
			end = len(items)
		}

		sem := make(chan struct{}, e.concurrency)
		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				cancelled = true
				break
			}
			sem <- struct{}{}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				defer func() { <-sem }()
				details[i] = e.applyItem(ctx, adapter, items[i])
			}(i)
		}
		wg.Wait()
	}

	result := &marketplace.BatchResult{}
	for i, detail := range details {
		if detail.Status == "" {
			// Never scheduled; the context was cancelled first
			detail = marketplace.BatchItemResult{
				TargetID: items[i].TargetID,
				Status:   marketplace.BatchItemFailed,
				Message:  "cancelled before scheduling",
				Err:      ctx.Err(),
			}
		}
		result.Record(detail)
	}

	e.logger.Info("sync: batch finished",
		zap.String("tenant_id", tenantID.String()),
		zap.String("marketplace", code.String()),
		zap.Int("successful", result.Successful),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

// applyItem pushes one item's changes, capturing panics as item failures
func (e *Engine) applyItem(ctx context.Context, adapter marketplace.Adapter, item marketplace.BatchItem) (res marketplace.BatchItemResult) {
	defer func() {
		if r := recover(); r != nil {
			res = marketplace.BatchItemResult{
				TargetID: item.TargetID,
				Status:   marketplace.BatchItemFailed,
				Message:  fmt.Sprintf("panic applying item: %v", r),
				Err:      fmt.Errorf("panic: %v", r),
			}
		}
	}()

	if item.Price == nil && item.Stock == nil {
		return marketplace.BatchItemResult{
			TargetID: item.TargetID,
			Status:   marketplace.BatchItemFailed,
			Message:  "neither price nor stock set",
		}
	}
	if item.Price != nil {
		if err := adapter.UpdatePrice(ctx, item.TargetID, *item.Price); err != nil {
			return marketplace.BatchItemResult{
				TargetID: item.TargetID,
				Status:   marketplace.BatchItemFailed,
				Message:  err.Error(),
				Err:      err,
			}
		}
	}
	if item.Stock != nil {
		if err := adapter.UpdateStock(ctx, item.TargetID, *item.Stock); err != nil {
			return marketplace.BatchItemResult{
				TargetID: item.TargetID,
				Status:   marketplace.BatchItemFailed,
				Message:  err.Error(),
				Err:      err,
			}
		}
	}
	return marketplace.BatchItemResult{TargetID: item.TargetID, Status: marketplace.BatchItemSuccess}
}

// FanOutResult is the per-marketplace outcome of a cross-marketplace sync
type FanOutResult struct {
	// Marketplace identifies the target
	Marketplace marketplace.Code `json:"marketplace"`
	// Result is the batch outcome, nil when the marketplace failed outright
	Result *marketplace.BatchResult `json:"result,omitempty"`
	// Error describes a marketplace-level failure (adapter construction,
	// credentials), empty otherwise
	Error string `json:"error,omitempty"`
	// Err holds the underlying error. Not serialized.
	Err error `json:"-"`
}

// SyncAcrossMarketplaces pushes the same items to several marketplaces
// concurrently. Each marketplace's failure lands in its own result entry
// and never cancels the siblings.
func (e *Engine) SyncAcrossMarketplaces(ctx context.Context, tenantID uuid.UUID, items []marketplace.BatchItem, codes []marketplace.Code) []FanOutResult {
	results := make([]FanOutResult, len(codes))

	var g errgroup.Group
	for i, code := range codes {
		i, code := i, code
		g.Go(func() error {
			result, err := e.UpdatePricesAndStock(ctx, tenantID, code, items)
			results[i] = FanOutResult{Marketplace: code, Result: result, Err: err}
			if err != nil {
				results[i].Error = err.Error()
				e.logger.Warn("sync: marketplace fan-out target failed",
					zap.String("tenant_id", tenantID.String()),
					zap.String("marketplace", code.String()),
					zap.Error(err),
				)
			}
			return nil
		})
	}
	g.Wait()
	return results
}
