package marketplaces

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/Alphie01/eticaretAraEntegrat-r-sub000/internal/domain/marketplace"
)

// formatInt renders a vendor numeric identifier as a string target id
func formatInt(id int64) string {
	return strconv.FormatInt(id, 10)
}

// applyBatchItems runs the per-item price/stock updates for an adapter-level
// batch. One item's failure is recorded and never aborts the rest.
func applyBatchItems(
	ctx context.Context,
	items []marketplace.BatchItem,
	updatePrice func(ctx context.Context, item marketplace.BatchItem) error,
	updateStock func(ctx context.Context, item marketplace.BatchItem) error,
) (*marketplace.BatchResult, error) {
	if len(items) == 0 {
		return nil, marketplace.ErrEmptyBatch
	}

	result := &marketplace.BatchResult{}
	for _, item := range items {
		if err := applyBatchItem(ctx, item, updatePrice, updateStock); err != nil {
			result.Record(marketplace.BatchItemResult{
				TargetID: item.TargetID,
				Status:   marketplace.BatchItemFailed,
				Message:  err.Error(),
				Err:      err,
			})
			continue
		}
		result.Record(marketplace.BatchItemResult{
			TargetID: item.TargetID,
			Status:   marketplace.BatchItemSuccess,
		})
	}
	return result, nil
}

func applyBatchItem(
	ctx context.Context,
	item marketplace.BatchItem,
	updatePrice func(ctx context.Context, item marketplace.BatchItem) error,
	updateStock func(ctx context.Context, item marketplace.BatchItem) error,
) error {
	if item.Price != nil {
		if err := updatePrice(ctx, item); err != nil {
			return err
		}
	}
	if item.Stock != nil {
		if err := updateStock(ctx, item); err != nil {
			return err
		}
	}
	return nil
}

// mapOrderStatus translates a vendor status code through the adapter's
// vocabulary table. Unknown codes default to pending with a logged warning;
// they never fail the call.
func mapOrderStatus(table map[string]marketplace.OrderStatus, vendorCode string, code marketplace.Code, logger *zap.Logger) marketplace.OrderStatus {
	if status, ok := table[vendorCode]; ok {
		return status
	}
	logger.Warn("unrecognized vendor order status, defaulting to pending",
		zap.String("marketplace", code.String()),
		zap.String("vendor_status", vendorCode),
	)
	return marketplace.OrderStatusPending
}
