// internal/workers/sync_processor.go
package workers

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/hpratama/gudang-be/internal/core/ports"
)

// Task type names registered with the queue
const (
	TypeInventorySync = "sync:inventory"
)

// NewInventorySyncTask creates a queued sync task. The payload is empty; a
// sync run takes no parameters.
func NewInventorySyncTask() *asynq.Task {
	return asynq.NewTask(TypeInventorySync, nil, asynq.MaxRetry(0), asynq.Queue("default"))
}

// SyncProcessor runs scheduled and queued sync tasks
type SyncProcessor struct {
	service     ports.SyncService
	stockCache  ports.StockCacheInvalidator
	warehouseID int64
	logger      *slog.Logger
}

// NewSyncProcessor creates a new sync processor. stockCache may be nil.
func NewSyncProcessor(service ports.SyncService, stockCache ports.StockCacheInvalidator, warehouseID int64, logger *slog.Logger) *SyncProcessor {
	return &SyncProcessor{
		service:     service,
		stockCache:  stockCache,
		warehouseID: warehouseID,
		logger:      logger.With(slog.String("processor", "sync")),
	}
}

// ProcessSync executes one sync run. Retries are disabled at enqueue time:
// the run ledger already records the failure, and the next scheduled run
// covers the same ground.
func (p *SyncProcessor) ProcessSync(ctx context.Context, t *asynq.Task) error {
	p.logger.InfoContext(ctx, "processing scheduled sync")

	summary := p.service.Run(ctx)
	if !summary.Success {
		p.logger.ErrorContext(ctx, "scheduled sync failed",
			slog.String("message", summary.Message))
		return fmt.Errorf("sync run failed: %s", summary.Message)
	}

	// The API serves stock from the same cache; drop it so the next read
	// sees the recalculated quantities.
	if p.stockCache != nil {
		p.stockCache.InvalidateStockCache(ctx, p.warehouseID)
	}

	p.logger.InfoContext(ctx, "scheduled sync completed",
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("errors", summary.Errors))

	return nil
}
