// internal/handlers/sync.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hpratama/gudang-be/internal/core/ports"
)

// SyncHandler handles sync engine HTTP requests
type SyncHandler struct {
	service     ports.SyncService
	stockCache  ports.StockCacheInvalidator
	warehouseID int64
	logger      *slog.Logger
}

// NewSyncHandler creates a new sync handler. stockCache may be nil.
func NewSyncHandler(service ports.SyncService, stockCache ports.StockCacheInvalidator, warehouseID int64, logger *slog.Logger) *SyncHandler {
	return &SyncHandler{
		service:     service,
		stockCache:  stockCache,
		warehouseID: warehouseID,
		logger:      logger.With(slog.String("handler", "sync")),
	}
}

// TriggerSync handles POST /api/v1/sync/run. The run executes synchronously;
// the response carries the run outcome.
func (h *SyncHandler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	h.logger.InfoContext(ctx, "sync run triggered via API")

	summary := h.service.Run(ctx)
	if !summary.Success {
		respondJSON(w, http.StatusBadGateway, summary)
		return
	}

	// The run rewrote the stock rows; the cached listing is stale now.
	if h.stockCache != nil {
		h.stockCache.InvalidateStockCache(ctx, h.warehouseID)
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetStatus handles GET /api/v1/sync/status
func (h *SyncHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	status, err := h.service.Status(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query sync status",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to query sync status")
		return
	}

	respondJSON(w, http.StatusOK, status)
}

// GetHistory handles GET /api/v1/sync/history
func (h *SyncHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.service.History(ctx, limit)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to query sync history",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to query sync history")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"runs":  runs,
		"count": len(runs),
	})
}
