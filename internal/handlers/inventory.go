// internal/handlers/inventory.go
package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/hpratama/gudang-be/internal/core/ports"
)

// InventoryHandler handles read queries over the synced catalog
type InventoryHandler struct {
	service     ports.InventoryService
	warehouseID int64
	logger      *slog.Logger
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(service ports.InventoryService, warehouseID int64, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{
		service:     service,
		warehouseID: warehouseID,
		logger:      logger.With(slog.String("handler", "inventory")),
	}
}

// ListProducts handles GET /api/v1/products
func (h *InventoryHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.ProductListParams{
		Search:   r.URL.Query().Get("search"),
		Category: r.URL.Query().Get("category"),
		SortBy:   r.URL.Query().Get("sort"),
		Page:     parseIntParam(r, "page", 1),
		PageSize: clampPageSize(parseIntParam(r, "limit", 50)),
	}

	result, err := h.service.ListProducts(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list products",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list products")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}
func (h *InventoryHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	product, err := h.service.GetProduct(ctx, id)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get product",
			slog.Int64("id", id),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve product")
		return
	}
	if product == nil {
		respondError(w, http.StatusNotFound, "Product not found")
		return
	}

	respondJSON(w, http.StatusOK, product)
}

// ListItems handles GET /api/v1/items
func (h *InventoryHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	params := ports.ItemListParams{
		Search:   r.URL.Query().Get("search"),
		Status:   r.URL.Query().Get("status"),
		SortBy:   r.URL.Query().Get("sort"),
		Page:     parseIntParam(r, "page", 1),
		PageSize: clampPageSize(parseIntParam(r, "limit", 50)),
	}
	if v := r.URL.Query().Get("product_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			params.ProductID = id
		}
	}

	result, err := h.service.ListItems(ctx, params)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list items",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list items")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetItem handles GET /api/v1/items/{serial}
func (h *InventoryHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	serial := r.PathValue("serial")

	detail, err := h.service.GetItemBySerial(ctx, serial)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get item",
			slog.String("serial_number", serial),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to retrieve item")
		return
	}
	if detail == nil {
		respondError(w, http.StatusNotFound, "Item not found")
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// ListStock handles GET /api/v1/stock
func (h *InventoryHandler) ListStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	warehouseID := h.warehouseID
	if v := r.URL.Query().Get("warehouse_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			warehouseID = id
		}
	}

	lines, err := h.service.ListStock(ctx, warehouseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list stock",
			slog.Int64("warehouse_id", warehouseID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to list stock")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"warehouse_id": warehouseID,
		"stock":        lines,
	})
}

func parseIntParam(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func clampPageSize(n int) int {
	if n > 100 {
		return 100
	}
	return n
}
