// internal/core/ports/inventory_service.go
package ports

import (
	"context"

	"github.com/hpratama/gudang-be/internal/core/domain"
)

// InventoryService is the read-side application port over the synced catalog.
type InventoryService interface {
	ListProducts(ctx context.Context, params ProductListParams) (*ProductList, error)
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	ListItems(ctx context.Context, params ItemListParams) (*ItemList, error)
	GetItemBySerial(ctx context.Context, serialNumber string) (*ItemDetail, error)
	ListStock(ctx context.Context, warehouseID int64) ([]*StockLine, error)
}

// StockCacheInvalidator drops cached stock listings after a sync run has
// rewritten the underlying rows.
type StockCacheInvalidator interface {
	InvalidateStockCache(ctx context.Context, warehouseID int64)
}

// ProductList is a paginated product listing.
type ProductList struct {
	Products []*domain.Product `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}

// ItemList is a paginated item listing.
type ItemList struct {
	Items    []*domain.Item `json:"items"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

// ItemDetail is one item with its history trail.
type ItemDetail struct {
	Item    *domain.Item           `json:"item"`
	History []*domain.HistoryEvent `json:"history"`
}

// StockLine joins a stock row with its product for display and export.
type StockLine struct {
	ProductID   int64  `json:"product_id"`
	SKU         string `json:"sku"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Unit        string `json:"unit"`
	WarehouseID int64  `json:"warehouse_id"`
	Quantity    int64  `json:"quantity"`
}
