// internal/core/ports/repositories.go
package ports

import (
	"context"

	"github.com/hpratama/gudang-be/internal/core/domain"
)

// ProductRepository defines the persistence port for the product catalog.
type ProductRepository interface {
	FindByName(ctx context.Context, name string) (*domain.Product, error)
	FindByID(ctx context.Context, id int64) (*domain.Product, error)
	Save(ctx context.Context, product *domain.Product) error
	FindAll(ctx context.Context, params ProductListParams) ([]*domain.Product, int64, error)
	Count(ctx context.Context) (int64, error)
}

// ItemRepository defines the persistence port for serialized items. The
// store's unique constraints on serial number and MAC address are the final
// backstop against conflicting creates.
type ItemRepository interface {
	FindBySerial(ctx context.Context, serialNumber string) (*domain.Item, error)
	Save(ctx context.Context, item *domain.Item) error
	Update(ctx context.Context, item *domain.Item) error
	CountByProductAndStatuses(ctx context.Context, productID int64, statuses []string) (int64, error)
	FindAll(ctx context.Context, params ItemListParams) ([]*domain.Item, int64, error)
	Count(ctx context.Context) (int64, error)
}

// StockRepository defines the persistence port for derived warehouse stock.
type StockRepository interface {
	Upsert(ctx context.Context, stock *domain.Stock) error
	Find(ctx context.Context, productID, warehouseID int64) (*domain.Stock, error)
	FindAll(ctx context.Context, warehouseID int64) ([]*domain.Stock, error)
}

// HistoryRepository defines the append-only persistence port for item
// history events.
type HistoryRepository interface {
	Append(ctx context.Context, event *domain.HistoryEvent) error
	Exists(ctx context.Context, itemID int64, action domain.HistoryAction, notes string) (bool, error)
	FindByItem(ctx context.Context, itemID int64, limit int) ([]*domain.HistoryEvent, error)
}

// SyncRunRepository is the durable run ledger.
type SyncRunRepository interface {
	Create(ctx context.Context, run *domain.SyncRun) error
	Complete(ctx context.Context, id string, details string) error
	Fail(ctx context.Context, id string, errMsg string) error
	Latest(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// ProductListParams holds filters for listing products.
type ProductListParams struct {
	Search   string
	Category string
	SortBy   string
	Page     int
	PageSize int
}

// ItemListParams holds filters for listing items.
type ItemListParams struct {
	Search    string
	Status    string
	ProductID int64
	SortBy    string
	Page      int
	PageSize  int
}
