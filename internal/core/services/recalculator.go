// internal/core/services/recalculator.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// StockRecalculator rebuilds warehouse stock quantities from item statuses.
// It is a full overwrite, not an incremental adjustment: running it twice
// with no intervening reconciliation produces the same rows.
type StockRecalculator struct {
	products    ports.ProductRepository
	items       ports.ItemRepository
	stock       ports.StockRepository
	warehouseID int64
	logger      *slog.Logger
}

// NewStockRecalculator creates a recalculator targeting the given warehouse.
func NewStockRecalculator(products ports.ProductRepository, items ports.ItemRepository, stock ports.StockRepository, warehouseID int64, logger *slog.Logger) *StockRecalculator {
	return &StockRecalculator{
		products:    products,
		items:       items,
		stock:       stock,
		warehouseID: warehouseID,
		logger:      logger.With(slog.String("component", "stock_recalculator")),
	}
}

// Recalculate overwrites each product's warehouse stock row with the count of
// its items whose status is in the warehouse-status set, creating rows as
// needed.
func (s *StockRecalculator) Recalculate(ctx context.Context) error {
	products, _, err := s.products.FindAll(ctx, ports.ProductListParams{})
	if err != nil {
		return fmt.Errorf("listing products: %w", err)
	}

	statuses := domain.WarehouseStatuses()
	for _, product := range products {
		count, err := s.items.CountByProductAndStatuses(ctx, product.ID, statuses)
		if err != nil {
			return fmt.Errorf("counting warehouse items for product %d: %w", product.ID, err)
		}
		if err := s.stock.Upsert(ctx, &domain.Stock{
			ProductID:   product.ID,
			WarehouseID: s.warehouseID,
			Quantity:    count,
		}); err != nil {
			return fmt.Errorf("writing stock for product %d: %w", product.ID, err)
		}
	}

	s.logger.InfoContext(ctx, "stock recalculated",
		slog.Int("products", len(products)),
		slog.Int64("warehouse_id", s.warehouseID))

	return nil
}
