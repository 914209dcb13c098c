// internal/adapters/db/stock_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// stockRepository implements ports.StockRepository
type stockRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewStockRepository creates a new stock repository
func NewStockRepository(db *Database, logger *slog.Logger) ports.StockRepository {
	return &stockRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "stock")),
	}
}

var _ ports.StockRepository = (*stockRepository)(nil)

// Upsert overwrites the stock quantity for a product in a warehouse. Stock
// rows are fully derived from the item table, so overwriting is always safe.
func (r *stockRepository) Upsert(ctx context.Context, stock *domain.Stock) error {
	query := `
		INSERT INTO stocks (product_id, warehouse_id, quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (product_id, warehouse_id)
		DO UPDATE SET quantity = EXCLUDED.quantity, updated_at = NOW()
		RETURNING updated_at`

	err := r.db.QueryRow(ctx, query,
		stock.ProductID, stock.WarehouseID, stock.Quantity,
	).Scan(&stock.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to upsert stock: %w", err)
	}

	r.logger.DebugContext(ctx, "stock upserted",
		slog.Int64("product_id", stock.ProductID),
		slog.Int64("warehouse_id", stock.WarehouseID),
		slog.Int64("quantity", stock.Quantity))

	return nil
}

// Find retrieves the stock row for a product in a warehouse
func (r *stockRepository) Find(ctx context.Context, productID, warehouseID int64) (*domain.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stocks
		WHERE product_id = $1 AND warehouse_id = $2`

	stock := &domain.Stock{}
	err := r.db.QueryRow(ctx, query, productID, warehouseID).Scan(
		&stock.ProductID, &stock.WarehouseID, &stock.Quantity, &stock.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find stock: %w", err)
	}

	return stock, nil
}

// FindAll retrieves all stock rows for a warehouse
func (r *stockRepository) FindAll(ctx context.Context, warehouseID int64) ([]*domain.Stock, error) {
	query := `
		SELECT product_id, warehouse_id, quantity, updated_at
		FROM stocks
		WHERE warehouse_id = $1
		ORDER BY product_id ASC`

	rows, err := r.db.Query(ctx, query, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query stocks: %w", err)
	}
	defer rows.Close()

	var stocks []*domain.Stock
	for rows.Next() {
		stock := &domain.Stock{}
		err := rows.Scan(&stock.ProductID, &stock.WarehouseID, &stock.Quantity, &stock.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stock: %w", err)
		}
		stocks = append(stocks, stock)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return stocks, nil
}
