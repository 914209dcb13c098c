// internal/adapters/db/item_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// itemRepository implements ports.ItemRepository
type itemRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewItemRepository creates a new item repository
func NewItemRepository(db *Database, logger *slog.Logger) ports.ItemRepository {
	return &itemRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "item")),
	}
}

var _ ports.ItemRepository = (*itemRepository)(nil)

const itemColumns = `id, product_id, serial_number, mac_address, status, purchase_date, location, notes, created_at, updated_at`

// FindBySerial retrieves an item by its serial number. Serial numbers are
// the natural key used for upsert matching during sync.
func (r *itemRepository) FindBySerial(ctx context.Context, serialNumber string) (*domain.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE serial_number = $1`

	item, err := r.scanItem(r.db.QueryRow(ctx, query, serialNumber))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find item by serial: %w", err)
	}

	return item, nil
}

// Save creates a new item
func (r *itemRepository) Save(ctx context.Context, item *domain.Item) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("invalid item: %w", err)
	}

	query := `
		INSERT INTO items (product_id, serial_number, mac_address, status, purchase_date, location, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		item.ProductID, item.SerialNumber, item.MACAddress, item.Status,
		item.PurchaseDate, nullIfEmpty(item.Location), nullIfEmpty(item.Notes),
	).Scan(&item.ID, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save item: %w", err)
	}

	r.logger.DebugContext(ctx, "item saved",
		slog.Int64("id", item.ID),
		slog.String("serial_number", item.SerialNumber))

	return nil
}

// Update overwrites the mutable fields of an existing item
func (r *itemRepository) Update(ctx context.Context, item *domain.Item) error {
	query := `
		UPDATE items SET
			product_id = $2, mac_address = $3, status = $4,
			purchase_date = $5, location = $6, notes = $7, updated_at = $8
		WHERE id = $1`

	item.UpdatedAt = time.Now()
	tag, err := r.db.Exec(ctx, query,
		item.ID, item.ProductID, item.MACAddress, item.Status,
		item.PurchaseDate, nullIfEmpty(item.Location), nullIfEmpty(item.Notes),
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("item not found: %d", item.ID)
	}

	return nil
}

// CountByProductAndStatuses counts items of a product whose status is in the
// given set. Used by the stock recalculator.
func (r *itemRepository) CountByProductAndStatuses(ctx context.Context, productID int64, statuses []string) (int64, error) {
	query := `SELECT COUNT(*) FROM items WHERE product_id = $1 AND status = ANY($2)`

	var count int64
	if err := r.db.QueryRow(ctx, query, productID, statuses).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}

	return count, nil
}

// FindAll retrieves items with filtering and pagination
func (r *itemRepository) FindAll(ctx context.Context, params ports.ItemListParams) ([]*domain.Item, int64, error) {
	qb := squirrel.Select(
		"id", "product_id", "serial_number", "mac_address", "status",
		"purchase_date", "location", "notes", "created_at", "updated_at",
	).From("items").
		PlaceholderFormat(squirrel.Dollar)
	countQb := squirrel.Select("COUNT(*)").From("items").PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		cond := "(serial_number ILIKE ? OR mac_address ILIKE ?)"
		pat := "%" + params.Search + "%"
		qb = qb.Where(cond, pat, pat)
		countQb = countQb.Where(cond, pat, pat)
	}
	if params.Status != "" {
		qb = qb.Where(squirrel.Eq{"status": params.Status})
		countQb = countQb.Where(squirrel.Eq{"status": params.Status})
	}
	if params.ProductID != 0 {
		qb = qb.Where(squirrel.Eq{"product_id": params.ProductID})
		countQb = countQb.Where(squirrel.Eq{"product_id": params.ProductID})
	}

	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	switch params.SortBy {
	case "serial_number":
		qb = qb.OrderBy("serial_number ASC")
	case "status":
		qb = qb.OrderBy("status ASC, serial_number ASC")
	default:
		qb = qb.OrderBy("created_at DESC")
	}

	if params.PageSize > 0 {
		page := params.Page
		if page < 1 {
			page = 1
		}
		qb = qb.Limit(uint64(params.PageSize)).Offset(uint64((page - 1) * params.PageSize))
	}

	querySQL, queryArgs, err := qb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build query: %w", err)
	}

	rows, err := r.db.Query(ctx, querySQL, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query items: %w", err)
	}
	defer rows.Close()

	var items []*domain.Item
	for rows.Next() {
		item, err := r.scanItem(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return items, total, nil
}

// Count returns the total number of items
func (r *itemRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM items`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count items: %w", err)
	}
	return count, nil
}

func (r *itemRepository) scanItem(row pgx.Row) (*domain.Item, error) {
	item := &domain.Item{}
	var mac, location, notes sql.NullString
	var purchaseDate sql.NullTime

	err := row.Scan(
		&item.ID, &item.ProductID, &item.SerialNumber, &mac, &item.Status,
		&purchaseDate, &location, &notes, &item.CreatedAt, &item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if mac.Valid {
		item.MACAddress = &mac.String
	}
	if purchaseDate.Valid {
		item.PurchaseDate = &purchaseDate.Time
	}
	item.Location = location.String
	item.Notes = notes.String

	return item, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
