// internal/adapters/db/product_repository.go
package db

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// productRepository implements ports.ProductRepository
type productRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewProductRepository creates a new product repository
func NewProductRepository(db *Database, logger *slog.Logger) ports.ProductRepository {
	return &productRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "product")),
	}
}

var _ ports.ProductRepository = (*productRepository)(nil)

const productColumns = `id, sku, name, category, unit, unit_price, created_at, updated_at`

// FindByName retrieves a product by its exact name
func (r *productRepository) FindByName(ctx context.Context, name string) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE name = $1`

	product := &domain.Product{}
	err := r.db.QueryRow(ctx, query, name).Scan(
		&product.ID, &product.SKU, &product.Name, &product.Category,
		&product.Unit, &product.UnitPrice, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product by name: %w", err)
	}

	return product, nil
}

// FindByID retrieves a product by ID
func (r *productRepository) FindByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	product := &domain.Product{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&product.ID, &product.SKU, &product.Name, &product.Category,
		&product.Unit, &product.UnitPrice, &product.CreatedAt, &product.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}

	return product, nil
}

// Save creates a new product
func (r *productRepository) Save(ctx context.Context, product *domain.Product) error {
	if err := product.Validate(); err != nil {
		return fmt.Errorf("invalid product: %w", err)
	}

	query := `
		INSERT INTO products (sku, name, category, unit, unit_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		product.SKU, product.Name, product.Category, product.Unit, product.UnitPrice,
	).Scan(&product.ID, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save product: %w", err)
	}

	r.logger.DebugContext(ctx, "product saved",
		slog.Int64("id", product.ID),
		slog.String("sku", product.SKU))

	return nil
}

// FindAll retrieves products with filtering and pagination. A non-positive
// page size disables pagination and returns the full catalog.
func (r *productRepository) FindAll(ctx context.Context, params ports.ProductListParams) ([]*domain.Product, int64, error) {
	qb := squirrel.Select(
		"id", "sku", "name", "category", "unit", "unit_price", "created_at", "updated_at",
	).From("products").
		PlaceholderFormat(squirrel.Dollar)

	if params.Search != "" {
		qb = qb.Where("(name ILIKE ? OR sku ILIKE ?)", "%"+params.Search+"%", "%"+params.Search+"%")
	}
	if params.Category != "" {
		qb = qb.Where(squirrel.Eq{"category": params.Category})
	}

	countQb := squirrel.Select("COUNT(*)").From("products").PlaceholderFormat(squirrel.Dollar)
	if params.Search != "" {
		countQb = countQb.Where("(name ILIKE ? OR sku ILIKE ?)", "%"+params.Search+"%", "%"+params.Search+"%")
	}
	if params.Category != "" {
		countQb = countQb.Where(squirrel.Eq{"category": params.Category})
	}

	countSQL, countArgs, err := countQb.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build count query: %w", err)
	}

	var total int64
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	switch params.SortBy {
	case "name":
		qb = qb.OrderBy("name ASC")
	case "sku":
		qb = qb.OrderBy("sku ASC")
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
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	var products []*domain.Product
	for rows.Next() {
		product := &domain.Product{}
		err := rows.Scan(
			&product.ID, &product.SKU, &product.Name, &product.Category,
			&product.Unit, &product.UnitPrice, &product.CreatedAt, &product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, product)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating rows: %w", err)
	}

	return products, total, nil
}

// Count returns the total number of products
func (r *productRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count products: %w", err)
	}
	return count, nil
}
