// internal/core/services/inventory.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

const stockCacheTTL = 5 * time.Minute

// InventoryService serves read queries over the synced catalog. The stock
// listing is cached; sync runs are infrequent relative to dashboard reads.
type InventoryService struct {
	products ports.ProductRepository
	items    ports.ItemRepository
	stock    ports.StockRepository
	history  ports.HistoryRepository
	cache    ports.CacheRepository
	logger   *slog.Logger
}

var _ ports.InventoryService = (*InventoryService)(nil)
var _ ports.StockCacheInvalidator = (*InventoryService)(nil)

// NewInventoryService creates the read-side inventory service. cache may be
// nil, in which case every query hits the database.
func NewInventoryService(
	products ports.ProductRepository,
	items ports.ItemRepository,
	stock ports.StockRepository,
	history ports.HistoryRepository,
	cache ports.CacheRepository,
	logger *slog.Logger,
) *InventoryService {
	return &InventoryService{
		products: products,
		items:    items,
		stock:    stock,
		history:  history,
		cache:    cache,
		logger:   logger.With(slog.String("service", "inventory")),
	}
}

// ListProducts returns a page of the product catalog.
func (s *InventoryService) ListProducts(ctx context.Context, params ports.ProductListParams) (*ports.ProductList, error) {
	if params.PageSize <= 0 {
		params.PageSize = 50
	}
	if params.Page < 1 {
		params.Page = 1
	}

	products, total, err := s.products.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}

	return &ports.ProductList{
		Products: products,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// GetProduct returns one product, or nil when it does not exist.
func (s *InventoryService) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	return s.products.FindByID(ctx, id)
}

// ListItems returns a page of serialized items.
func (s *InventoryService) ListItems(ctx context.Context, params ports.ItemListParams) (*ports.ItemList, error) {
	if params.PageSize <= 0 {
		params.PageSize = 50
	}
	if params.Page < 1 {
		params.Page = 1
	}

	items, total, err := s.items.FindAll(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("listing items: %w", err)
	}

	return &ports.ItemList{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

// GetItemBySerial returns one item with its history trail, or nil when no
// item carries the serial number.
func (s *InventoryService) GetItemBySerial(ctx context.Context, serialNumber string) (*ports.ItemDetail, error) {
	item, err := s.items.FindBySerial(ctx, serialNumber)
	if err != nil {
		return nil, fmt.Errorf("finding item: %w", err)
	}
	if item == nil {
		return nil, nil
	}

	history, err := s.history.FindByItem(ctx, item.ID, 50)
	if err != nil {
		return nil, fmt.Errorf("loading item history: %w", err)
	}

	return &ports.ItemDetail{Item: item, History: history}, nil
}

// ListStock returns the stock lines for a warehouse, joined with product
// details.
func (s *InventoryService) ListStock(ctx context.Context, warehouseID int64) ([]*ports.StockLine, error) {
	cacheKey := fmt.Sprintf("stock:warehouse:%d", warehouseID)

	if s.cache != nil {
		var cached []*ports.StockLine
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			return cached, nil
		}
	}

	stocks, err := s.stock.FindAll(ctx, warehouseID)
	if err != nil {
		return nil, fmt.Errorf("listing stock: %w", err)
	}

	lines := make([]*ports.StockLine, 0, len(stocks))
	for _, st := range stocks {
		product, err := s.products.FindByID(ctx, st.ProductID)
		if err != nil {
			return nil, fmt.Errorf("loading product %d: %w", st.ProductID, err)
		}
		if product == nil {
			continue
		}
		lines = append(lines, &ports.StockLine{
			ProductID:   st.ProductID,
			SKU:         product.SKU,
			Name:        product.Name,
			Category:    string(product.Category),
			Unit:        product.Unit,
			WarehouseID: st.WarehouseID,
			Quantity:    st.Quantity,
		})
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(ctx, cacheKey, lines, stockCacheTTL); err != nil {
			s.logger.WarnContext(ctx, "failed to cache stock listing", "err", err)
		}
	}

	return lines, nil
}

// InvalidateStockCache drops the cached stock listing. Called after a sync
// run so the next stock read reflects the recalculated quantities.
func (s *InventoryService) InvalidateStockCache(ctx context.Context, warehouseID int64) {
	if s.cache == nil {
		return
	}
	key := fmt.Sprintf("stock:warehouse:%d", warehouseID)
	if err := s.cache.Delete(ctx, key); err != nil {
		s.logger.WarnContext(ctx, "failed to invalidate stock cache", "err", err)
	}
}
