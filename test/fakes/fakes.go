// test/fakes/fakes.go
package fakes

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// ProductRepository is an in-memory ports.ProductRepository.
type ProductRepository struct {
	mu       sync.Mutex
	nextID   int64
	products map[int64]*domain.Product

	SaveErr error
	FindErr error
}

var _ ports.ProductRepository = (*ProductRepository)(nil)

func NewProductRepository() *ProductRepository {
	return &ProductRepository{products: make(map[int64]*domain.Product)}
}

func (r *ProductRepository) FindByName(_ context.Context, name string) (*domain.Product, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if strings.EqualFold(p.Name, name) {
			clone := *p
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *ProductRepository) FindByID(_ context.Context, id int64) (*domain.Product, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (r *ProductRepository) Save(_ context.Context, product *domain.Product) error {
	if r.SaveErr != nil {
		return r.SaveErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if product.ID == 0 {
		r.nextID++
		product.ID = r.nextID
		product.CreatedAt = time.Now()
	}
	product.UpdatedAt = time.Now()
	clone := *product
	r.products[product.ID] = &clone
	return nil
}

func (r *ProductRepository) FindAll(_ context.Context, params ports.ProductListParams) ([]*domain.Product, int64, error) {
	if r.FindErr != nil {
		return nil, 0, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Product, 0, len(r.products))
	for _, p := range r.products {
		if params.Category != "" && string(p.Category) != params.Category {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(params.Search)) {
			continue
		}
		clone := *p
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	total := int64(len(out))
	if params.PageSize > 0 {
		start := (params.Page - 1) * params.PageSize
		if start < 0 {
			start = 0
		}
		if start > len(out) {
			start = len(out)
		}
		end := start + params.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (r *ProductRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.products)), nil
}

// ItemRepository is an in-memory ports.ItemRepository keyed by serial number.
type ItemRepository struct {
	mu     sync.Mutex
	nextID int64
	items  map[string]*domain.Item

	SaveErr   error
	UpdateErr error
	FindErr   error
	// FailSerials makes Save and Update fail for specific serial numbers,
	// for partial-failure scenarios.
	FailSerials map[string]error
}

var _ ports.ItemRepository = (*ItemRepository)(nil)

func NewItemRepository() *ItemRepository {
	return &ItemRepository{items: make(map[string]*domain.Item)}
}

func (r *ItemRepository) FindBySerial(_ context.Context, serialNumber string) (*domain.Item, error) {
	if r.FindErr != nil {
		return nil, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[serialNumber]
	if !ok {
		return nil, nil
	}
	clone := *item
	return &clone, nil
}

func (r *ItemRepository) Save(_ context.Context, item *domain.Item) error {
	if err := r.failFor(item.SerialNumber, r.SaveErr); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[item.SerialNumber]; exists {
		return fmt.Errorf("duplicate serial number %q", item.SerialNumber)
	}
	r.nextID++
	item.ID = r.nextID
	item.CreatedAt = time.Now()
	item.UpdatedAt = time.Now()
	clone := *item
	r.items[item.SerialNumber] = &clone
	return nil
}

func (r *ItemRepository) Update(_ context.Context, item *domain.Item) error {
	if err := r.failFor(item.SerialNumber, r.UpdateErr); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.items[item.SerialNumber]; !exists {
		return fmt.Errorf("item %q not found", item.SerialNumber)
	}
	item.UpdatedAt = time.Now()
	clone := *item
	r.items[item.SerialNumber] = &clone
	return nil
}

func (r *ItemRepository) CountByProductAndStatuses(_ context.Context, productID int64, statuses []string) (int64, error) {
	if r.FindErr != nil {
		return 0, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.ProductID != productID {
			continue
		}
		for _, s := range statuses {
			if string(item.Status) == s {
				n++
				break
			}
		}
	}
	return n, nil
}

func (r *ItemRepository) FindAll(_ context.Context, params ports.ItemListParams) ([]*domain.Item, int64, error) {
	if r.FindErr != nil {
		return nil, 0, r.FindErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Item, 0, len(r.items))
	for _, item := range r.items {
		if params.Status != "" && string(item.Status) != params.Status {
			continue
		}
		if params.ProductID != 0 && item.ProductID != params.ProductID {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(item.SerialNumber), strings.ToLower(params.Search)) {
			continue
		}
		clone := *item
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *ItemRepository) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.items)), nil
}

func (r *ItemRepository) failFor(serial string, base error) error {
	if base != nil {
		return base
	}
	if err, ok := r.FailSerials[serial]; ok {
		return err
	}
	return nil
}

type stockKey struct {
	productID   int64
	warehouseID int64
}

// StockRepository is an in-memory ports.StockRepository.
type StockRepository struct {
	mu     sync.Mutex
	stocks map[stockKey]*domain.Stock

	UpsertErr error
}

var _ ports.StockRepository = (*StockRepository)(nil)

func NewStockRepository() *StockRepository {
	return &StockRepository{stocks: make(map[stockKey]*domain.Stock)}
}

func (r *StockRepository) Upsert(_ context.Context, stock *domain.Stock) error {
	if r.UpsertErr != nil {
		return r.UpsertErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	stock.UpdatedAt = time.Now()
	clone := *stock
	r.stocks[stockKey{stock.ProductID, stock.WarehouseID}] = &clone
	return nil
}

func (r *StockRepository) Find(_ context.Context, productID, warehouseID int64) (*domain.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stock, ok := r.stocks[stockKey{productID, warehouseID}]
	if !ok {
		return nil, nil
	}
	clone := *stock
	return &clone, nil
}

func (r *StockRepository) FindAll(_ context.Context, warehouseID int64) ([]*domain.Stock, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.Stock, 0, len(r.stocks))
	for key, stock := range r.stocks {
		if key.warehouseID != warehouseID {
			continue
		}
		clone := *stock
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return out, nil
}

// HistoryRepository is an in-memory ports.HistoryRepository.
type HistoryRepository struct {
	mu     sync.Mutex
	nextID int64
	events []*domain.HistoryEvent

	AppendErr error
}

var _ ports.HistoryRepository = (*HistoryRepository)(nil)

func NewHistoryRepository() *HistoryRepository {
	return &HistoryRepository{}
}

func (r *HistoryRepository) Append(_ context.Context, event *domain.HistoryEvent) error {
	if r.AppendErr != nil {
		return r.AppendErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	event.ID = r.nextID
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}
	clone := *event
	r.events = append(r.events, &clone)
	return nil
}

func (r *HistoryRepository) Exists(_ context.Context, itemID int64, action domain.HistoryAction, notes string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.ItemID == itemID && ev.Action == action && ev.Notes == notes {
			return true, nil
		}
	}
	return false, nil
}

func (r *HistoryRepository) FindByItem(_ context.Context, itemID int64, limit int) ([]*domain.HistoryEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.HistoryEvent, 0)
	for _, ev := range r.events {
		if ev.ItemID == itemID {
			clone := *ev
			out = append(out, &clone)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Events returns a copy of every appended event, in append order.
func (r *HistoryRepository) Events() []*domain.HistoryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.HistoryEvent, len(r.events))
	copy(out, r.events)
	return out
}

// SyncRunRepository is an in-memory ports.SyncRunRepository.
type SyncRunRepository struct {
	mu   sync.Mutex
	runs []*domain.SyncRun

	CreateErr error
}

var _ ports.SyncRunRepository = (*SyncRunRepository)(nil)

func NewSyncRunRepository() *SyncRunRepository {
	return &SyncRunRepository{}
}

func (r *SyncRunRepository) Create(_ context.Context, run *domain.SyncRun) error {
	if r.CreateErr != nil {
		return r.CreateErr
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// Stored verbatim, like the SQL insert: the caller owns StartedAt and
	// the initial status.
	clone := *run
	r.runs = append(r.runs, &clone)
	return nil
}

func (r *SyncRunRepository) Complete(_ context.Context, id string, details string) error {
	return r.finish(id, domain.SyncRunSuccess, details, nil)
}

func (r *SyncRunRepository) Fail(_ context.Context, id string, errMsg string) error {
	return r.finish(id, domain.SyncRunFailed, "", &errMsg)
}

func (r *SyncRunRepository) finish(id string, status domain.SyncRunStatus, details string, errMsg *string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, run := range r.runs {
		if run.ID.String() != id {
			continue
		}
		if run.Status != domain.SyncRunInProgress {
			return fmt.Errorf("sync run %s not in progress", id)
		}
		now := time.Now()
		run.Status = status
		run.FinishedAt = &now
		run.Details = details
		run.ErrorMessage = errMsg
		return nil
	}
	return fmt.Errorf("sync run %s not found", id)
}

func (r *SyncRunRepository) Latest(_ context.Context, limit int) ([]*domain.SyncRun, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.SyncRun, len(r.runs))
	for i, run := range r.runs {
		clone := *run
		out[len(r.runs)-1-i] = &clone
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Runs returns a copy of every run in creation order.
func (r *SyncRunRepository) Runs() []*domain.SyncRun {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*domain.SyncRun, len(r.runs))
	for i, run := range r.runs {
		clone := *run
		out[i] = &clone
	}
	return out
}

// SessionProvider is a canned ports.SessionProvider.
type SessionProvider struct {
	mu          sync.Mutex
	Header      string
	Err         error
	ConnectedOK bool
	invalidated int
}

var _ ports.SessionProvider = (*SessionProvider)(nil)

func NewSessionProvider() *SessionProvider {
	return &SessionProvider{Header: "Bearer test-token", ConnectedOK: true}
}

func (s *SessionProvider) AuthHeader(_ context.Context) (string, error) {
	if s.Err != nil {
		return "", s.Err
	}
	return s.Header, nil
}

func (s *SessionProvider) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invalidated++
}

func (s *SessionProvider) Connected(_ context.Context) bool {
	return s.ConnectedOK
}

// Invalidations returns how many times Invalidate was called.
func (s *SessionProvider) Invalidations() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.invalidated
}

// RemoteClient is a canned ports.RemoteClient.
type RemoteClient struct {
	InventoryPayload json.RawMessage
	HistoryPayload   json.RawMessage
	InventoryErr     error
	HistoryErr       error
}

var _ ports.RemoteClient = (*RemoteClient)(nil)

func (c *RemoteClient) FetchInventory(_ context.Context) (json.RawMessage, error) {
	if c.InventoryErr != nil {
		return nil, c.InventoryErr
	}
	return c.InventoryPayload, nil
}

func (c *RemoteClient) FetchHistories(_ context.Context) (json.RawMessage, error) {
	if c.HistoryErr != nil {
		return nil, c.HistoryErr
	}
	return c.HistoryPayload, nil
}
