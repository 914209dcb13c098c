//go:build integration
// +build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/hpratama/gudang-be/internal/adapters/db"
	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
	"github.com/hpratama/gudang-be/test/helpers"
)

type RepositoriesSuite struct {
	suite.Suite
	testDB   *helpers.TestDB
	products ports.ProductRepository
	items    ports.ItemRepository
	stock    ports.StockRepository
	history  ports.HistoryRepository
	runs     ports.SyncRunRepository
	ctx      context.Context
}

func (s *RepositoriesSuite) SetupSuite() {
	s.testDB = helpers.SetupTestDB(s.T())
	logger := helpers.TestLogger()
	s.products = db.NewProductRepository(s.testDB.Database, logger)
	s.items = db.NewItemRepository(s.testDB.Database, logger)
	s.stock = db.NewStockRepository(s.testDB.Database, logger)
	s.history = db.NewHistoryRepository(s.testDB.Database, logger)
	s.runs = db.NewSyncRunRepository(s.testDB.Database, logger)
	s.ctx = context.Background()
}

func (s *RepositoriesSuite) SetupTest() {
	helpers.TruncateAllTables(s.T(), s.testDB.PgxPool)
}

func (s *RepositoriesSuite) seedProduct(name string) *domain.Product {
	product := helpers.CreateTestProduct(func(p *domain.Product) {
		p.ID = 0
		p.Name = name
		p.SKU = "SYNC-" + name
	})
	s.Require().NoError(s.products.Save(s.ctx, product))
	return product
}

func (s *RepositoriesSuite) seedItem(productID int64, serial string, status domain.ItemStatus) *domain.Item {
	item := &domain.Item{ProductID: productID, SerialNumber: serial, Status: status}
	s.Require().NoError(s.items.Save(s.ctx, item))
	return item
}

func (s *RepositoriesSuite) TestProductSaveAndFind() {
	product := s.seedProduct("ONT X")
	s.NotZero(product.ID)

	byName, err := s.products.FindByName(s.ctx, "ONT X")
	s.NoError(err)
	s.Require().NotNil(byName)
	s.Equal(product.ID, byName.ID)

	byID, err := s.products.FindByID(s.ctx, product.ID)
	s.NoError(err)
	s.Require().NotNil(byID)
	s.Equal("ONT X", byID.Name)

	missing, err := s.products.FindByName(s.ctx, "Ghost")
	s.NoError(err)
	s.Nil(missing)
}

func (s *RepositoriesSuite) TestProductFindAll_UnpaginatedWhenPageSizeZero() {
	for i := 0; i < 75; i++ {
		s.seedProduct(string(rune('A'+i%26)) + uuid.NewString()[:8])
	}

	all, total, err := s.products.FindAll(s.ctx, ports.ProductListParams{})
	s.NoError(err)
	s.Equal(int64(75), total)
	s.Len(all, 75, "non-positive page size returns the full catalog")

	page, _, err := s.products.FindAll(s.ctx, ports.ProductListParams{Page: 1, PageSize: 10})
	s.NoError(err)
	s.Len(page, 10)
}

func (s *RepositoriesSuite) TestItemUpsertCycle() {
	product := s.seedProduct("ONT X")
	item := s.seedItem(product.ID, "SN001", domain.StatusGudang)
	s.NotZero(item.ID)

	found, err := s.items.FindBySerial(s.ctx, "SN001")
	s.NoError(err)
	s.Require().NotNil(found)

	found.Status = domain.StatusTerpasang
	found.Location = "Perumahan Blok C"
	s.NoError(s.items.Update(s.ctx, found))

	updated, err := s.items.FindBySerial(s.ctx, "SN001")
	s.NoError(err)
	s.Require().NotNil(updated)
	s.Equal(domain.StatusTerpasang, updated.Status)
	s.Equal("Perumahan Blok C", updated.Location)

	missing, err := s.items.FindBySerial(s.ctx, "GHOST")
	s.NoError(err)
	s.Nil(missing)
}

func (s *RepositoriesSuite) TestItemDuplicateSerialRejected() {
	product := s.seedProduct("ONT X")
	s.seedItem(product.ID, "SN001", domain.StatusGudang)

	dup := &domain.Item{ProductID: product.ID, SerialNumber: "SN001", Status: domain.StatusGudang}
	s.Error(s.items.Save(s.ctx, dup), "unique constraint must reject duplicate serials")
}

func (s *RepositoriesSuite) TestCountByProductAndStatuses() {
	product := s.seedProduct("ONT X")
	s.seedItem(product.ID, "SN001", domain.StatusGudang)
	s.seedItem(product.ID, "SN002", domain.StatusGudang)
	s.seedItem(product.ID, "SN003", domain.StatusTerpasang)

	count, err := s.items.CountByProductAndStatuses(s.ctx, product.ID, domain.WarehouseStatuses())
	s.NoError(err)
	s.Equal(int64(2), count)
}

func (s *RepositoriesSuite) TestStockUpsertOverwrites() {
	product := s.seedProduct("ONT X")

	s.NoError(s.stock.Upsert(s.ctx, &domain.Stock{ProductID: product.ID, WarehouseID: 1, Quantity: 5}))
	s.NoError(s.stock.Upsert(s.ctx, &domain.Stock{ProductID: product.ID, WarehouseID: 1, Quantity: 2}))

	row, err := s.stock.Find(s.ctx, product.ID, 1)
	s.NoError(err)
	s.Require().NotNil(row)
	s.Equal(int64(2), row.Quantity)

	rows, err := s.stock.FindAll(s.ctx, 1)
	s.NoError(err)
	s.Len(rows, 1)
}

func (s *RepositoriesSuite) TestHistoryAppendAndDedup() {
	product := s.seedProduct("ONT X")
	item := s.seedItem(product.ID, "SN001", domain.StatusGudang)

	event := &domain.HistoryEvent{
		ItemID: item.ID,
		Action: domain.ActionStatusChanged,
		Notes:  "dipasang",
		Metadata: map[string]any{
			"source": "sync",
		},
	}
	s.NoError(s.history.Append(s.ctx, event))

	exists, err := s.history.Exists(s.ctx, item.ID, domain.ActionStatusChanged, "dipasang")
	s.NoError(err)
	s.True(exists)

	exists, err = s.history.Exists(s.ctx, item.ID, domain.ActionStatusChanged, "dicabut")
	s.NoError(err)
	s.False(exists, "different notes are a different event")

	events, err := s.history.FindByItem(s.ctx, item.ID, 10)
	s.NoError(err)
	s.Require().Len(events, 1)
	s.Equal("dipasang", events[0].Notes)
}

func (s *RepositoriesSuite) TestSyncRunLifecycle() {
	started := time.Now()
	run := &domain.SyncRun{ID: uuid.New(), Status: domain.SyncRunInProgress, StartedAt: started}
	s.NoError(s.runs.Create(s.ctx, run))

	s.NoError(s.runs.Complete(s.ctx, run.ID.String(), "processed=1"))

	latest, err := s.runs.Latest(s.ctx, 1)
	s.NoError(err)
	s.Require().Len(latest, 1)
	s.Equal(domain.SyncRunSuccess, latest[0].Status)
	s.False(latest[0].StartedAt.IsZero(), "the caller's start time is stored, not the zero value")
	s.WithinDuration(started, latest[0].StartedAt, time.Second)
	s.NotNil(latest[0].FinishedAt)

	// A closed run cannot transition again.
	s.Error(s.runs.Fail(s.ctx, run.ID.String(), "late failure"))
}

func TestRepositoriesSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}
	suite.Run(t, new(RepositoriesSuite))
}
