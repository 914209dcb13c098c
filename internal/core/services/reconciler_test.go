package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/services"
	"github.com/hpratama/gudang-be/test/fakes"
	"github.com/hpratama/gudang-be/test/helpers"
)

func newReconciler(products *fakes.ProductRepository, items *fakes.ItemRepository) *services.Reconciler {
	return services.NewReconciler(products, items, "SYNC", helpers.TestLogger())
}

func canonical(serial, typeName string, status domain.ItemStatus) domain.CanonicalItem {
	return domain.CanonicalItem{
		SerialNumber:    serial,
		ProductTypeName: typeName,
		Status:          status,
	}
}

func TestReconciler_Reconcile_CreatesProductAndItem(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	result := r.Reconcile(ctx, []domain.CanonicalItem{
		canonical("SN001", "ONT X", domain.StatusGudang),
	})

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 0, result.Errors)

	product, err := products.FindByName(ctx, "ONT X")
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, domain.CategoryNetworkDevice, product.Category)
	assert.NotEmpty(t, product.SKU)

	item, err := items.FindBySerial(ctx, "SN001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, domain.StatusGudang, item.Status)
}

func TestReconciler_Reconcile_ReusesExistingProduct(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	r.Reconcile(ctx, []domain.CanonicalItem{
		canonical("SN001", "ONT X", domain.StatusGudang),
		canonical("SN002", "ONT X", domain.StatusGudang),
	})

	count, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count, "both items should share one product")
}

func TestReconciler_Reconcile_Idempotent(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	batch := []domain.CanonicalItem{
		canonical("SN001", "ONT X", domain.StatusGudang),
		canonical("SN002", "Router Y", domain.StatusTerpasang),
	}

	first := r.Reconcile(ctx, batch)
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)

	second := r.Reconcile(ctx, batch)
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, 0, second.Errors)

	itemCount, err := items.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), itemCount)

	productCount, err := products.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), productCount)
}

func TestReconciler_Reconcile_LastWriterWins(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	mac1 := "AA:BB:CC:DD:EE:01"
	first := canonical("SN001", "ONT X", domain.StatusGudang)
	first.MACAddress = &mac1
	first.Location = "Gudang"
	r.Reconcile(ctx, []domain.CanonicalItem{first})

	mac2 := "AA:BB:CC:DD:EE:02"
	second := canonical("SN001", "ONT X", domain.StatusTerpasang)
	second.MACAddress = &mac2
	second.Location = "Perumahan Blok C"
	r.Reconcile(ctx, []domain.CanonicalItem{second})

	item, err := items.FindBySerial(ctx, "SN001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, domain.StatusTerpasang, item.Status)
	require.NotNil(t, item.MACAddress)
	assert.Equal(t, mac2, *item.MACAddress)
	assert.Equal(t, "Perumahan Blok C", item.Location)
}

func TestReconciler_Reconcile_EmptyFieldsDoNotClearLocationOrNotes(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	first := canonical("SN001", "ONT X", domain.StatusGudang)
	first.Location = "Gudang"
	first.Notes = "barang baru"
	r.Reconcile(ctx, []domain.CanonicalItem{first})

	second := canonical("SN001", "ONT X", domain.StatusGudang)
	r.Reconcile(ctx, []domain.CanonicalItem{second})

	item, err := items.FindBySerial(ctx, "SN001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, "Gudang", item.Location)
	assert.Equal(t, "barang baru", item.Notes)
}

func TestReconciler_Reconcile_NotesOverrideStatus(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	rec := canonical("SN001", "ONT X", domain.StatusGudang)
	rec.Notes = "terpasang di lapangan"

	result := r.Reconcile(ctx, []domain.CanonicalItem{rec})
	assert.Equal(t, 1, result.Created)

	item, err := items.FindBySerial(ctx, "SN001")
	require.NoError(t, err)
	require.NotNil(t, item)
	assert.Equal(t, domain.StatusTerpasang, item.Status,
		"note-derived status should override the direct status field")
}

func TestReconciler_Reconcile_PartialFailure(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	items := fakes.NewItemRepository()
	items.FailSerials = map[string]error{
		"SN003": errors.New("simulated constraint violation"),
	}
	r := newReconciler(products, items)

	batch := []domain.CanonicalItem{
		canonical("SN001", "ONT X", domain.StatusGudang),
		canonical("SN002", "ONT X", domain.StatusGudang),
		canonical("SN003", "ONT X", domain.StatusGudang),
		canonical("SN004", "ONT X", domain.StatusGudang),
		canonical("SN005", "ONT X", domain.StatusGudang),
	}

	result := r.Reconcile(ctx, batch)

	assert.Equal(t, 5, result.Processed)
	assert.Equal(t, 4, result.Created)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.ErrorMessages, 1)
	assert.Contains(t, result.ErrorMessages[0], "SN003")

	// The failing record must not block its successors.
	for _, sn := range []string{"SN001", "SN002", "SN004", "SN005"} {
		item, err := items.FindBySerial(ctx, sn)
		require.NoError(t, err)
		assert.NotNil(t, item, sn)
	}
}

func TestReconciler_Reconcile_ProductLookupFailure(t *testing.T) {
	ctx := context.Background()
	products := fakes.NewProductRepository()
	products.FindErr = errors.New("connection refused")
	items := fakes.NewItemRepository()
	r := newReconciler(products, items)

	result := r.Reconcile(ctx, []domain.CanonicalItem{
		canonical("SN001", "ONT X", domain.StatusGudang),
	})

	assert.Equal(t, 0, result.Created)
	assert.Equal(t, 1, result.Errors)
}

func TestReconciler_Reconcile_EmptyBatch(t *testing.T) {
	ctx := context.Background()
	r := newReconciler(fakes.NewProductRepository(), fakes.NewItemRepository())

	result := r.Reconcile(ctx, nil)
	assert.Equal(t, domain.SyncResult{}, result)
}
