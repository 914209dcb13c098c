package handlers_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v3"

	"github.com/hpratama/gudang-be/internal/core/ports"
	"github.com/hpratama/gudang-be/internal/handlers"
	"github.com/hpratama/gudang-be/test/helpers"
)

func TestExportHandler_ExportStock(t *testing.T) {
	service := &stubInventoryService{
		stock: []*ports.StockLine{
			{ProductID: 1, SKU: "SYNC-ONT-1", Name: "ONT X", Category: "network-device", Unit: "unit", WarehouseID: 1, Quantity: 3},
			{ProductID: 2, SKU: "SYNC-RTR-1", Name: "Router Y", Category: "network-device", Unit: "unit", WarehouseID: 1, Quantity: 0},
		},
	}
	h := handlers.NewExportHandler(service, 1, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/stock", nil)
	rec := httptest.NewRecorder()

	h.ExportStock(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "stock_")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), ".xlsx")

	file, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err, "response body must be a valid workbook")

	sheet, ok := file.Sheet["Stock"]
	require.True(t, ok)
	assert.Equal(t, 3, sheet.MaxRow, "header plus two data rows")

	header, err := sheet.Row(0)
	require.NoError(t, err)
	assert.Equal(t, "Product ID", header.GetCell(0).Value)
	assert.Equal(t, "Quantity", header.GetCell(6).Value)

	first, err := sheet.Row(1)
	require.NoError(t, err)
	assert.Equal(t, "SYNC-ONT-1", first.GetCell(1).Value)
	assert.Equal(t, "3", first.GetCell(6).Value)
}

func TestExportHandler_ExportStock_EmptyWarehouse(t *testing.T) {
	service := &stubInventoryService{}
	h := handlers.NewExportHandler(service, 1, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/stock", nil)
	rec := httptest.NewRecorder()

	h.ExportStock(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	file, err := xlsx.OpenBinary(rec.Body.Bytes())
	require.NoError(t, err)
	sheet := file.Sheet["Stock"]
	require.NotNil(t, sheet)
	assert.Equal(t, 1, sheet.MaxRow, "header only")
}

func TestExportHandler_ExportStock_ServiceError(t *testing.T) {
	service := &stubInventoryService{err: errors.New("db down")}
	h := handlers.NewExportHandler(service, 1, helpers.TestLogger())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/export/stock", nil)
	rec := httptest.NewRecorder()

	h.ExportStock(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
