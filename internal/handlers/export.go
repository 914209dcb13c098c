// internal/handlers/export.go
package handlers

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/tealeg/xlsx/v3"

	"github.com/hpratama/gudang-be/internal/core/ports"
)

// ExportHandler produces Excel exports of the synced stock
type ExportHandler struct {
	service     ports.InventoryService
	warehouseID int64
	logger      *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(service ports.InventoryService, warehouseID int64, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{
		service:     service,
		warehouseID: warehouseID,
		logger:      logger.With(slog.String("handler", "export")),
	}
}

// ExportStock handles GET /api/v1/export/stock
func (h *ExportHandler) ExportStock(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	warehouseID := h.warehouseID
	if v := r.URL.Query().Get("warehouse_id"); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil && id > 0 {
			warehouseID = id
		}
	}

	lines, err := h.service.ListStock(ctx, warehouseID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load stock for export",
			slog.Int64("warehouse_id", warehouseID),
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to load stock")
		return
	}

	data, err := h.generateExcelFile(lines)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate stock export",
			slog.String("error", err.Error()))
		respondError(w, http.StatusInternalServerError, "Failed to generate export")
		return
	}

	filename := fmt.Sprintf("stock_%s.xlsx", time.Now().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logger.ErrorContext(ctx, "failed to write export response",
			slog.String("error", err.Error()))
	}
}

func (h *ExportHandler) generateExcelFile(lines []*ports.StockLine) ([]byte, error) {
	file := xlsx.NewFile()

	sheet, err := file.AddSheet("Stock")
	if err != nil {
		return nil, fmt.Errorf("failed to add worksheet: %w", err)
	}

	headers := []string{"Product ID", "SKU", "Name", "Category", "Unit", "Warehouse ID", "Quantity"}
	headerRow := sheet.AddRow()
	for _, header := range headers {
		cell := headerRow.AddCell()
		cell.Value = header
		cell.GetStyle().Font.Bold = true
		cell.GetStyle().Fill.PatternType = "solid"
		cell.GetStyle().Fill.FgColor = "CCCCCC"
	}

	for _, line := range lines {
		row := sheet.AddRow()
		row.AddCell().Value = strconv.FormatInt(line.ProductID, 10)
		row.AddCell().Value = line.SKU
		row.AddCell().Value = line.Name
		row.AddCell().Value = line.Category
		row.AddCell().Value = line.Unit
		row.AddCell().Value = strconv.FormatInt(line.WarehouseID, 10)
		row.AddCell().Value = strconv.FormatInt(line.Quantity, 10)
	}

	// Column indexes are 1-based.
	for i := 1; i <= len(headers); i++ {
		sheet.SetColWidth(i, i, 15)
	}

	var buffer bytes.Buffer
	if err := file.Write(&buffer); err != nil {
		return nil, fmt.Errorf("failed to write Excel file to buffer: %w", err)
	}

	return buffer.Bytes(), nil
}
