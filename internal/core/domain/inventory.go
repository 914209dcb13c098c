// internal/core/domain/inventory.go
package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ItemStatus is the closed set of local item statuses.
type ItemStatus string

const (
	StatusGudang    ItemStatus = "GUDANG"    // in warehouse
	StatusTerpasang ItemStatus = "TERPASANG" // installed at customer site
	StatusRusak     ItemStatus = "RUSAK"     // damaged
	StatusTeknisi   ItemStatus = "TEKNISI"   // carried by a technician
)

// WarehouseStatuses returns the statuses counted as "physically in the
// warehouse" for stock purposes. Rows imported before the status vocabulary
// was closed may still carry the central-warehouse alias.
func WarehouseStatuses() []string {
	return []string{string(StatusGudang), "DI GUDANG"}
}

// ProductCategory is the closed set of product categories.
type ProductCategory string

const (
	CategoryNetworkDevice ProductCategory = "network-device"
	CategoryCabling       ProductCategory = "cabling"
	CategoryTools         ProductCategory = "tools"
)

// DefaultUnit is the stock unit assigned to products created by the sync engine.
const DefaultUnit = "unit"

// Product represents a product type in the catalog. Products are created on
// first sight of an unknown device name and never deleted by the sync engine.
type Product struct {
	ID        int64           `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Category  ProductCategory `json:"category"`
	Unit      string          `json:"unit"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Validate performs domain validation on the product.
func (p *Product) Validate() error {
	if p.SKU == "" {
		return fmt.Errorf("sku is required")
	}
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.Category == "" {
		p.Category = CategoryNetworkDevice
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	return nil
}

// GenerateSKU builds a SKU for a product created by the sync engine from the
// remote device type name: <source-prefix>-<type-prefix>-<unix-ts>.
func GenerateSKU(sourcePrefix, typeName string, now time.Time) string {
	prefix := strings.ToUpper(strings.TrimSpace(typeName))
	if i := strings.IndexAny(prefix, " \t"); i > 0 {
		prefix = prefix[:i]
	}
	prefix = strings.Map(func(r rune) rune {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, prefix)
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	if prefix == "" {
		prefix = "ITEM"
	}
	return fmt.Sprintf("%s-%s-%d", sourcePrefix, prefix, now.Unix())
}

// Item is a serialized inventory unit. The serial number is the natural key
// used for upsert matching during sync; mutable fields are overwritten with
// last-writer-wins semantics on every sync pass.
type Item struct {
	ID           int64      `json:"id"`
	ProductID    int64      `json:"product_id"`
	SerialNumber string     `json:"serial_number"`
	MACAddress   *string    `json:"mac_address,omitempty"`
	Status       ItemStatus `json:"status"`
	PurchaseDate *time.Time `json:"purchase_date,omitempty"`
	Location     string     `json:"location,omitempty"`
	Notes        string     `json:"notes,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Validate performs domain validation on the item.
func (i *Item) Validate() error {
	if strings.TrimSpace(i.SerialNumber) == "" {
		return fmt.Errorf("serial_number is required")
	}
	if i.ProductID == 0 {
		return fmt.Errorf("product_id is required")
	}
	if i.Status == "" {
		i.Status = StatusGudang
	}
	return nil
}

// InWarehouse reports whether the item counts toward warehouse stock.
func (i *Item) InWarehouse() bool {
	for _, s := range WarehouseStatuses() {
		if string(i.Status) == s {
			return true
		}
	}
	return false
}

// Stock is the derived warehouse quantity for one product in one warehouse.
// The sync engine never writes it directly; the recalculator overwrites it
// from the item table.
type Stock struct {
	ProductID   int64     `json:"product_id"`
	WarehouseID int64     `json:"warehouse_id"`
	Quantity    int64     `json:"quantity"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CanonicalItem is the engine-internal normalized form of one remote
// inventory record. It is never persisted as-is.
type CanonicalItem struct {
	SerialNumber    string
	MACAddress      *string
	ProductTypeName string
	Status          ItemStatus
	PurchaseDate    *time.Time
	Location        string
	Notes           string
	// Raw retains the original remote record for history metadata.
	Raw map[string]any
}
