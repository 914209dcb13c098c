// internal/core/services/normalizer.go
package services

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpratama/gudang-be/internal/core/domain"
)

// Field alias tables. Remote field names vary across records, so each
// canonical field is resolved by probing aliases in order; the first present,
// non-null value wins.
var (
	serialAliases   = []string{"Serial Number", "serial_number", "serialNumber", "sn", "no_seri", "id"}
	macAliases      = []string{"MAC Address", "mac_address", "macAddress", "mac"}
	deviceAliases   = []string{"Nama Perangkat", "device_name", "deviceName", "nama_perangkat", "perangkat", "type", "tipe", "product"}
	statusAliases   = []string{"Status", "status", "status_barang", "kondisi"}
	dateAliases     = []string{"Purchase Date", "purchase_date", "tanggal_beli", "tgl_beli", "created_at", "date"}
	locationAliases = []string{"Lokasi", "location", "lokasi", "penempatan"}
	notesAliases    = []string{"Keterangan", "notes", "catatan", "ket", "remark"}
)

// DefaultProductTypeName is used when no device-name-like key is present.
const DefaultProductTypeName = "Perangkat Lainnya"

// Normalizer converts raw remote payloads into canonical item records.
type Normalizer struct{}

// NewNormalizer creates a normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize accepts an array, an object wrapping a data/items array, or a
// single object, and returns the canonical records. Records without a serial
// number are dropped; any unrecognized shape normalizes to an empty list.
func (n *Normalizer) Normalize(payload json.RawMessage) []domain.CanonicalItem {
	records := unwrapRecords(payload)

	items := make([]domain.CanonicalItem, 0, len(records))
	for _, rec := range records {
		item := n.normalizeRecord(rec)
		if strings.TrimSpace(item.SerialNumber) == "" {
			continue
		}
		items = append(items, item)
	}
	return items
}

func (n *Normalizer) normalizeRecord(rec map[string]any) domain.CanonicalItem {
	item := domain.CanonicalItem{
		SerialNumber: strings.TrimSpace(resolveString(rec, serialAliases)),
		Location:     resolveString(rec, locationAliases),
		Notes:        resolveString(rec, notesAliases),
		Raw:          rec,
	}

	if mac := strings.TrimSpace(resolveString(rec, macAliases)); mac != "" {
		item.MACAddress = &mac
	}

	item.ProductTypeName = strings.TrimSpace(resolveString(rec, deviceAliases))
	if item.ProductTypeName == "" {
		item.ProductTypeName = DefaultProductTypeName
	}

	item.Status = domain.ClassifyStatus(resolveString(rec, statusAliases))

	if raw, ok := resolveValue(rec, dateAliases); ok {
		item.PurchaseDate = ParseDate(raw)
	}

	return item
}

// unwrapRecords flattens the remote response envelope into a record list.
func unwrapRecords(payload json.RawMessage) []map[string]any {
	var asArray []map[string]any
	if err := json.Unmarshal(payload, &asArray); err == nil {
		return asArray
	}

	var asObject map[string]json.RawMessage
	if err := json.Unmarshal(payload, &asObject); err != nil {
		return nil
	}

	for _, key := range []string{"data", "items"} {
		if raw, ok := asObject[key]; ok {
			if err := json.Unmarshal(raw, &asArray); err == nil {
				return asArray
			}
		}
	}

	// A bare object is treated as a one-element collection.
	var single map[string]any
	if err := json.Unmarshal(payload, &single); err == nil && len(single) > 0 {
		return []map[string]any{single}
	}
	return nil
}

func resolveValue(rec map[string]any, aliases []string) (any, bool) {
	for _, key := range aliases {
		if v, ok := rec[key]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func resolveString(rec map[string]any, aliases []string) string {
	v, ok := resolveValue(rec, aliases)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%v", t)
	default:
		return fmt.Sprintf("%v", t)
	}
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
}

// excelEpoch is day zero of Excel's 1900 date system.
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseDate parses a remote date value permissively. Unparsable input yields
// nil, never an error: bad dates are expected noise in third-party data.
func ParseDate(raw any) *time.Time {
	switch v := raw.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return nil
		}
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, trimmed); err == nil {
				return &t
			}
		}
		return nil
	case float64:
		// Excel serial date offset; plausible range only.
		if v > 20000 && v < 80000 {
			t := excelEpoch.Add(time.Duration(v*24) * time.Hour)
			return &t
		}
		return nil
	default:
		return nil
	}
}
