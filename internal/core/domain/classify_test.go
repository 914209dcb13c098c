package domain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpratama/gudang-be/internal/core/domain"
)

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected domain.ItemStatus
	}{
		{
			name:     "exact_gudang",
			raw:      "GUDANG",
			expected: domain.StatusGudang,
		},
		{
			name:     "lowercase_warehouse_alias",
			raw:      "di gudang",
			expected: domain.StatusGudang,
		},
		{
			name:     "english_stock_keyword",
			raw:      "in stock",
			expected: domain.StatusGudang,
		},
		{
			name:     "installed_indonesian",
			raw:      "Terpasang di pelanggan",
			expected: domain.StatusTerpasang,
		},
		{
			name:     "installed_english",
			raw:      "installed",
			expected: domain.StatusTerpasang,
		},
		{
			name:     "active_maps_to_installed",
			raw:      "AKTIF",
			expected: domain.StatusTerpasang,
		},
		{
			name:     "damaged_indonesian",
			raw:      "rusak total",
			expected: domain.StatusRusak,
		},
		{
			name:     "damaged_english",
			raw:      "BROKEN",
			expected: domain.StatusRusak,
		},
		{
			name:     "technician_carry",
			raw:      "dibawa teknisi",
			expected: domain.StatusTeknisi,
		},
		{
			name:     "empty_defaults_to_warehouse",
			raw:      "",
			expected: domain.StatusGudang,
		},
		{
			name:     "garbage_defaults_to_warehouse",
			raw:      "???",
			expected: domain.StatusGudang,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ClassifyStatus(tt.raw))
		})
	}
}

func TestClassifyStatus_RulePrecedence(t *testing.T) {
	// Warehouse keywords beat installed keywords when both appear.
	assert.Equal(t, domain.StatusGudang, domain.ClassifyStatus("kembali ke gudang setelah terpasang"))
	// Installed keywords beat damaged keywords.
	assert.Equal(t, domain.StatusTerpasang, domain.ClassifyStatus("terpasang, sebelumnya rusak"))
}

func TestClassifyNoteStatus(t *testing.T) {
	tests := []struct {
		name     string
		notes    string
		expected *domain.ItemStatus
	}{
		{
			name:     "empty_notes_no_signal",
			notes:    "",
			expected: nil,
		},
		{
			name:     "whitespace_only_no_signal",
			notes:    "   ",
			expected: nil,
		},
		{
			name:     "installed_in_the_field",
			notes:    "terpasang di lapangan",
			expected: statusPtr(domain.StatusTerpasang),
		},
		{
			name:     "dismantle_returns_to_warehouse",
			notes:    "dismantle pelanggan lama",
			expected: statusPtr(domain.StatusGudang),
		},
		{
			name:     "tarik_barang_returns_to_warehouse",
			notes:    "tarik barang dari ODP",
			expected: statusPtr(domain.StatusGudang),
		},
		{
			name:     "migrasi_means_installed",
			notes:    "migrasi paket pelanggan",
			expected: statusPtr(domain.StatusTerpasang),
		},
		{
			name:     "maintenance_with_technician",
			notes:    "maintenance rutin",
			expected: statusPtr(domain.StatusTeknisi),
		},
		{
			name:     "unrelated_notes_no_signal",
			notes:    "barang bagus",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := domain.ClassifyNoteStatus(tt.notes)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, *tt.expected, *got)
		})
	}
}

func TestClassifyNoteStatus_PhrasePrecedence(t *testing.T) {
	// A note carrying both a return phrase and a maintenance phrase resolves
	// to the warehouse on every call, not whichever phrase matched first.
	note := "maintenance: cabut perangkat dari pelanggan"
	for i := 0; i < 100; i++ {
		got := domain.ClassifyNoteStatus(note)
		require.NotNil(t, got)
		require.Equal(t, domain.StatusGudang, *got)
	}
}

func TestClassifyCategory(t *testing.T) {
	tests := []struct {
		name     string
		typeName string
		expected domain.ProductCategory
	}{
		{"ont_device", "ONT Huawei HG8245H", domain.CategoryNetworkDevice},
		{"router", "Router Mikrotik RB750", domain.CategoryNetworkDevice},
		{"dropcore_cable", "Dropcore 1 Core 150m", domain.CategoryCabling},
		{"utp_cable", "Kabel UTP Cat6", domain.CategoryCabling},
		{"splicer_tool", "Fusion Splicer Signal Fire", domain.CategoryTools},
		{"unknown_defaults_to_network_device", "Barang Misterius", domain.CategoryNetworkDevice},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ClassifyCategory(tt.typeName))
		})
	}
}

func TestClassifyAction(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected domain.HistoryAction
	}{
		{"status_keyword", "ubah status barang", domain.ActionStatusChanged},
		{"kondisi_keyword", "update kondisi", domain.ActionStatusChanged},
		{"move_keyword", "pindah lokasi", domain.ActionMoved},
		{"mutation_keyword", "mutasi gudang", domain.ActionMoved},
		{"edit_keyword", "edit data", domain.ActionNotesUpdated},
		{"delete_keyword", "hapus barang", domain.ActionDeleted},
		{"unknown_defaults_to_created", "tambah barang baru", domain.ActionCreated},
		{"empty_defaults_to_created", "", domain.ActionCreated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, domain.ClassifyAction(tt.raw))
		})
	}
}

func TestGenerateSKU(t *testing.T) {
	now := time.Unix(1700000000, 0)

	tests := []struct {
		name         string
		typeName     string
		wantContains string
	}{
		{"simple_name", "ONT X", "SYNC-ONT-1700000000"},
		{"long_first_word_truncated", "ROUTERBOARD Mikrotik", "SYNC-ROUTER-1700000000"},
		{"punctuation_stripped", "ONT-X/2", "SYNC-ONTX2-1700000000"},
		{"empty_name_fallback", "", "SYNC-ITEM-1700000000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sku := domain.GenerateSKU("SYNC", tt.typeName, now)
			assert.Equal(t, tt.wantContains, sku)
			assert.True(t, strings.HasPrefix(sku, "SYNC-"))
		})
	}
}

func TestItem_InWarehouse(t *testing.T) {
	tests := []struct {
		name     string
		status   domain.ItemStatus
		expected bool
	}{
		{"gudang_counts", domain.StatusGudang, true},
		{"legacy_alias_counts", domain.ItemStatus("DI GUDANG"), true},
		{"installed_does_not_count", domain.StatusTerpasang, false},
		{"damaged_does_not_count", domain.StatusRusak, false},
		{"technician_does_not_count", domain.StatusTeknisi, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &domain.Item{Status: tt.status}
			assert.Equal(t, tt.expected, item.InWarehouse())
		})
	}
}

func TestItem_Validate(t *testing.T) {
	tests := []struct {
		name      string
		item      *domain.Item
		wantError bool
		errorMsg  string
	}{
		{
			name:      "valid_item",
			item:      &domain.Item{ProductID: 1, SerialNumber: "SN001", Status: domain.StatusGudang},
			wantError: false,
		},
		{
			name:      "missing_serial",
			item:      &domain.Item{ProductID: 1, SerialNumber: "  "},
			wantError: true,
			errorMsg:  "serial_number is required",
		},
		{
			name:      "missing_product",
			item:      &domain.Item{SerialNumber: "SN001"},
			wantError: true,
			errorMsg:  "product_id is required",
		},
		{
			name:      "empty_status_defaults_to_gudang",
			item:      &domain.Item{ProductID: 1, SerialNumber: "SN001"},
			wantError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.item.Validate()
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.NotEmpty(t, tt.item.Status)
		})
	}
}

func TestProduct_Validate_Defaults(t *testing.T) {
	product := &domain.Product{SKU: "SYNC-X-1", Name: "X"}
	require.NoError(t, product.Validate())
	assert.Equal(t, domain.CategoryNetworkDevice, product.Category)
	assert.Equal(t, domain.DefaultUnit, product.Unit)
}

func statusPtr(s domain.ItemStatus) *domain.ItemStatus {
	return &s
}
