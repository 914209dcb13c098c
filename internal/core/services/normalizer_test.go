package services_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/services"
)

func TestNormalizer_Normalize_Envelopes(t *testing.T) {
	n := services.NewNormalizer()

	record := `{"serial_number": "SN001", "device_name": "ONT X", "status": "GUDANG"}`

	tests := []struct {
		name     string
		payload  string
		expected int
	}{
		{
			name:     "bare_array",
			payload:  `[` + record + `]`,
			expected: 1,
		},
		{
			name:     "data_envelope",
			payload:  `{"data": [` + record + `]}`,
			expected: 1,
		},
		{
			name:     "items_envelope",
			payload:  `{"items": [` + record + `]}`,
			expected: 1,
		},
		{
			name:     "single_object",
			payload:  record,
			expected: 1,
		},
		{
			name:     "empty_array",
			payload:  `[]`,
			expected: 0,
		},
		{
			name:     "unrecognized_scalar",
			payload:  `"not a collection"`,
			expected: 0,
		},
		{
			name:     "malformed_json",
			payload:  `{"data": [`,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := n.Normalize(json.RawMessage(tt.payload))
			assert.Len(t, items, tt.expected)
		})
	}
}

func TestNormalizer_Normalize_FieldAliases(t *testing.T) {
	n := services.NewNormalizer()

	tests := []struct {
		name       string
		payload    string
		wantSerial string
		wantMAC    string
		wantType   string
		wantStatus domain.ItemStatus
	}{
		{
			name:       "english_snake_case",
			payload:    `[{"serial_number": "SN001", "mac_address": "AA:BB:CC:DD:EE:01", "device_name": "ONT X", "status": "GUDANG"}]`,
			wantSerial: "SN001",
			wantMAC:    "AA:BB:CC:DD:EE:01",
			wantType:   "ONT X",
			wantStatus: domain.StatusGudang,
		},
		{
			name:       "spreadsheet_headers",
			payload:    `[{"Serial Number": "SN002", "MAC Address": "AA:BB:CC:DD:EE:02", "Nama Perangkat": "Router Y", "Status": "terpasang"}]`,
			wantSerial: "SN002",
			wantMAC:    "AA:BB:CC:DD:EE:02",
			wantType:   "Router Y",
			wantStatus: domain.StatusTerpasang,
		},
		{
			name:       "indonesian_field_names",
			payload:    `[{"no_seri": "SN003", "mac": "AA:BB:CC:DD:EE:03", "tipe": "STB Z", "kondisi": "rusak"}]`,
			wantSerial: "SN003",
			wantMAC:    "AA:BB:CC:DD:EE:03",
			wantType:   "STB Z",
			wantStatus: domain.StatusRusak,
		},
		{
			name:       "numeric_serial_stringified",
			payload:    `[{"sn": 123456, "device_name": "ONT X"}]`,
			wantSerial: "123456",
			wantType:   "ONT X",
			wantStatus: domain.StatusGudang,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items := n.Normalize(json.RawMessage(tt.payload))
			require.Len(t, items, 1)

			item := items[0]
			assert.Equal(t, tt.wantSerial, item.SerialNumber)
			assert.Equal(t, tt.wantType, item.ProductTypeName)
			assert.Equal(t, tt.wantStatus, item.Status)
			if tt.wantMAC == "" {
				assert.Nil(t, item.MACAddress)
			} else {
				require.NotNil(t, item.MACAddress)
				assert.Equal(t, tt.wantMAC, *item.MACAddress)
			}
			assert.NotNil(t, item.Raw)
		})
	}
}

func TestNormalizer_Normalize_DropsRecordsWithoutSerial(t *testing.T) {
	n := services.NewNormalizer()

	payload := `[
		{"serial_number": "SN001", "device_name": "ONT X"},
		{"device_name": "Phantom Device"},
		{"serial_number": "   ", "device_name": "Whitespace Serial"},
		{"serial_number": "SN002", "device_name": "ONT Y"}
	]`

	items := n.Normalize(json.RawMessage(payload))
	require.Len(t, items, 2)
	assert.Equal(t, "SN001", items[0].SerialNumber)
	assert.Equal(t, "SN002", items[1].SerialNumber)
}

func TestNormalizer_Normalize_DefaultProductTypeName(t *testing.T) {
	n := services.NewNormalizer()

	items := n.Normalize(json.RawMessage(`[{"serial_number": "SN001"}]`))
	require.Len(t, items, 1)
	assert.Equal(t, services.DefaultProductTypeName, items[0].ProductTypeName)
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		name     string
		raw      any
		wantNil  bool
		wantDate string // yyyy-mm-dd in UTC, when not nil
	}{
		{
			name:     "rfc3339",
			raw:      "2024-03-15T10:30:00Z",
			wantDate: "2024-03-15",
		},
		{
			name:     "date_time",
			raw:      "2024-03-15 10:30:00",
			wantDate: "2024-03-15",
		},
		{
			name:     "date_only",
			raw:      "2024-03-15",
			wantDate: "2024-03-15",
		},
		{
			name:     "indonesian_slash_format",
			raw:      "15/03/2024",
			wantDate: "2024-03-15",
		},
		{
			name:     "excel_serial_number",
			raw:      float64(45366), // 2024-03-15 in the 1900 date system
			wantDate: "2024-03-15",
		},
		{
			name:    "implausible_excel_serial",
			raw:     float64(123),
			wantNil: true,
		},
		{
			name:    "empty_string",
			raw:     "",
			wantNil: true,
		},
		{
			name:    "garbage_string",
			raw:     "kemarin sore",
			wantNil: true,
		},
		{
			name:    "nil_input",
			raw:     nil,
			wantNil: true,
		},
		{
			name:    "boolean_input",
			raw:     true,
			wantNil: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := services.ParseDate(tt.raw)
			if tt.wantNil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.wantDate, got.UTC().Format(time.DateOnly))
		})
	}
}
