package services_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/services"
	"github.com/hpratama/gudang-be/test/fakes"
	"github.com/hpratama/gudang-be/test/helpers"
)

func TestHistorySynchronizer_Sync_ImportsAndClassifies(t *testing.T) {
	ctx := context.Background()
	items := fakes.NewItemRepository()
	history := fakes.NewHistoryRepository()

	seedItem(t, items, 1, "SN001", domain.StatusGudang)

	remote := &fakes.RemoteClient{
		HistoryPayload: json.RawMessage(`[
			{"serial_number": "SN001", "action": "ubah status", "notes": "dipasang di pelanggan", "timestamp": "2024-03-15T10:30:00Z"},
			{"serial_number": "SN001", "aksi": "pindah lokasi", "keterangan": "mutasi ke gudang cabang"}
		]`),
	}

	h := services.NewHistorySynchronizer(remote, items, history, helpers.TestLogger())
	require.NoError(t, h.Sync(ctx))

	events := history.Events()
	require.Len(t, events, 2)

	assert.Equal(t, domain.ActionStatusChanged, events[0].Action)
	assert.Equal(t, "dipasang di pelanggan", events[0].Notes)
	assert.Equal(t, "2024-03-15", events[0].CreatedAt.UTC().Format(time.DateOnly))
	assert.NotNil(t, events[0].Metadata)

	assert.Equal(t, domain.ActionMoved, events[1].Action)
	assert.Equal(t, "mutasi ke gudang cabang", events[1].Notes)
}

func TestHistorySynchronizer_Sync_SkipsDuplicates(t *testing.T) {
	ctx := context.Background()
	items := fakes.NewItemRepository()
	history := fakes.NewHistoryRepository()

	seedItem(t, items, 1, "SN001", domain.StatusGudang)

	remote := &fakes.RemoteClient{
		HistoryPayload: json.RawMessage(`[
			{"serial_number": "SN001", "action": "ubah status", "notes": "dipasang"}
		]`),
	}

	h := services.NewHistorySynchronizer(remote, items, history, helpers.TestLogger())
	require.NoError(t, h.Sync(ctx))
	require.NoError(t, h.Sync(ctx))

	assert.Len(t, history.Events(), 1, "re-running the pull must not duplicate events")
}

func TestHistorySynchronizer_Sync_SameActionDifferentNotes(t *testing.T) {
	ctx := context.Background()
	items := fakes.NewItemRepository()
	history := fakes.NewHistoryRepository()

	seedItem(t, items, 1, "SN001", domain.StatusGudang)

	remote := &fakes.RemoteClient{
		HistoryPayload: json.RawMessage(`[
			{"serial_number": "SN001", "action": "ubah status", "notes": "dipasang"},
			{"serial_number": "SN001", "action": "ubah status", "notes": "dicabut"}
		]`),
	}

	h := services.NewHistorySynchronizer(remote, items, history, helpers.TestLogger())
	require.NoError(t, h.Sync(ctx))

	assert.Len(t, history.Events(), 2, "notes distinguish otherwise identical events")
}

func TestHistorySynchronizer_Sync_SkipsUnknownSerials(t *testing.T) {
	ctx := context.Background()
	items := fakes.NewItemRepository()
	history := fakes.NewHistoryRepository()

	remote := &fakes.RemoteClient{
		HistoryPayload: json.RawMessage(`[
			{"serial_number": "GHOST-1", "action": "ubah status"},
			{"action": "tanpa serial"}
		]`),
	}

	h := services.NewHistorySynchronizer(remote, items, history, helpers.TestLogger())
	require.NoError(t, h.Sync(ctx))

	assert.Empty(t, history.Events())
}

func TestHistorySynchronizer_Sync_FetchFailure(t *testing.T) {
	ctx := context.Background()
	remote := &fakes.RemoteClient{HistoryErr: errors.New("504 gateway timeout")}

	h := services.NewHistorySynchronizer(remote, fakes.NewItemRepository(), fakes.NewHistoryRepository(), helpers.TestLogger())
	err := h.Sync(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetching remote histories")
}
