// internal/core/services/history.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// maxMissLogs caps per-run logging of history records whose serial number has
// no local item, to keep log volume bounded on large pulls.
const maxMissLogs = 5

// HistorySynchronizer pulls remote change-history events, maps the remote
// action vocabulary to the local taxonomy, and de-duplicates against events
// already imported.
type HistorySynchronizer struct {
	remote  ports.RemoteClient
	items   ports.ItemRepository
	history ports.HistoryRepository
	logger  *slog.Logger
}

// NewHistorySynchronizer creates a history synchronizer.
func NewHistorySynchronizer(remote ports.RemoteClient, items ports.ItemRepository, history ports.HistoryRepository, logger *slog.Logger) *HistorySynchronizer {
	return &HistorySynchronizer{
		remote:  remote,
		items:   items,
		history: history,
		logger:  logger.With(slog.String("component", "history_sync")),
	}
}

// remoteHistory is the loose shape of one remote history record.
type remoteHistory map[string]any

func (h remoteHistory) serial() string {
	return strings.TrimSpace(firstString(h, "serial_number", "sn"))
}

func (h remoteHistory) action() string {
	return firstString(h, "action", "aksi")
}

func (h remoteHistory) notes() string {
	return firstString(h, "notes", "keterangan", "catatan")
}

func (h remoteHistory) timestamp() any {
	for _, key := range []string{"timestamp", "created_at", "date", "waktu"} {
		if v, ok := h[key]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(rec map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := rec[key]; ok && v != nil {
			if s, ok := v.(string); ok {
				return s
			}
			return fmt.Sprintf("%v", v)
		}
	}
	return ""
}

// Sync imports the remote history collection. Best-effort: any failure is
// returned for logging but must never be treated as fatal to the run.
func (h *HistorySynchronizer) Sync(ctx context.Context) error {
	payload, err := h.remote.FetchHistories(ctx)
	if err != nil {
		return fmt.Errorf("fetching remote histories: %w", err)
	}

	records := unwrapRecords(payload)
	imported, skipped, misses := 0, 0, 0

	for _, raw := range records {
		rec := remoteHistory(raw)

		serial := rec.serial()
		if serial == "" {
			continue
		}

		item, err := h.items.FindBySerial(ctx, serial)
		if err != nil {
			return fmt.Errorf("looking up item %s: %w", serial, err)
		}
		if item == nil {
			misses++
			if misses <= maxMissLogs {
				h.logger.DebugContext(ctx, "history record has no local item",
					slog.String("serial_number", serial))
			}
			continue
		}

		action := domain.ClassifyAction(rec.action())
		notes := rec.notes()

		// Best-effort de-duplication on (item, action, notes); the remote
		// system exposes no event identifier.
		exists, err := h.history.Exists(ctx, item.ID, action, notes)
		if err != nil {
			return fmt.Errorf("checking duplicate history for %s: %w", serial, err)
		}
		if exists {
			skipped++
			continue
		}

		event := &domain.HistoryEvent{
			ItemID:   item.ID,
			Action:   action,
			Notes:    notes,
			Metadata: raw,
		}
		if ts := ParseDate(rec.timestamp()); ts != nil {
			event.CreatedAt = *ts
		}
		if err := h.history.Append(ctx, event); err != nil {
			return fmt.Errorf("appending history for %s: %w", serial, err)
		}
		imported++
	}

	h.logger.InfoContext(ctx, "history sync completed",
		slog.Int("imported", imported),
		slog.Int("duplicates_skipped", skipped),
		slog.Int("unmatched_serials", misses))

	return nil
}
