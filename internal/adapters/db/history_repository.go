// internal/adapters/db/history_repository.go
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// historyRepository implements ports.HistoryRepository
type historyRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *Database, logger *slog.Logger) ports.HistoryRepository {
	return &historyRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "history")),
	}
}

var _ ports.HistoryRepository = (*historyRepository)(nil)

// Append inserts a new history event. Events are never updated or deleted.
func (r *historyRepository) Append(ctx context.Context, event *domain.HistoryEvent) error {
	var metadata []byte
	if event.Metadata != nil {
		var err error
		metadata, err = json.Marshal(event.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata: %w", err)
		}
	}

	query := `
		INSERT INTO item_histories (item_id, action, notes, metadata, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, NOW()))
		RETURNING id, created_at`

	var createdAt interface{}
	if !event.CreatedAt.IsZero() {
		createdAt = event.CreatedAt
	}

	err := r.db.QueryRow(ctx, query,
		event.ItemID, event.Action, nullIfEmpty(event.Notes), metadata, createdAt,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to append history event: %w", err)
	}

	return nil
}

// Exists reports whether an event with the same item, action and notes has
// already been recorded. Remote histories carry no stable identifier, so
// this triple is the dedup key for repeated syncs.
func (r *historyRepository) Exists(ctx context.Context, itemID int64, action domain.HistoryAction, notes string) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM item_histories
			WHERE item_id = $1 AND action = $2 AND COALESCE(notes, '') = $3
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, query, itemID, action, notes).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check history existence: %w", err)
	}

	return exists, nil
}

// FindByItem retrieves the most recent history events for an item
func (r *historyRepository) FindByItem(ctx context.Context, itemID int64, limit int) ([]*domain.HistoryEvent, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, item_id, action, notes, metadata, created_at
		FROM item_histories
		WHERE item_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, itemID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history events: %w", err)
	}
	defer rows.Close()

	var events []*domain.HistoryEvent
	for rows.Next() {
		event := &domain.HistoryEvent{}
		var notes sql.NullString
		var metadata []byte

		err := rows.Scan(&event.ID, &event.ItemID, &event.Action, &notes, &metadata, &event.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history event: %w", err)
		}

		event.Notes = notes.String
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &event.Metadata); err != nil {
				r.logger.WarnContext(ctx, "failed to decode history metadata",
					slog.Int64("event_id", event.ID), "err", err)
			}
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return events, nil
}
