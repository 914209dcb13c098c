// internal/adapters/db/syncrun_repository.go
package db

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// syncRunRepository implements ports.SyncRunRepository
type syncRunRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewSyncRunRepository creates a new sync run repository
func NewSyncRunRepository(db *Database, logger *slog.Logger) ports.SyncRunRepository {
	return &syncRunRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "sync_run")),
	}
}

var _ ports.SyncRunRepository = (*syncRunRepository)(nil)

// Create inserts a new in-progress run row
func (r *syncRunRepository) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (id, status, started_at)
		VALUES ($1, $2, $3)`

	_, err := r.db.Exec(ctx, query, run.ID, run.Status, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create sync run: %w", err)
	}

	r.logger.DebugContext(ctx, "sync run created",
		slog.String("run_id", run.ID.String()))

	return nil
}

// Complete marks a run as successful. Only in-progress runs transition, so a
// run closes at most once.
func (r *syncRunRepository) Complete(ctx context.Context, id string, details string) error {
	query := `
		UPDATE sync_runs
		SET status = $2, finished_at = NOW(), details = $3
		WHERE id = $1 AND status = $4`

	tag, err := r.db.Exec(ctx, query, id, domain.SyncRunSuccess, details, domain.SyncRunInProgress)
	if err != nil {
		return fmt.Errorf("failed to complete sync run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync run not in progress: %s", id)
	}

	return nil
}

// Fail marks a run as failed with an error message.
func (r *syncRunRepository) Fail(ctx context.Context, id string, errMsg string) error {
	query := `
		UPDATE sync_runs
		SET status = $2, finished_at = NOW(), error_message = $3
		WHERE id = $1 AND status = $4`

	tag, err := r.db.Exec(ctx, query, id, domain.SyncRunFailed, errMsg, domain.SyncRunInProgress)
	if err != nil {
		return fmt.Errorf("failed to mark sync run failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("sync run not in progress: %s", id)
	}

	return nil
}

// Latest retrieves the most recent runs, newest first
func (r *syncRunRepository) Latest(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if limit <= 0 {
		limit = 1
	}

	query := `
		SELECT id, status, started_at, finished_at, details, error_message
		FROM sync_runs
		ORDER BY started_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.SyncRun
	for rows.Next() {
		run := &domain.SyncRun{}
		var finishedAt sql.NullTime
		var details, errMsg sql.NullString

		err := rows.Scan(&run.ID, &run.Status, &run.StartedAt, &finishedAt, &details, &errMsg)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync run: %w", err)
		}

		if finishedAt.Valid {
			run.FinishedAt = &finishedAt.Time
		}
		run.Details = details.String
		if errMsg.Valid {
			run.ErrorMessage = &errMsg.String
		}

		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return runs, nil
}
