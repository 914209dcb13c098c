// internal/core/services/sync.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hpratama/gudang-be/internal/core/domain"
	"github.com/hpratama/gudang-be/internal/core/ports"
)

// SnapshotArchiver stores the raw remote payload of a run for later
// debugging. Optional; archiving failures never affect the run outcome.
type SnapshotArchiver interface {
	Archive(ctx context.Context, runID string, payload []byte) error
}

// SyncEngine orchestrates one bounded sync invocation: fetch, normalize,
// reconcile, recalculate stock, pull histories, and record the outcome in
// the run ledger. Records are processed one at a time so that a failure
// is always attributable to a single serial number.
type SyncEngine struct {
	session      ports.SessionProvider
	remote       ports.RemoteClient
	normalizer   *Normalizer
	reconciler   *Reconciler
	recalculator *StockRecalculator
	histories    *HistorySynchronizer
	runs         ports.SyncRunRepository
	archiver     SnapshotArchiver
	logger       *slog.Logger
}

var _ ports.SyncService = (*SyncEngine)(nil)

// NewSyncEngine wires the engine. archiver may be nil.
func NewSyncEngine(
	session ports.SessionProvider,
	remote ports.RemoteClient,
	normalizer *Normalizer,
	reconciler *Reconciler,
	recalculator *StockRecalculator,
	histories *HistorySynchronizer,
	runs ports.SyncRunRepository,
	archiver SnapshotArchiver,
	logger *slog.Logger,
) *SyncEngine {
	return &SyncEngine{
		session:      session,
		remote:       remote,
		normalizer:   normalizer,
		reconciler:   reconciler,
		recalculator: recalculator,
		histories:    histories,
		runs:         runs,
		archiver:     archiver,
		logger:       logger.With(slog.String("service", "sync")),
	}
}

// Run executes one sync invocation. The ledger row is created before the
// first remote call and closed with exactly one terminal transition.
func (e *SyncEngine) Run(ctx context.Context) *ports.RunSummary {
	run := &domain.SyncRun{
		ID:        uuid.New(),
		Status:    domain.SyncRunInProgress,
		StartedAt: time.Now(),
	}
	if err := e.runs.Create(ctx, run); err != nil {
		// Without a ledger row there is nothing to close; fail fast.
		e.logger.ErrorContext(ctx, "failed to open sync run", slog.String("error", err.Error()))
		return &ports.RunSummary{Success: false, Message: fmt.Sprintf("failed to open sync run: %v", err)}
	}

	e.logger.InfoContext(ctx, "sync run started", slog.String("run_id", run.ID.String()))

	summary, err := e.execute(ctx, run)
	if err != nil {
		msg := err.Error()
		if ferr := e.runs.Fail(ctx, run.ID.String(), msg); ferr != nil {
			e.logger.ErrorContext(ctx, "failed to close sync run as failed",
				slog.String("run_id", run.ID.String()),
				slog.String("error", ferr.Error()))
		}
		e.logger.ErrorContext(ctx, "sync run failed",
			slog.String("run_id", run.ID.String()),
			slog.String("error", msg))
		return &ports.RunSummary{Success: false, Message: msg}
	}

	details := fmt.Sprintf("processed=%d created=%d updated=%d errors=%d",
		summary.Processed, summary.Created, summary.Updated, summary.Errors)
	if err := e.runs.Complete(ctx, run.ID.String(), details); err != nil {
		e.logger.ErrorContext(ctx, "failed to close sync run as successful",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()))
	}

	e.logger.InfoContext(ctx, "sync run completed",
		slog.String("run_id", run.ID.String()),
		slog.Int("created", summary.Created),
		slog.Int("updated", summary.Updated),
		slog.Int("errors", summary.Errors))

	return &ports.RunSummary{
		Success: true,
		Created: summary.Created,
		Updated: summary.Updated,
		Errors:  summary.Errors,
		Message: details,
	}
}

// execute performs the fatal part of a run. Reconciliation-level record
// errors and history failures are absorbed; only auth and fetch failures
// escape.
func (e *SyncEngine) execute(ctx context.Context, run *domain.SyncRun) (domain.SyncResult, error) {
	payload, err := e.remote.FetchInventory(ctx)
	if err != nil {
		return domain.SyncResult{}, err
	}

	if e.archiver != nil {
		if err := e.archiver.Archive(ctx, run.ID.String(), payload); err != nil {
			e.logger.WarnContext(ctx, "payload snapshot archive failed",
				slog.String("run_id", run.ID.String()),
				slog.String("error", err.Error()))
		}
	}

	records := e.normalizer.Normalize(payload)
	result := e.reconciler.Reconcile(ctx, records)

	if err := e.recalculator.Recalculate(ctx); err != nil {
		return result, fmt.Errorf("stock recalculation failed: %w", err)
	}

	// History pull is best-effort: a failure here still allows the run to be
	// reported successful.
	if err := e.histories.Sync(ctx); err != nil {
		e.logger.WarnContext(ctx, "history sync failed",
			slog.String("run_id", run.ID.String()),
			slog.String("error", err.Error()))
	}

	return result, nil
}

// Status reports the operator-facing connection and last-run state.
func (e *SyncEngine) Status(ctx context.Context) (*ports.SyncStatus, error) {
	status := &ports.SyncStatus{Connected: e.session.Connected(ctx)}

	runs, err := e.runs.Latest(ctx, 1)
	if err != nil {
		return nil, fmt.Errorf("querying run ledger: %w", err)
	}
	if len(runs) > 0 {
		status.LastSyncAt = &runs[0].StartedAt
		s := string(runs[0].Status)
		status.LastSyncStatus = &s
	}
	return status, nil
}

// History returns the most recent ledger rows, newest first.
func (e *SyncEngine) History(ctx context.Context, limit int) ([]*domain.SyncRun, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return e.runs.Latest(ctx, limit)
}
