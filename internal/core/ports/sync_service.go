// internal/core/ports/sync_service.go
package ports

import (
	"context"
	"time"

	"github.com/hpratama/gudang-be/internal/core/domain"
)

// SyncService is the application port for the external inventory sync engine.
type SyncService interface {
	// Run executes one full sync invocation: fetch, normalize, reconcile,
	// recalculate stock, pull histories, and record the run in the ledger.
	Run(ctx context.Context) *RunSummary
	// Status reports the operator-facing connection and last-run state.
	Status(ctx context.Context) (*SyncStatus, error)
	// History returns the most recent ledger rows, newest first.
	History(ctx context.Context, limit int) ([]*domain.SyncRun, error)
}

// RunSummary is the synchronous result of a sync invocation.
type RunSummary struct {
	Success bool   `json:"success"`
	Created int    `json:"created"`
	Updated int    `json:"updated"`
	Errors  int    `json:"errors"`
	Message string `json:"message"`
}

// SyncStatus is the operator status query result.
type SyncStatus struct {
	Connected      bool       `json:"connected"`
	LastSyncAt     *time.Time `json:"last_sync_at"`
	LastSyncStatus *string    `json:"last_sync_status"`
}
