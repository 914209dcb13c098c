// internal/core/domain/syncrun.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SyncRunStatus is the lifecycle status of a sync run.
type SyncRunStatus string

const (
	SyncRunInProgress SyncRunStatus = "IN_PROGRESS"
	SyncRunSuccess    SyncRunStatus = "SUCCESS"
	SyncRunFailed     SyncRunStatus = "FAILED"
)

// SyncRun is one row of the durable run ledger. Exactly one exists per
// engine invocation; it is created before the first remote call and closed
// with exactly one terminal transition.
type SyncRun struct {
	ID           uuid.UUID     `json:"id"`
	Status       SyncRunStatus `json:"status"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   *time.Time    `json:"finished_at,omitempty"`
	Details      string        `json:"details,omitempty"`
	ErrorMessage *string       `json:"error_message,omitempty"`
}

// SyncResult is the fold accumulator for one reconciliation batch and the
// public outcome of a run.
type SyncResult struct {
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	Errors        int      `json:"errors"`
	Processed     int      `json:"processed"`
	ErrorMessages []string `json:"error_messages,omitempty"`
}
