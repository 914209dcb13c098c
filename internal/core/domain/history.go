// internal/core/domain/history.go
package domain

import (
	"strings"
	"time"
)

// HistoryAction is the closed local taxonomy of item history actions.
type HistoryAction string

const (
	ActionCreated       HistoryAction = "CREATED"
	ActionStatusChanged HistoryAction = "STATUS_CHANGED"
	ActionMoved         HistoryAction = "MOVED"
	ActionNotesUpdated  HistoryAction = "NOTES_UPDATED"
	ActionDeleted       HistoryAction = "DELETED"
)

// HistoryEvent is an append-only audit record for an item. Sync never updates
// or deletes an existing event.
type HistoryEvent struct {
	ID        int64          `json:"id"`
	ItemID    int64          `json:"item_id"`
	Action    HistoryAction  `json:"action"`
	Notes     string         `json:"notes,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type actionRule struct {
	keywords []string
	action   HistoryAction
}

var actionRules = []actionRule{
	{[]string{"STATUS", "KONDISI"}, ActionStatusChanged},
	{[]string{"PINDAH", "MOVE", "MUTASI", "LOKASI", "LOCATION"}, ActionMoved},
	{[]string{"UPDATE", "EDIT", "UBAH"}, ActionNotesUpdated},
	{[]string{"DELETE", "HAPUS", "REMOVE"}, ActionDeleted},
}

// ClassifyAction maps free-text remote action vocabulary to the local
// taxonomy. Unclassified text defaults to the created action, which fits
// first-time imports.
func ClassifyAction(raw string) HistoryAction {
	upper := strings.ToUpper(raw)
	for _, rule := range actionRules {
		for _, kw := range rule.keywords {
			if strings.Contains(upper, kw) {
				return rule.action
			}
		}
	}
	return ActionCreated
}
