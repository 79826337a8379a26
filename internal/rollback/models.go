// internal/rollback/models.go
package rollback

import (
	"rewind/internal/checkpoint"
	"rewind/internal/journal"
)

// Reason classifies why a rollback call failed
type Reason string

const (
	// ReasonNoRollbackTarget means no matching anchor record exists in the
	// journal.
	ReasonNoRollbackTarget Reason = "no_rollback_target"
	// ReasonNoCheckpointLinked means the anchor record carries no checkpoint
	// id.
	ReasonNoCheckpointLinked Reason = "no_checkpoint_linked"
	// ReasonCheckpointUnavailable means the checkpoint store returned
	// nothing for the linked id.
	ReasonCheckpointUnavailable Reason = "checkpoint_unavailable"
	// ReasonNothingToUndo means the undo or redo stack was empty.
	ReasonNothingToUndo Reason = "nothing_to_undo"
)

// RollbackResult is the uniform return value of every orchestration call.
// Per-file restore failures are collected in Errors and do not abort the
// call.
type RollbackResult struct {
	Success          bool                 `json:"success"`
	Reason           Reason               `json:"reason,omitempty"`
	Message          string               `json:"message"`
	RestoredFiles    []string             `json:"restored_files"`
	RestoredMessages []checkpoint.Message `json:"restored_messages"`
	Errors           []string             `json:"errors"`
}

func newResult() *RollbackResult {
	return &RollbackResult{
		RestoredFiles:    []string{},
		RestoredMessages: []checkpoint.Message{},
		Errors:           []string{},
	}
}

func (r *RollbackResult) fail(reason Reason, message string) *RollbackResult {
	r.Success = false
	r.Reason = reason
	r.Message = message
	return r
}

// RollbackPoint describes one available rollback target for display
type RollbackPoint struct {
	Type         string `json:"type"` // "question", "tool", "checkpoint"
	ID           string `json:"id"`
	Description  string `json:"description"`
	Timestamp    string `json:"timestamp"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
	MessageCount int    `json:"message_count,omitempty"`
}

// OperationSummary aggregates journal statistics and the meta undo/redo
// state
type OperationSummary struct {
	TotalOperations int                  `json:"total_operations"`
	OperationCounts map[journal.Kind]int `json:"operation_counts"`
	ModifiedFiles   []string             `json:"modified_files"`
	CanUndo         bool                 `json:"can_undo"`
	CanRedo         bool                 `json:"can_redo"`
	UndoStackSize   int                  `json:"undo_stack_size"`
	RedoStackSize   int                  `json:"redo_stack_size"`
}

// rollbackAction is the compact record of a completed rollback pushed onto
// the meta undo stack: the action's type and the affected operation ids, not
// the restored content itself.
type rollbackAction struct {
	Type         string   `json:"type"`
	CheckpointID string   `json:"checkpoint_id,omitempty"`
	AnchorID     string   `json:"anchor_id,omitempty"`
	OperationIDs []string `json:"operation_ids"`
}
