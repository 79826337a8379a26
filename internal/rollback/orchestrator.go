// internal/rollback/orchestrator.go
package rollback

import (
	"fmt"
	"os"
	"path/filepath"

	"rewind/internal/checkpoint"
	"rewind/internal/journal"
)

// DefaultMaxStackSize bounds the meta undo/redo stacks
const DefaultMaxStackSize = 50

// Orchestrator composes the operation journal and the checkpoint store into
// the three rollback algorithms plus meta undo/redo of rollback actions
// themselves. One instance owns the undo/redo stacks for one session; it is
// never a process-wide singleton. Calls are not safe for concurrent use and
// must be serialized by the caller.
type Orchestrator struct {
	store        *checkpoint.Store
	journal      *journal.Journal
	undoStack    []rollbackAction
	redoStack    []rollbackAction
	maxStackSize int
}

// New creates an orchestrator over a checkpoint store and a session journal.
// maxStackSize bounds the undo/redo stacks; values <= 0 use
// DefaultMaxStackSize.
func New(store *checkpoint.Store, j *journal.Journal, maxStackSize int) *Orchestrator {
	if maxStackSize <= 0 {
		maxStackSize = DefaultMaxStackSize
	}
	return &Orchestrator{
		store:        store,
		journal:      j,
		maxStackSize: maxStackSize,
	}
}

// Journal returns the orchestrator's session journal
func (o *Orchestrator) Journal() *journal.Journal {
	return o.journal
}

// Store returns the orchestrator's checkpoint store
func (o *Orchestrator) Store() *checkpoint.Store {
	return o.store
}

// CreatePreQuestionCheckpoint snapshots the message list before a user
// question is processed and records the checkpoint in the journal. Returns
// the checkpoint id for the caller to attach to its user_question record.
func (o *Orchestrator) CreatePreQuestionCheckpoint(sessionID string, messages []checkpoint.Message, question string) (string, error) {
	cp, err := o.store.CreateCheckpoint(sessionID, messages, fmt.Sprintf("Before question: %s...", truncate(question, 50)))
	if err != nil {
		return "", fmt.Errorf("create pre-question checkpoint: %w", err)
	}

	o.journal.AddCheckpoint(cp.ID, cp.Description, len(messages))

	return cp.ID, nil
}

// CreatePreToolCheckpoint snapshots the message list before a tool that
// might mutate files is invoked
func (o *Orchestrator) CreatePreToolCheckpoint(sessionID string, messages []checkpoint.Message, toolName string) (string, error) {
	cp, err := o.store.CreateCheckpoint(sessionID, messages, fmt.Sprintf("Before tool: %s", toolName))
	if err != nil {
		return "", fmt.Errorf("create pre-tool checkpoint: %w", err)
	}

	return cp.ID, nil
}

// RollbackToPreviousQuestion rewinds conversation and file state to the
// point before the most recent user question: it materializes the question's
// linked checkpoint and replays the pre-image of every file mutation
// recorded after the question.
func (o *Orchestrator) RollbackToPreviousQuestion(sessionID string) *RollbackResult {
	result := newResult()

	lastQuestion := o.journal.GetLastUserQuestion()
	if lastQuestion == nil {
		return result.fail(ReasonNoRollbackTarget, "No previous question found to rollback to.")
	}

	checkpointID := lastQuestion.UserQuestion.CheckpointID
	if checkpointID == "" {
		return result.fail(ReasonNoCheckpointLinked, "No checkpoint found for the last question.")
	}

	messages := o.store.RestoreCheckpoint(checkpointID)
	if messages == nil {
		return result.fail(ReasonCheckpointUnavailable, fmt.Sprintf("Failed to restore checkpoint %s", checkpointID))
	}

	operationsSince, err := o.journal.GetOperationsSince(lastQuestion.ID)
	if err != nil {
		return result.fail(ReasonNoRollbackTarget, fmt.Sprintf("Operation %s not found in journal", lastQuestion.ID))
	}

	o.restoreFiles(operationsSince, result)

	o.pushUndo(rollbackAction{
		Type:         "rollback_to_question",
		CheckpointID: checkpointID,
		OperationIDs: operationIDs(operationsSince),
	})

	result.Success = true
	result.Message = fmt.Sprintf("Rolled back to question: %s", lastQuestion.Description)
	result.RestoredMessages = messages
	return result
}

// RollbackToPreviousToolCall rewinds file state to the point before the most
// recent tool call. The tool_call record carries no checkpoint link, so only
// files are restored and RestoredMessages stays empty.
func (o *Orchestrator) RollbackToPreviousToolCall(sessionID string) *RollbackResult {
	result := newResult()

	lastTool := o.journal.GetLastToolCall()
	if lastTool == nil {
		return result.fail(ReasonNoRollbackTarget, "No previous tool call found to rollback to.")
	}

	operationsSince, err := o.journal.GetOperationsSince(lastTool.ID)
	if err != nil {
		return result.fail(ReasonNoRollbackTarget, fmt.Sprintf("Operation %s not found in journal", lastTool.ID))
	}

	o.restoreFiles(operationsSince, result)

	o.pushUndo(rollbackAction{
		Type:         "rollback_to_tool",
		AnchorID:     lastTool.ID,
		OperationIDs: operationIDs(operationsSince),
	})

	result.Success = true
	result.Message = fmt.Sprintf("Rolled back to before tool call: %s", lastTool.Description)
	return result
}

// RollbackToCheckpoint rewinds conversation and file state to a specific
// checkpoint recorded in the journal
func (o *Orchestrator) RollbackToCheckpoint(checkpointID string) *RollbackResult {
	result := newResult()

	messages := o.store.RestoreCheckpoint(checkpointID)
	if messages == nil {
		return result.fail(ReasonCheckpointUnavailable, fmt.Sprintf("Failed to restore checkpoint %s", checkpointID))
	}

	anchor := o.findCheckpointOperation(checkpointID)
	if anchor == nil {
		return result.fail(ReasonNoRollbackTarget, fmt.Sprintf("Checkpoint %s not found in operation history", checkpointID))
	}

	operationsSince, err := o.journal.GetOperationsSince(anchor.ID)
	if err != nil {
		return result.fail(ReasonNoRollbackTarget, fmt.Sprintf("Operation %s not found in journal", anchor.ID))
	}

	o.restoreFiles(operationsSince, result)

	o.pushUndo(rollbackAction{
		Type:         "rollback_to_checkpoint",
		CheckpointID: checkpointID,
		OperationIDs: operationIDs(operationsSince),
	})

	result.Success = true
	result.Message = fmt.Sprintf("Rolled back to checkpoint: %s", anchor.Description)
	result.RestoredMessages = messages
	return result
}

// findCheckpointOperation locates the journal record linked to a checkpoint
// id: either a checkpoint record or a user question that carries the id.
func (o *Orchestrator) findCheckpointOperation(checkpointID string) *journal.Operation {
	for _, op := range o.journal.GetOperations("", 0) {
		if op.Checkpoint != nil && op.Checkpoint.CheckpointID == checkpointID {
			found := op
			return &found
		}
		if op.UserQuestion != nil && op.UserQuestion.CheckpointID == checkpointID {
			found := op
			return &found
		}
	}
	return nil
}

// restoreFiles replays captured pre-images back onto disk for every file
// mutation in the suffix, in journal order. When a path appears more than
// once, later records overwrite earlier ones, so the file ends at the
// pre-image captured by its temporally-last mutation rather than the content
// at the anchor. Write failures are collected and the loop continues.
func (o *Orchestrator) restoreFiles(operations []journal.Operation, result *RollbackResult) {
	for _, op := range operations {
		if op.FileOperation == nil || op.FileOperation.OldContent == nil {
			continue
		}

		path := op.FileOperation.FilePath
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to restore %s: %v", path, err))
			continue
		}
		if err := os.WriteFile(path, []byte(*op.FileOperation.OldContent), 0644); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to restore %s: %v", path, err))
			continue
		}

		result.RestoredFiles = append(result.RestoredFiles, path)
	}
}

func operationIDs(operations []journal.Operation) []string {
	ids := make([]string, len(operations))
	for i, op := range operations {
		ids[i] = op.ID
	}
	return ids
}

// pushUndo records a completed rollback action and clears the redo stack
func (o *Orchestrator) pushUndo(action rollbackAction) {
	o.undoStack = append(o.undoStack, action)
	if len(o.undoStack) > o.maxStackSize {
		o.undoStack = o.undoStack[1:]
	}
	o.redoStack = nil
}

// Undo moves the most recent rollback-action record from the undo stack to
// the redo stack. The stacks track that a rollback happened, not what state
// preceded it, so no file or checkpoint is re-read or re-written.
func (o *Orchestrator) Undo() *RollbackResult {
	result := newResult()

	if len(o.undoStack) == 0 {
		return result.fail(ReasonNothingToUndo, "Nothing to undo.")
	}

	action := o.undoStack[len(o.undoStack)-1]
	o.undoStack = o.undoStack[:len(o.undoStack)-1]

	o.redoStack = append(o.redoStack, action)
	if len(o.redoStack) > o.maxStackSize {
		o.redoStack = o.redoStack[1:]
	}

	result.Success = true
	result.Message = "Undo operation completed."
	return result
}

// Redo mirrors Undo, moving the most recent record back from the redo stack
func (o *Orchestrator) Redo() *RollbackResult {
	result := newResult()

	if len(o.redoStack) == 0 {
		return result.fail(ReasonNothingToUndo, "Nothing to redo.")
	}

	action := o.redoStack[len(o.redoStack)-1]
	o.redoStack = o.redoStack[:len(o.redoStack)-1]

	o.undoStack = append(o.undoStack, action)
	if len(o.undoStack) > o.maxStackSize {
		o.undoStack = o.undoStack[1:]
	}

	result.Success = true
	result.Message = "Redo operation completed."
	return result
}

// CanUndo reports whether the undo stack is non-empty
func (o *Orchestrator) CanUndo() bool {
	return len(o.undoStack) > 0
}

// CanRedo reports whether the redo stack is non-empty
func (o *Orchestrator) CanRedo() bool {
	return len(o.redoStack) > 0
}

// GetAvailableRollbackPoints lists the current rollback targets for display:
// the last user question, the last tool call and the five newest
// checkpoints.
func (o *Orchestrator) GetAvailableRollbackPoints() []RollbackPoint {
	points := []RollbackPoint{}

	if lastQuestion := o.journal.GetLastUserQuestion(); lastQuestion != nil {
		points = append(points, RollbackPoint{
			Type:         "question",
			ID:           lastQuestion.ID,
			Description:  lastQuestion.Description,
			Timestamp:    lastQuestion.Timestamp.Format("2006-01-02T15:04:05"),
			CheckpointID: lastQuestion.UserQuestion.CheckpointID,
		})
	}

	if lastTool := o.journal.GetLastToolCall(); lastTool != nil {
		points = append(points, RollbackPoint{
			Type:        "tool",
			ID:          lastTool.ID,
			Description: lastTool.Description,
			Timestamp:   lastTool.Timestamp.Format("2006-01-02T15:04:05"),
		})
	}

	checkpoints, _ := o.store.ListCheckpoints("")
	if len(checkpoints) > 5 {
		checkpoints = checkpoints[:5]
	}
	for _, cp := range checkpoints {
		points = append(points, RollbackPoint{
			Type:         "checkpoint",
			ID:           cp.ID,
			Description:  cp.Description,
			Timestamp:    cp.CreatedAt.Format("2006-01-02T15:04:05"),
			MessageCount: cp.MessageCount,
		})
	}

	return points
}

// GetOperationSummary aggregates journal statistics and the meta undo/redo
// state. It is a pure read over the journal and the two stacks.
func (o *Orchestrator) GetOperationSummary() *OperationSummary {
	operations := o.journal.GetOperations("", 0)

	counts := make(map[journal.Kind]int)
	seen := make(map[string]bool)
	modifiedFiles := []string{}

	for _, op := range operations {
		counts[op.Kind]++
		if op.FileOperation != nil && !seen[op.FileOperation.FilePath] {
			seen[op.FileOperation.FilePath] = true
			modifiedFiles = append(modifiedFiles, op.FileOperation.FilePath)
		}
	}

	return &OperationSummary{
		TotalOperations: len(operations),
		OperationCounts: counts,
		ModifiedFiles:   modifiedFiles,
		CanUndo:         o.CanUndo(),
		CanRedo:         o.CanRedo(),
		UndoStackSize:   len(o.undoStack),
		RedoStackSize:   len(o.redoStack),
	}
}

// truncate shortens a string for use in checkpoint descriptions
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
