// internal/journal/journal.go
package journal

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a lookup references an operation id that is
// not present in the journal.
var ErrNotFound = errors.New("operation not found")

// Journal is the append-only operation log for a single session. Records are
// never mutated or reordered after creation; insertion order is the only
// ordering relation. Lookups are linear backward scans -- session-local
// history is expected to stay small enough that an index would be overkill.
type Journal struct {
	sessionID    string
	operations   []Operation
	currentIndex int
}

// New creates an empty journal for a session
func New(sessionID string) *Journal {
	return &Journal{
		sessionID:    sessionID,
		currentIndex: -1,
	}
}

// newOperationID generates a short unique operation id
func newOperationID() string {
	return uuid.New().String()[:8]
}

// truncate shortens a string for use in descriptions
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

// SessionID returns the owning session id
func (j *Journal) SessionID() string {
	return j.sessionID
}

// Len returns the number of recorded operations
func (j *Journal) Len() int {
	return len(j.operations)
}

func (j *Journal) append(op Operation) Operation {
	j.operations = append(j.operations, op)
	j.currentIndex = len(j.operations) - 1
	return op
}

// AddUserQuestion records a user question. checkpointID links the checkpoint
// created before the question was processed and may be empty.
func (j *Journal) AddUserQuestion(question string, messageIndex int, checkpointID string) Operation {
	return j.append(Operation{
		ID:          newOperationID(),
		Kind:        KindUserQuestion,
		Timestamp:   time.Now(),
		Description: fmt.Sprintf("User question: %s", truncate(question, 50)),
		UserQuestion: &UserQuestion{
			Question:     question,
			MessageIndex: messageIndex,
			CheckpointID: checkpointID,
		},
	})
}

// AddToolCall records a tool invocation. parentID links the user question
// that triggered it and may be empty.
func (j *Journal) AddToolCall(toolName string, arguments map[string]interface{}, result *string, success bool, callErr *string, parentID string) Operation {
	return j.append(Operation{
		ID:          newOperationID(),
		Kind:        KindToolCall,
		Timestamp:   time.Now(),
		Description: fmt.Sprintf("Tool call: %s", toolName),
		ParentID:    parentID,
		ToolCall: &ToolCall{
			ToolName:  toolName,
			Arguments: arguments,
			Result:    result,
			Success:   success,
			Error:     callErr,
		},
	})
}

// AddFileOperation records a file mutation. The caller supplies the accurate
// pre-image and post-image; the journal performs no I/O itself. verb is one
// of "modify", "create" or "delete".
func (j *Journal) AddFileOperation(filePath, verb string, oldContent, newContent *string, parentID string) Operation {
	kind := KindFileModification
	switch verb {
	case "create":
		kind = KindFileCreation
	case "delete":
		kind = KindFileDeletion
	}

	return j.append(Operation{
		ID:          newOperationID(),
		Kind:        kind,
		Timestamp:   time.Now(),
		Description: fmt.Sprintf("File %s: %s", verb, filePath),
		ParentID:    parentID,
		FileOperation: &FileOperation{
			FilePath:   filePath,
			Verb:       verb,
			OldContent: oldContent,
			NewContent: newContent,
		},
	})
}

// AddCheckpoint records that a conversation checkpoint was taken
func (j *Journal) AddCheckpoint(checkpointID, description string, messageIndex int) Operation {
	return j.append(Operation{
		ID:          newOperationID(),
		Kind:        KindCheckpoint,
		Timestamp:   time.Now(),
		Description: description,
		Checkpoint: &CheckpointRef{
			CheckpointID: checkpointID,
			MessageIndex: messageIndex,
		},
	})
}

// GetOperation returns the operation with the given id, or nil
func (j *Journal) GetOperation(id string) *Operation {
	for i := range j.operations {
		if j.operations[i].ID == id {
			op := j.operations[i]
			return &op
		}
	}
	return nil
}

// GetOperations returns operations in insertion order, optionally filtered
// by kind (empty kind matches all) and limited to the most recent `limit`
// entries (limit <= 0 means no limit).
func (j *Journal) GetOperations(kind Kind, limit int) []Operation {
	ops := make([]Operation, 0, len(j.operations))
	for _, op := range j.operations {
		if kind != "" && op.Kind != kind {
			continue
		}
		ops = append(ops, op)
	}

	if limit > 0 && len(ops) > limit {
		ops = ops[len(ops)-limit:]
	}
	return ops
}

// GetLastUserQuestion returns the most recent user question, or nil
func (j *Journal) GetLastUserQuestion() *Operation {
	for i := len(j.operations) - 1; i >= 0; i-- {
		if j.operations[i].Kind == KindUserQuestion {
			op := j.operations[i]
			return &op
		}
	}
	return nil
}

// GetLastToolCall returns the most recent tool call, or nil
func (j *Journal) GetLastToolCall() *Operation {
	for i := len(j.operations) - 1; i >= 0; i-- {
		if j.operations[i].Kind == KindToolCall {
			op := j.operations[i]
			return &op
		}
	}
	return nil
}

// GetOperationsSince returns the strict suffix of operations after the
// record with the given id, in original order. The suffix is empty when id
// denotes the last record; ErrNotFound is returned when id is absent.
func (j *Journal) GetOperationsSince(id string) ([]Operation, error) {
	for i := range j.operations {
		if j.operations[i].ID == id {
			suffix := make([]Operation, len(j.operations)-i-1)
			copy(suffix, j.operations[i+1:])
			return suffix, nil
		}
	}
	return nil, ErrNotFound
}

// Clear discards the entire journal. Used only when starting a fresh
// session.
func (j *Journal) Clear() {
	j.operations = nil
	j.currentIndex = -1
}

// ToDocument converts the journal to its persisted form
func (j *Journal) ToDocument() *Document {
	ops := make([]Operation, len(j.operations))
	copy(ops, j.operations)
	return &Document{
		SessionID:    j.sessionID,
		Operations:   ops,
		CurrentIndex: j.currentIndex,
	}
}

// FromDocument rebuilds a journal from its persisted form
func FromDocument(doc *Document) *Journal {
	j := New(doc.SessionID)
	j.operations = append(j.operations, doc.Operations...)
	j.currentIndex = doc.CurrentIndex
	return j
}
