// internal/journal/models.go
package journal

import "time"

// Kind identifies the type of a recorded operation
type Kind string

const (
	KindUserQuestion     Kind = "user_question"
	KindToolCall         Kind = "tool_call"
	KindFileModification Kind = "file_modification"
	KindFileCreation     Kind = "file_creation"
	KindFileDeletion     Kind = "file_deletion"
	KindSessionState     Kind = "session_state"
	KindCheckpoint       Kind = "checkpoint"
)

// UserQuestion is the payload of a user_question operation
type UserQuestion struct {
	Question     string `json:"question"`
	MessageIndex int    `json:"message_index"`
	CheckpointID string `json:"checkpoint_id,omitempty"`
}

// ToolCall is the payload of a tool_call operation
type ToolCall struct {
	ToolName  string                 `json:"tool_name"`
	Arguments map[string]interface{} `json:"arguments"`
	Result    *string                `json:"result"`
	Success   bool                   `json:"success"`
	Error     *string                `json:"error"`
}

// FileOperation is the payload of a file mutation operation.
// OldContent is nil for file creation; NewContent is nil for deletion.
type FileOperation struct {
	FilePath   string  `json:"file_path"`
	Verb       string  `json:"operation"` // "modify", "create", "delete"
	OldContent *string `json:"old_content"`
	NewContent *string `json:"new_content"`
}

// CheckpointRef is the payload of a checkpoint operation
type CheckpointRef struct {
	CheckpointID string `json:"checkpoint_id"`
	MessageIndex int    `json:"message_index"`
}

// Operation is a single immutable record in the journal. Exactly one of the
// payload pointers is non-nil, matching Kind. Operations are only built
// through the Journal's Add methods.
type Operation struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	Timestamp   time.Time `json:"timestamp"`
	Description string    `json:"description"`
	ParentID    string    `json:"parent_id,omitempty"`

	UserQuestion  *UserQuestion  `json:"user_question,omitempty"`
	ToolCall      *ToolCall      `json:"tool_call,omitempty"`
	FileOperation *FileOperation `json:"file_operation,omitempty"`
	Checkpoint    *CheckpointRef `json:"checkpoint,omitempty"`
}

// Document is the persisted form of a journal: one document per session.
// CurrentIndex mirrors the position of the most recently appended record and
// is informational only.
type Document struct {
	SessionID    string      `json:"session_id"`
	Operations   []Operation `json:"operations"`
	CurrentIndex int         `json:"current_index"`
}
