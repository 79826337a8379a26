// internal/checkpoint/models.go
package checkpoint

import "time"

// Message is one entry in a conversation's message list. The store treats
// messages as opaque documents owned by the session layer.
type Message map[string]interface{}

// Checkpoint is a full snapshot of a session's message list at a point in
// time. It is never mutated after creation.
type Checkpoint struct {
	ID                string    `json:"id"`
	SessionID         string    `json:"session_id"`
	Description       string    `json:"description,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	MessageCount      int       `json:"message_count"`
	FileCheckpointIDs []string  `json:"file_checkpoint_ids,omitempty"`
}

// FileCheckpoint is a full snapshot of one file's content, independent of
// the operation journal's own pre-image capture.
type FileCheckpoint struct {
	ID          string    `json:"id"`
	FilePath    string    `json:"file_path"`
	Content     string    `json:"content"`
	CreatedAt   time.Time `json:"created_at"`
	Description string    `json:"description,omitempty"`
}
