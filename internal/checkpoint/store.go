// internal/checkpoint/store.go
package checkpoint

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store manages durable snapshot storage for both granularities: whole
// conversation checkpoints and single-file checkpoints. It has no knowledge
// of the operation journal.
//
// On-disk layout under the base directory:
//
//	checkpoints/<id>/meta.json      checkpoint metadata
//	checkpoints/<id>/messages.json  the snapshot's message list
//	file_checkpoints/<id>.json      one file-checkpoint record
type Store struct {
	baseDir string
	mu      sync.RWMutex
}

// NewStore creates a checkpoint store rooted at baseDir
func NewStore(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

// checkpointsDir returns the path for conversation checkpoints
func (s *Store) checkpointsDir() string {
	return filepath.Join(s.baseDir, "checkpoints")
}

// fileCheckpointsDir returns the path for file checkpoints
func (s *Store) fileCheckpointsDir() string {
	return filepath.Join(s.baseDir, "file_checkpoints")
}

// GenerateID generates a short checkpoint id
func GenerateID() string {
	return uuid.New().String()[:8]
}

// CalculateHash calculates the SHA256 hash of content
func CalculateHash(content string) string {
	h := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", h)
}

// fileCheckpointID builds an id from the file's base name, a short content
// digest and a random suffix. Collisions are avoided probabilistically; the
// digest is not used for content addressing and identical content is stored
// redundantly.
func fileCheckpointID(filePath, content string) string {
	base := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		}
		return '_'
	}, base)

	return fmt.Sprintf("%s_%s_%s", sanitized, CalculateHash(content)[:8], uuid.New().String()[:6])
}

// CreateCheckpoint persists a full snapshot of a session's message list.
// Metadata and messages are written as separate artifacts so metadata can be
// listed cheaply without loading message bodies.
func (s *Store) CreateCheckpoint(sessionID string, messages []Message, description string) (*Checkpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if description == "" {
		description = fmt.Sprintf("Checkpoint at %s", now.Format("15:04:05"))
	}

	cp := &Checkpoint{
		ID:           GenerateID(),
		SessionID:    sessionID,
		Description:  description,
		CreatedAt:    now,
		MessageCount: len(messages),
	}

	checkpointDir := filepath.Join(s.checkpointsDir(), cp.ID)
	if err := os.MkdirAll(checkpointDir, 0755); err != nil {
		return nil, fmt.Errorf("create checkpoint dir: %w", err)
	}

	metaJSON, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(checkpointDir, "meta.json"), metaJSON, 0644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	if messages == nil {
		messages = []Message{}
	}
	messagesJSON, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal messages: %w", err)
	}
	if err := os.WriteFile(filepath.Join(checkpointDir, "messages.json"), messagesJSON, 0644); err != nil {
		return nil, fmt.Errorf("write messages: %w", err)
	}

	return cp, nil
}

// RestoreCheckpoint returns the message list captured by a checkpoint. It is
// a pure read and never mutates the store. An unknown id or an unreadable
// artifact yields nil, never an error.
func (s *Store) RestoreCheckpoint(id string) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	messagesJSON, err := os.ReadFile(filepath.Join(s.checkpointsDir(), id, "messages.json"))
	if err != nil {
		return nil
	}

	var messages []Message
	if err := json.Unmarshal(messagesJSON, &messages); err != nil {
		return nil
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages
}

// GetCheckpoint loads a checkpoint's metadata without its message body
func (s *Store) GetCheckpoint(id string) *Checkpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	metaJSON, err := os.ReadFile(filepath.Join(s.checkpointsDir(), id, "meta.json"))
	if err != nil {
		return nil
	}

	var cp Checkpoint
	if err := json.Unmarshal(metaJSON, &cp); err != nil {
		return nil
	}
	return &cp
}

// ListCheckpoints lists checkpoints newest-first, optionally filtered by an
// exact session id. Unreadable entries are skipped.
func (s *Store) ListCheckpoints(sessionID string) ([]Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.checkpointsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var checkpoints []Checkpoint
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		metaJSON, err := os.ReadFile(filepath.Join(s.checkpointsDir(), entry.Name(), "meta.json"))
		if err != nil {
			continue
		}

		var cp Checkpoint
		if err := json.Unmarshal(metaJSON, &cp); err != nil {
			continue
		}
		if sessionID != "" && cp.SessionID != sessionID {
			continue
		}
		checkpoints = append(checkpoints, cp)
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})

	return checkpoints, nil
}

// DeleteCheckpoint removes a checkpoint. Deleting an unknown id is a no-op
// and returns false.
func (s *Store) DeleteCheckpoint(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	checkpointDir := filepath.Join(s.checkpointsDir(), id)
	if _, err := os.Stat(checkpointDir); os.IsNotExist(err) {
		return false
	}
	return os.RemoveAll(checkpointDir) == nil
}

// CreateFileCheckpoint persists a full snapshot of one file's content
func (s *Store) CreateFileCheckpoint(filePath, content, description string) (*FileCheckpoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if description == "" {
		description = fmt.Sprintf("Snapshot of %s", filePath)
	}

	fc := &FileCheckpoint{
		ID:          fileCheckpointID(filePath, content),
		FilePath:    filePath,
		Content:     content,
		CreatedAt:   now,
		Description: description,
	}

	if err := os.MkdirAll(s.fileCheckpointsDir(), 0755); err != nil {
		return nil, fmt.Errorf("create file checkpoints dir: %w", err)
	}

	recordJSON, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal file checkpoint: %w", err)
	}
	if err := os.WriteFile(filepath.Join(s.fileCheckpointsDir(), fc.ID+".json"), recordJSON, 0644); err != nil {
		return nil, fmt.Errorf("write file checkpoint: %w", err)
	}

	return fc, nil
}

// GetFileCheckpoint loads a file checkpoint record, or nil if unknown or
// unreadable
func (s *Store) GetFileCheckpoint(id string) *FileCheckpoint {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.readFileCheckpoint(id)
}

func (s *Store) readFileCheckpoint(id string) *FileCheckpoint {
	recordJSON, err := os.ReadFile(filepath.Join(s.fileCheckpointsDir(), id+".json"))
	if err != nil {
		return nil
	}

	var fc FileCheckpoint
	if err := json.Unmarshal(recordJSON, &fc); err != nil {
		return nil
	}
	return &fc
}

// RestoreFileCheckpoint writes a file checkpoint's content back to disk, to
// targetPath if given, else to the checkpoint's own recorded path. Parent
// directories are created as needed. Returns the restored content.
func (s *Store) RestoreFileCheckpoint(id, targetPath string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	fc := s.readFileCheckpoint(id)
	if fc == nil {
		return "", fmt.Errorf("file checkpoint %s not found", id)
	}

	path := targetPath
	if path == "" {
		path = fc.FilePath
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("create parent dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(fc.Content), 0644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}

	return fc.Content, nil
}

// ListFileCheckpoints lists file checkpoints newest-first, optionally
// filtered by an exact file path. Unreadable entries are skipped.
func (s *Store) ListFileCheckpoints(filePath string) ([]FileCheckpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.fileCheckpointsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var checkpoints []FileCheckpoint
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		fc := s.readFileCheckpoint(strings.TrimSuffix(entry.Name(), ".json"))
		if fc == nil {
			continue
		}
		if filePath != "" && fc.FilePath != filePath {
			continue
		}
		checkpoints = append(checkpoints, *fc)
	}

	sort.Slice(checkpoints, func(i, j int) bool {
		return checkpoints[i].CreatedAt.After(checkpoints[j].CreatedAt)
	})

	return checkpoints, nil
}

// DeleteFileCheckpoint removes a file checkpoint. Deleting an unknown id is
// a no-op and returns false.
func (s *Store) DeleteFileCheckpoint(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.fileCheckpointsDir(), id+".json")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return os.Remove(path) == nil
}

// CleanupOldCheckpoints removes checkpoints of both kinds whose CreatedAt
// precedes now minus the given number of days, and returns the count
// removed. Runs on demand only; the store owns no background scheduler.
func (s *Store) CleanupOldCheckpoints(days int) int {
	cutoff := time.Now().AddDate(0, 0, -days)
	removed := 0

	checkpoints, _ := s.ListCheckpoints("")
	for _, cp := range checkpoints {
		if cp.CreatedAt.Before(cutoff) {
			if s.DeleteCheckpoint(cp.ID) {
				removed++
			}
		}
	}

	fileCheckpoints, _ := s.ListFileCheckpoints("")
	for _, fc := range fileCheckpoints {
		if fc.CreatedAt.Before(cutoff) {
			if s.DeleteFileCheckpoint(fc.ID) {
				removed++
			}
		}
	}

	return removed
}
