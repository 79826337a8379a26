// internal/journal/store.go
package journal

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// Store persists journals as one zstd-compressed JSON document per session
type Store struct {
	baseDir string
	mu      sync.RWMutex
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// NewStore creates a journal store rooted at baseDir
func NewStore(baseDir string, compressionLevel int) *Store {
	encoder, _ := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	decoder, _ := zstd.NewReader(nil)

	return &Store{
		baseDir: baseDir,
		encoder: encoder,
		decoder: decoder,
	}
}

// journalDir returns the path for journal documents
func (s *Store) journalDir() string {
	return filepath.Join(s.baseDir, "journal")
}

// documentPath returns the path of a session's journal document
func (s *Store) documentPath(sessionID string) string {
	return filepath.Join(s.journalDir(), sessionID+".json.zst")
}

// Save writes the journal's document for its session, replacing any
// previous document.
func (s *Store) Save(j *Journal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.journalDir(), 0755); err != nil {
		return fmt.Errorf("create journal dir: %w", err)
	}

	docJSON, err := json.MarshalIndent(j.ToDocument(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}

	compressed := s.encoder.EncodeAll(docJSON, nil)
	if err := os.WriteFile(s.documentPath(j.SessionID()), compressed, 0644); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}

	return nil
}

// Load reads a session's journal document. A missing or unreadable document
// is treated as absent and returns nil rather than an error.
func (s *Store) Load(sessionID string) *Journal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	compressed, err := os.ReadFile(s.documentPath(sessionID))
	if err != nil {
		return nil
	}

	docJSON, err := s.decoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil
	}

	var doc Document
	if err := json.Unmarshal(docJSON, &doc); err != nil {
		return nil
	}

	return FromDocument(&doc)
}

// Delete removes a session's journal document. Deleting a document that
// does not exist is a no-op and returns false.
func (s *Store) Delete(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.documentPath(sessionID)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return false
	}
	return os.Remove(path) == nil
}
