// internal/checkpoint/store_test.go
package checkpoint

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func TestStore_CreateCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	messages := []Message{
		{"role": "user", "content": "hello"},
		{"role": "assistant", "content": "hi"},
	}

	cp, err := store.CreateCheckpoint("session-001", messages, "Test checkpoint")
	if err != nil {
		t.Fatalf("CreateCheckpoint failed: %v", err)
	}

	if cp.MessageCount != 2 {
		t.Errorf("Expected message count 2, got %d", cp.MessageCount)
	}
	if cp.SessionID != "session-001" {
		t.Errorf("Expected session 'session-001', got '%s'", cp.SessionID)
	}

	// Metadata and messages are separate artifacts
	if _, err := os.Stat(filepath.Join(tmpDir, "checkpoints", cp.ID, "meta.json")); err != nil {
		t.Errorf("Expected meta.json to exist: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "checkpoints", cp.ID, "messages.json")); err != nil {
		t.Errorf("Expected messages.json to exist: %v", err)
	}
}

func TestStore_RestoreCheckpoint(t *testing.T) {
	store := NewStore(t.TempDir())

	messages := []Message{{"role": "user", "content": "hello"}}
	cp, err := store.CreateCheckpoint("session-002", messages, "")
	if err != nil {
		t.Fatalf("CreateCheckpoint failed: %v", err)
	}

	t.Run("Idempotent", func(t *testing.T) {
		first := store.RestoreCheckpoint(cp.ID)
		second := store.RestoreCheckpoint(cp.ID)

		if first == nil || second == nil {
			t.Fatal("Expected messages from both restores")
		}
		if !reflect.DeepEqual(first, second) {
			t.Error("Expected identical message lists from repeated restores")
		}
		if first[0]["content"] != "hello" {
			t.Errorf("Expected content 'hello', got '%v'", first[0]["content"])
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		if store.RestoreCheckpoint("missing") != nil {
			t.Error("Expected nil for unknown checkpoint")
		}
	})
}

func TestStore_RestoreCorruptCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	checkpointDir := filepath.Join(tmpDir, "checkpoints", "cp-bad")
	os.MkdirAll(checkpointDir, 0755)
	os.WriteFile(filepath.Join(checkpointDir, "messages.json"), []byte("{not json"), 0644)

	if store.RestoreCheckpoint("cp-bad") != nil {
		t.Error("Expected nil for corrupt checkpoint")
	}
}

func TestStore_ListCheckpoints(t *testing.T) {
	store := NewStore(t.TempDir())

	store.CreateCheckpoint("session-a", nil, "first")
	store.CreateCheckpoint("session-a", nil, "second")
	store.CreateCheckpoint("session-b", nil, "other")

	t.Run("All", func(t *testing.T) {
		checkpoints, err := store.ListCheckpoints("")
		if err != nil {
			t.Fatalf("ListCheckpoints failed: %v", err)
		}
		if len(checkpoints) != 3 {
			t.Errorf("Expected 3 checkpoints, got %d", len(checkpoints))
		}
	})

	t.Run("FilteredBySession", func(t *testing.T) {
		checkpoints, err := store.ListCheckpoints("session-a")
		if err != nil {
			t.Fatalf("ListCheckpoints failed: %v", err)
		}
		if len(checkpoints) != 2 {
			t.Errorf("Expected 2 checkpoints, got %d", len(checkpoints))
		}
	})

	t.Run("NewestFirst", func(t *testing.T) {
		checkpoints, err := store.ListCheckpoints("")
		if err != nil {
			t.Fatalf("ListCheckpoints failed: %v", err)
		}
		for i := 1; i < len(checkpoints); i++ {
			if checkpoints[i].CreatedAt.After(checkpoints[i-1].CreatedAt) {
				t.Error("Expected newest-first ordering")
			}
		}
	})
}

func TestStore_DeleteCheckpoint(t *testing.T) {
	store := NewStore(t.TempDir())

	cp, err := store.CreateCheckpoint("session-del", nil, "")
	if err != nil {
		t.Fatalf("CreateCheckpoint failed: %v", err)
	}

	if !store.DeleteCheckpoint(cp.ID) {
		t.Error("Expected delete of existing checkpoint to return true")
	}
	if store.DeleteCheckpoint(cp.ID) {
		t.Error("Expected delete of missing checkpoint to return false")
	}
	if store.RestoreCheckpoint(cp.ID) != nil {
		t.Error("Expected nil restoring a deleted checkpoint")
	}
}

func TestStore_FileCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	fc, err := store.CreateFileCheckpoint("/tmp/chapter_one.md", "Once upon a time", "")
	if err != nil {
		t.Fatalf("CreateFileCheckpoint failed: %v", err)
	}

	if !strings.HasPrefix(fc.ID, "chapter_one_") {
		t.Errorf("Expected id to embed the base name, got '%s'", fc.ID)
	}

	parts := strings.Split(fc.ID, "_")
	if len(parts) < 3 {
		t.Fatalf("Expected name, digest and random suffix in id, got '%s'", fc.ID)
	}

	loaded := store.GetFileCheckpoint(fc.ID)
	if loaded == nil || loaded.Content != "Once upon a time" {
		t.Error("Expected content to round trip")
	}
}

func TestStore_FileCheckpointNoDedup(t *testing.T) {
	store := NewStore(t.TempDir())

	first, err := store.CreateFileCheckpoint("/tmp/a.txt", "same content", "")
	if err != nil {
		t.Fatalf("CreateFileCheckpoint failed: %v", err)
	}
	second, err := store.CreateFileCheckpoint("/tmp/a.txt", "same content", "")
	if err != nil {
		t.Fatalf("CreateFileCheckpoint failed: %v", err)
	}

	// Identical content is stored redundantly under distinct ids
	if first.ID == second.ID {
		t.Error("Expected distinct ids for identical content")
	}

	checkpoints, err := store.ListFileCheckpoints("/tmp/a.txt")
	if err != nil {
		t.Fatalf("ListFileCheckpoints failed: %v", err)
	}
	if len(checkpoints) != 2 {
		t.Errorf("Expected 2 stored records, got %d", len(checkpoints))
	}
}

func TestStore_RestoreFileCheckpoint(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	recorded := filepath.Join(tmpDir, "work", "notes.txt")
	fc, err := store.CreateFileCheckpoint(recorded, "draft one", "")
	if err != nil {
		t.Fatalf("CreateFileCheckpoint failed: %v", err)
	}

	t.Run("RecordedPath", func(t *testing.T) {
		content, err := store.RestoreFileCheckpoint(fc.ID, "")
		if err != nil {
			t.Fatalf("RestoreFileCheckpoint failed: %v", err)
		}
		if content != "draft one" {
			t.Errorf("Expected 'draft one', got '%s'", content)
		}

		onDisk, err := os.ReadFile(recorded)
		if err != nil {
			t.Fatalf("Failed to read restored file: %v", err)
		}
		if string(onDisk) != "draft one" {
			t.Errorf("Expected 'draft one' on disk, got '%s'", string(onDisk))
		}
	})

	t.Run("TargetPath", func(t *testing.T) {
		target := filepath.Join(tmpDir, "elsewhere", "deep", "copy.txt")
		if _, err := store.RestoreFileCheckpoint(fc.ID, target); err != nil {
			t.Fatalf("RestoreFileCheckpoint failed: %v", err)
		}

		onDisk, err := os.ReadFile(target)
		if err != nil {
			t.Fatalf("Expected parent directories to be created: %v", err)
		}
		if string(onDisk) != "draft one" {
			t.Errorf("Expected 'draft one' at target, got '%s'", string(onDisk))
		}
	})

	t.Run("UnknownID", func(t *testing.T) {
		if _, err := store.RestoreFileCheckpoint("missing", ""); err == nil {
			t.Error("Expected error for unknown file checkpoint")
		}
	})
}

func TestStore_DeleteFileCheckpoint(t *testing.T) {
	store := NewStore(t.TempDir())

	fc, err := store.CreateFileCheckpoint("/tmp/a.txt", "content", "")
	if err != nil {
		t.Fatalf("CreateFileCheckpoint failed: %v", err)
	}

	if !store.DeleteFileCheckpoint(fc.ID) {
		t.Error("Expected delete of existing record to return true")
	}
	if store.DeleteFileCheckpoint(fc.ID) {
		t.Error("Expected delete of missing record to return false")
	}
}

// backdate rewrites a checkpoint's metadata with an older creation time
func backdate(t *testing.T, baseDir, id string, createdAt time.Time) {
	t.Helper()

	metaPath := filepath.Join(baseDir, "checkpoints", id, "meta.json")
	metaJSON, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("Failed to read metadata: %v", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(metaJSON, &cp); err != nil {
		t.Fatalf("Failed to unmarshal metadata: %v", err)
	}

	cp.CreatedAt = createdAt
	updated, _ := json.MarshalIndent(cp, "", "  ")
	if err := os.WriteFile(metaPath, updated, 0644); err != nil {
		t.Fatalf("Failed to rewrite metadata: %v", err)
	}
}

// backdateFile rewrites a file checkpoint's record with an older creation
// time
func backdateFile(t *testing.T, baseDir, id string, createdAt time.Time) {
	t.Helper()

	recordPath := filepath.Join(baseDir, "file_checkpoints", id+".json")
	recordJSON, err := os.ReadFile(recordPath)
	if err != nil {
		t.Fatalf("Failed to read record: %v", err)
	}

	var fc FileCheckpoint
	if err := json.Unmarshal(recordJSON, &fc); err != nil {
		t.Fatalf("Failed to unmarshal record: %v", err)
	}

	fc.CreatedAt = createdAt
	updated, _ := json.MarshalIndent(fc, "", "  ")
	if err := os.WriteFile(recordPath, updated, 0644); err != nil {
		t.Fatalf("Failed to rewrite record: %v", err)
	}
}

func TestStore_CleanupOldCheckpoints(t *testing.T) {
	tmpDir := t.TempDir()
	store := NewStore(tmpDir)

	old1, _ := store.CreateCheckpoint("session-a", nil, "old")
	old2, _ := store.CreateCheckpoint("session-a", nil, "older")
	fresh, _ := store.CreateCheckpoint("session-a", nil, "fresh")
	oldFile, _ := store.CreateFileCheckpoint("/tmp/a.txt", "stale", "")
	freshFile, _ := store.CreateFileCheckpoint("/tmp/b.txt", "recent", "")

	backdate(t, tmpDir, old1.ID, time.Now().AddDate(0, 0, -10))
	backdate(t, tmpDir, old2.ID, time.Now().AddDate(0, 0, -8))
	backdateFile(t, tmpDir, oldFile.ID, time.Now().AddDate(0, 0, -30))

	removed := store.CleanupOldCheckpoints(7)
	if removed != 3 {
		t.Errorf("Expected 3 removed, got %d", removed)
	}

	if store.RestoreCheckpoint(fresh.ID) == nil {
		t.Error("Expected checkpoint newer than the cutoff to survive")
	}
	if store.GetFileCheckpoint(freshFile.ID) == nil {
		t.Error("Expected file checkpoint newer than the cutoff to survive")
	}
	if store.GetCheckpoint(old1.ID) != nil {
		t.Error("Expected old checkpoint to be removed")
	}
	if store.GetFileCheckpoint(oldFile.ID) != nil {
		t.Error("Expected old file checkpoint to be removed")
	}
}
