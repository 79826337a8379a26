// internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	tmpDir := t.TempDir()

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.RetentionDays != 7 {
		t.Errorf("Expected retention of 7 days, got %d", cfg.Settings.RetentionDays)
	}
	if cfg.Settings.MaxUndoStack != 50 {
		t.Errorf("Expected max undo stack of 50, got %d", cfg.Settings.MaxUndoStack)
	}

	for _, dir := range []string{cfg.CheckpointsDir, cfg.FileCheckpointsDir, cfg.JournalDir} {
		info, err := os.Stat(dir)
		if err != nil || !info.IsDir() {
			t.Errorf("Expected directory %s to exist", dir)
		}
	}
}

func TestLoad_SettingsFile(t *testing.T) {
	tmpDir := t.TempDir()

	settings := "retention_days: 14\nmax_undo_stack: 10\n"
	if err := os.WriteFile(filepath.Join(tmpDir, "settings.yaml"), []byte(settings), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.RetentionDays != 14 {
		t.Errorf("Expected retention of 14 days, got %d", cfg.Settings.RetentionDays)
	}
	if cfg.Settings.MaxUndoStack != 10 {
		t.Errorf("Expected max undo stack of 10, got %d", cfg.Settings.MaxUndoStack)
	}
}

func TestLoad_InvalidSettings(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "settings.yaml"), []byte("retention_days: [nope"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(tmpDir); err == nil {
		t.Error("Expected error for malformed settings.yaml")
	}
}

func TestLoad_ZeroValuesFallBack(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "settings.yaml"), []byte("retention_days: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Settings.RetentionDays != 7 {
		t.Errorf("Expected fallback to 7 days, got %d", cfg.Settings.RetentionDays)
	}
}
