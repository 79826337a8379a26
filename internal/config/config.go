// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Settings holds tunable values read from settings.yaml in the base
// directory. A missing file yields the defaults.
type Settings struct {
	RetentionDays int `yaml:"retention_days"`
	MaxUndoStack  int `yaml:"max_undo_stack"`
}

// Config holds all resolved workspace paths
type Config struct {
	BaseDir            string
	CheckpointsDir     string
	FileCheckpointsDir string
	JournalDir         string
	Settings           Settings
}

// DefaultSettings returns the default tunables
func DefaultSettings() Settings {
	return Settings{
		RetentionDays: 7,
		MaxUndoStack:  50,
	}
}

// Load creates a Config rooted at baseDir, creating the directory tree as
// needed. An empty baseDir resolves to ~/.rewind.
func Load(baseDir string) (*Config, error) {
	if baseDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		baseDir = filepath.Join(home, ".rewind")
	}

	cfg := &Config{
		BaseDir:            baseDir,
		CheckpointsDir:     filepath.Join(baseDir, "checkpoints"),
		FileCheckpointsDir: filepath.Join(baseDir, "file_checkpoints"),
		JournalDir:         filepath.Join(baseDir, "journal"),
		Settings:           DefaultSettings(),
	}

	// Ensure directories exist
	for _, dir := range []string{cfg.BaseDir, cfg.CheckpointsDir, cfg.FileCheckpointsDir, cfg.JournalDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadSettings(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadSettings reads settings.yaml if present
func (c *Config) loadSettings() error {
	data, err := os.ReadFile(filepath.Join(c.BaseDir, "settings.yaml"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	settings := DefaultSettings()
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("parse settings.yaml: %w", err)
	}

	if settings.RetentionDays <= 0 {
		settings.RetentionDays = DefaultSettings().RetentionDays
	}
	if settings.MaxUndoStack <= 0 {
		settings.MaxUndoStack = DefaultSettings().MaxUndoStack
	}

	c.Settings = settings
	return nil
}
