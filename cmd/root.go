// cmd/root.go
package cmd

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rewind/internal/checkpoint"
	"rewind/internal/config"
	"rewind/internal/journal"
	"rewind/internal/rollback"
)

const journalCompressionLevel = 3

type globalOptions struct {
	Dir string
}

// NewRootCmd builds the rewind command tree
func NewRootCmd() *cobra.Command {
	options := &globalOptions{}

	cmd := &cobra.Command{
		Use:           "rewind",
		Short:         "Inspect and rewind agent session state",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			setupLogging()
		},
	}

	cmd.PersistentFlags().StringVar(&options.Dir, "dir", "", "Workspace directory (default: ~/.rewind)")

	cmd.AddCommand(NewCheckpointsCmd(options))
	cmd.AddCommand(NewRollbackCmd(options))
	cmd.AddCommand(NewSummaryCmd(options))

	return cmd
}

// Execute runs the root command
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging configures the default slog logger from LOG_LEVEL
func setupLogging() {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// openWorkspace resolves the workspace directory into the stores every
// command needs
func openWorkspace(options *globalOptions) (*config.Config, *checkpoint.Store, *journal.Store, error) {
	cfg, err := config.Load(options.Dir)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load config: %w", err)
	}

	return cfg, checkpoint.NewStore(cfg.BaseDir), journal.NewStore(cfg.BaseDir, journalCompressionLevel), nil
}

// loadOrchestrator loads a session's journal and wires the orchestrator
func loadOrchestrator(options *globalOptions, sessionID string) (*rollback.Orchestrator, error) {
	cfg, store, journalStore, err := openWorkspace(options)
	if err != nil {
		return nil, err
	}

	j := journalStore.Load(sessionID)
	if j == nil {
		j = journal.New(sessionID)
	}

	return rollback.New(store, j, cfg.Settings.MaxUndoStack), nil
}

// printJSON writes a value as indented JSON to stdout
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
