// cmd/rollback.go
package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"rewind/internal/rollback"
)

// NewRollbackCmd builds the rollback commands operating on a persisted
// session journal
func NewRollbackCmd(options *globalOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "rollback",
		Short: "Rewind session state to a recorded point",
	}

	cmd.PersistentFlags().StringVar(&sessionID, "session", "default", "Session id")

	cmd.AddCommand(&cobra.Command{
		Use:   "question",
		Short: "Rollback to before the last user question",
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := loadOrchestrator(options, sessionID)
			if err != nil {
				return err
			}
			return reportResult(orchestrator.RollbackToPreviousQuestion(sessionID))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "tool",
		Short: "Rollback to before the last tool call",
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := loadOrchestrator(options, sessionID)
			if err != nil {
				return err
			}
			return reportResult(orchestrator.RollbackToPreviousToolCall(sessionID))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "checkpoint <checkpoint-id>",
		Short: "Rollback to a specific checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := loadOrchestrator(options, sessionID)
			if err != nil {
				return err
			}
			return reportResult(orchestrator.RollbackToCheckpoint(args[0]))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "points",
		Short: "List available rollback points",
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := loadOrchestrator(options, sessionID)
			if err != nil {
				return err
			}
			return printJSON(orchestrator.GetAvailableRollbackPoints())
		},
	})

	return cmd
}

// reportResult logs and prints a rollback outcome
func reportResult(result *rollback.RollbackResult) error {
	if result.Success {
		slog.Info("rollback complete", "restored_files", len(result.RestoredFiles), "errors", len(result.Errors))
	} else {
		slog.Warn("rollback failed", "reason", result.Reason, "message", result.Message)
	}
	return printJSON(result)
}
