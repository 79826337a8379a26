// cmd/checkpoints.go
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
)

// NewCheckpointsCmd builds the checkpoint inspection and maintenance
// commands
func NewCheckpointsCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "checkpoints",
		Short: "Inspect and maintain stored checkpoints",
	}

	cmd.AddCommand(newCheckpointsListCmd(options))
	cmd.AddCommand(newCheckpointsFilesCmd(options))
	cmd.AddCommand(newCheckpointsCleanupCmd(options))
	cmd.AddCommand(newCheckpointsDeleteCmd(options))

	return cmd
}

func newCheckpointsListCmd(options *globalOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List conversation checkpoints, newest first",
		Aliases: []string{"ls"},
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, _, err := openWorkspace(options)
			if err != nil {
				return err
			}

			checkpoints, err := store.ListCheckpoints(sessionID)
			if err != nil {
				return fmt.Errorf("list checkpoints: %w", err)
			}

			return printJSON(checkpoints)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Filter by session id")
	return cmd
}

func newCheckpointsFilesCmd(options *globalOptions) *cobra.Command {
	var filePath string

	cmd := &cobra.Command{
		Use:   "files",
		Short: "List file checkpoints, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, _, err := openWorkspace(options)
			if err != nil {
				return err
			}

			checkpoints, err := store.ListFileCheckpoints(filePath)
			if err != nil {
				return fmt.Errorf("list file checkpoints: %w", err)
			}

			return printJSON(checkpoints)
		},
	}

	cmd.Flags().StringVar(&filePath, "path", "", "Filter by exact file path")
	return cmd
}

func newCheckpointsCleanupCmd(options *globalOptions) *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Remove checkpoints older than the retention window",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, store, _, err := openWorkspace(options)
			if err != nil {
				return err
			}

			if days <= 0 {
				days = cfg.Settings.RetentionDays
			}

			removed := store.CleanupOldCheckpoints(days)
			slog.Info("cleanup complete", "days", days, "removed", removed)
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d checkpoint(s) older than %d day(s)\n", removed, days)
			return nil
		},
	}

	cmd.Flags().IntVar(&days, "days", 0, "Retention window in days (default: settings.yaml retention_days)")
	return cmd
}

func newCheckpointsDeleteCmd(options *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <checkpoint-id>",
		Short: "Delete a conversation checkpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, store, _, err := openWorkspace(options)
			if err != nil {
				return err
			}

			if store.DeleteCheckpoint(args[0]) {
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted checkpoint %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Checkpoint %s not found\n", args[0])
			}
			return nil
		},
	}

	return cmd
}
