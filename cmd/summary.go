// cmd/summary.go
package cmd

import (
	"github.com/spf13/cobra"
)

// NewSummaryCmd builds the operation summary command
func NewSummaryCmd(options *globalOptions) *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show operation statistics for a session journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, err := loadOrchestrator(options, sessionID)
			if err != nil {
				return err
			}
			return printJSON(orchestrator.GetOperationSummary())
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "default", "Session id")
	return cmd
}
