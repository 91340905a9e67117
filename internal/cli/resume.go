package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/wire"
)

// ResumeCmd returns the resume command
func ResumeCmd() *cobra.Command {
	var execCommand string

	cmd := &cobra.Command{
		Use:   "resume [feature]",
		Short: "Resume a feature's workflow from the ledger",
		Long: `Detect the next unrecorded phase from the ledger and run it.

Resumption is stateless: the next phase is derived entirely from ledger
records, so it works identically after a crash, on a fresh clone, or
mid-flight. When every phase is recorded there is nothing to do.

Examples:
  specfirst resume user-auth
  specfirst resume user-auth --exec "./scripts/phase.sh"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkflowAdapter().Resume(context.Background(), args[0], executorFromFlag(execCommand))
		},
	}

	cmd.Flags().StringVar(&execCommand, "exec", "", "Shell command to execute the phase (replaces the built-in executor)")

	return cmd
}

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [feature]",
		Short: "Show a feature's workflow status",
		Long: `Show each phase with its ledger state and the detected next phase.

Derived from ledger records at call time; there is no cached workflow
state to go stale.

Examples:
  specfirst status user-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkflowAdapter().Status(context.Background(), args[0])
		},
	}
}

// HistoryCmd returns the history command
func HistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history [feature]",
		Short: "Show a feature's ledger records",
		Long: `List the feature's phase records in chronological order, with the
artifact path and commit ref of each.

Examples:
  specfirst history user-auth`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkflowAdapter().History(context.Background(), args[0])
		},
	}
}
