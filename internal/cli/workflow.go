package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/ports/primary"
	"github.com/example/specfirst/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	var execCommand string

	cmd := &cobra.Command{
		Use:   "run [phase] [feature]",
		Short: "Run one workflow phase for a feature",
		Long: `Run one phase of the workflow: propose, specify, plan, implement, release.

Every gate for the phase must pass before anything executes. On success
the phase artifact is finalized and a ledger record is committed, which
is what later phases and resumption read.

With --exec the given shell command runs instead of the built-in
executor. It is then responsible for producing the artifact and the
ledger record; SPECFIRST_PHASE and SPECFIRST_FEATURE are set in its
environment.

Examples:
  specfirst run propose user-auth
  specfirst run implement user-auth --exec "./scripts/implement.sh"`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			phaseName, feature := args[0], args[1]

			if err := wire.WorkflowAdapter().Run(ctx, phaseName, feature, executorFromFlag(execCommand)); err != nil {
				return err
			}

			// Store columns mirror the ledger for listing and stats; a
			// miss here never blocks a recorded phase.
			_ = wire.FeatureService().RecordPhase(ctx, feature, phaseName)
			return nil
		},
	}

	cmd.Flags().StringVar(&execCommand, "exec", "", "Shell command to execute the phase (replaces the built-in executor)")

	return cmd
}

// CheckCmd returns the check command
func CheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check [phase] [feature]",
		Short: "Check a phase's gates without running it",
		Long: `Evaluate every gate for a phase and report each outcome.

Nothing is executed or written. Exits nonzero when any gate fails, so
the command doubles as a scripted preflight check.

Examples:
  specfirst check release user-auth`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkflowAdapter().Check(context.Background(), args[0], args[1])
		},
	}
}

// VerifyCmd returns the verify command
func VerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify [phase] [feature]",
		Short: "Verify a phase completed",
		Long: `Verify that a phase completed: a ledger record must exist and the
phase artifact's front matter must agree.

Examples:
  specfirst verify specify user-auth`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return wire.WorkflowAdapter().Verify(context.Background(), args[0], args[1])
		},
	}
}

// executorFromFlag builds a PhaseFunc that shells out to the given
// command. An empty command selects the built-in executor.
func executorFromFlag(command string) primary.PhaseFunc {
	if command == "" {
		return nil
	}
	return func(ctx context.Context, phaseName, feature string) error {
		shell := exec.CommandContext(ctx, "sh", "-c", command)
		shell.Env = append(os.Environ(),
			fmt.Sprintf("SPECFIRST_PHASE=%s", phaseName),
			fmt.Sprintf("SPECFIRST_FEATURE=%s", feature),
		)
		shell.Stdout = os.Stdout
		shell.Stderr = os.Stderr
		return shell.Run()
	}
}
