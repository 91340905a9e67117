package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/cli"
	"github.com/example/specfirst/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "specfirst",
		Short:   "SpecFirst - spec-driven development workflow",
		Version: version.String(),
		Long: `SpecFirst drives features through a fixed pipeline of phases:
propose, specify, plan, implement, release. Each phase writes an
artifact under specs/ and a ledger record to git; gates between phases
veto work whose inputs are missing. State lives in the artifacts and
the ledger, so any session can resume a feature exactly where the
previous one stopped.`,
	}

	// Add subcommands
	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.DoctorCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.CheckCmd())
	rootCmd.AddCommand(cli.VerifyCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.ResumeCmd())
	rootCmd.AddCommand(cli.HistoryCmd())

	// Entity commands
	rootCmd.AddCommand(cli.FeatureCmd())
	rootCmd.AddCommand(cli.SessionCmd())
	rootCmd.AddCommand(cli.CriteriaCmd())
	rootCmd.AddCommand(cli.StatsCmd())
	rootCmd.AddCommand(cli.AuditCmd())

	// Developer tools
	rootCmd.AddCommand(cli.DevCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
