package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/wire"
)

var featureCmd = &cobra.Command{
	Use:   "feature",
	Short: "Manage features (units of spec-driven work)",
	Long:  "Create, list, and manage features in the SpecFirst store",
}

var featureNewCmd = &cobra.Command{
	Use:   "new [name]",
	Short: "Create a new feature",
	Long: `Register a feature and scaffold its directory under specs/, including
the ISC tracker. Names are kebab-case; the FEAT-XXX ID is assigned.

Examples:
  specfirst feature new user-auth
  specfirst feature new billing --priority 1 --effort large`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		priority, _ := cmd.Flags().GetInt("priority")
		effort, _ := cmd.Flags().GetString("effort")

		return wire.FeatureAdapter().Create(context.Background(), args[0], priority, effort)
	},
}

var featureListCmd = &cobra.Command{
	Use:   "list",
	Short: "List features",
	RunE: func(cmd *cobra.Command, args []string) error {
		status, _ := cmd.Flags().GetString("status")
		limit, _ := cmd.Flags().GetInt("limit")

		return wire.FeatureAdapter().List(context.Background(), status, limit)
	},
}

var featureShowCmd = &cobra.Command{
	Use:   "show [id-or-name]",
	Short: "Show feature details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.FeatureAdapter().Show(context.Background(), args[0])
	},
}

var featureStatusCmd = &cobra.Command{
	Use:   "status [id-or-name] [status]",
	Short: "Set a feature's status",
	Long: `Transition a feature to pending, in_progress, completed, or skipped.
Start and completion timestamps are stamped by the transition.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.FeatureAdapter().UpdateStatus(context.Background(), args[0], args[1])
	},
}

var featurePhaseCmd = &cobra.Command{
	Use:   "phase [id-or-name] [phase]",
	Short: "Record a completed phase on the feature row",
	Long: `Record that a phase completed for the feature: sets the phase column
and the produced artifact's path. The ledger stays the authority for
workflow state; these columns exist for listing and stats.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.FeatureAdapter().RecordPhase(context.Background(), args[0], args[1])
	},
}

// FeatureCmd returns the feature command
func FeatureCmd() *cobra.Command {
	// Add flags
	featureNewCmd.Flags().IntP("priority", "p", 0, "Feature priority (lower sorts first)")
	featureNewCmd.Flags().StringP("effort", "e", "", "Effort level (small, medium, large)")
	featureListCmd.Flags().StringP("status", "s", "", "Filter by status (pending, in_progress, completed, skipped)")
	featureListCmd.Flags().IntP("limit", "n", 0, "Maximum features to show")

	// Add subcommands
	featureCmd.AddCommand(featureNewCmd)
	featureCmd.AddCommand(featureListCmd)
	featureCmd.AddCommand(featureShowCmd)
	featureCmd.AddCommand(featureStatusCmd)
	featureCmd.AddCommand(featurePhaseCmd)

	return featureCmd
}
