package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/wire"
)

// StatsCmd returns the stats command
func StatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate feature statistics",
		Long:  `Show feature counts by status and the overall completion percentage.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := wire.SessionService().Stats(context.Background())
			if err != nil {
				return fmt.Errorf("failed to compute stats: %w", err)
			}

			if stats.Total == 0 {
				fmt.Println("No features yet.")
				fmt.Println()
				fmt.Println("Create your first feature:")
				fmt.Println("  specfirst feature new user-auth")
				return nil
			}

			fmt.Printf("\nFeatures: %d total\n\n", stats.Total)
			for _, status := range []string{"pending", "in_progress", "completed", "skipped"} {
				fmt.Printf("  %s %-12s %d\n", featureStatusGlyph(status), status, stats.ByStatus[status])
			}
			fmt.Println()

			percent := fmt.Sprintf("%.1f%%", stats.PercentComplete)
			switch {
			case stats.PercentComplete >= 100:
				percent = color.New(color.FgHiGreen).Sprint(percent)
			case stats.PercentComplete > 0:
				percent = color.New(color.FgYellow).Sprint(percent)
			}
			fmt.Printf("Complete: %s\n", percent)

			return nil
		},
	}
}

func featureStatusGlyph(status string) string {
	switch status {
	case "pending":
		return color.New(color.FgWhite).Sprint("○")
	case "in_progress":
		return color.New(color.FgHiCyan).Sprint("◐")
	case "completed":
		return color.New(color.FgHiGreen).Sprint("●")
	case "skipped":
		return color.New(color.FgHiBlack).Sprint("·")
	default:
		return "?"
	}
}
