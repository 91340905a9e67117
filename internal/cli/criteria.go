package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/wire"
)

var criteriaCmd = &cobra.Command{
	Use:   "criteria",
	Short: "Work with ideal state criteria (ISC)",
	Long:  "Validate, import, and update a feature's ideal state criteria tracker",
}

var criteriaCheckCmd = &cobra.Command{
	Use:   "check [feature]",
	Short: "Validate a feature's ISC document",
	Long: `Parse the feature's isc.md and report structural violations and
quality findings.

Structure is what the release gate enforces: required sections, column
counts, status symbols, and criterion word counts. Quality findings are
advisory unless --strict is set.

Examples:
  specfirst criteria check user-auth
  specfirst criteria check user-auth --strict`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		strict, _ := cmd.Flags().GetBool("strict")

		report, err := wire.CriterionService().CheckDocument(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("\nISC document: %s\n\n", report.Path)

		if len(report.Violations) == 0 {
			fmt.Printf("%s Structure valid\n", color.New(color.FgHiGreen).Sprint("✓"))
		} else {
			fmt.Printf("%s %d structural violations:\n", color.New(color.FgRed).Sprint("✗"), len(report.Violations))
			for _, v := range report.Violations {
				fmt.Printf("  - %s\n", v)
			}
		}

		if report.Quality.Passed() {
			fmt.Printf("%s Quality checks pass\n", color.New(color.FgHiGreen).Sprint("✓"))
		} else {
			fmt.Printf("%s Quality findings:\n", color.New(color.FgYellow).Sprint("⚠"))
			for _, f := range report.Quality.Failures() {
				fmt.Printf("  - %s: %s\n", f.Check, f.Detail)
			}
		}

		if len(report.Criteria) > 0 {
			fmt.Printf("\nCriteria (%d):\n", len(report.Criteria))
			for _, c := range report.Criteria {
				fmt.Printf("  %s %-4s %s\n", criterionStatusGlyph(c.Status), c.CID, c.Text)
			}
		}
		fmt.Println()

		if len(report.Violations) > 0 {
			return fmt.Errorf("ISC document for %s has structural violations", report.Feature)
		}
		if strict && !report.Quality.Passed() {
			return fmt.Errorf("ISC document for %s has quality findings", report.Feature)
		}
		return nil
	},
}

var criteriaImportCmd = &cobra.Command{
	Use:   "import [feature]",
	Short: "Import ISC rows into the store",
	Long: `Parse the feature's isc.md and upsert every tracker and anti-criteria
row into the store, keyed by criterion ID. Re-importing refreshes
existing rows in place.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := wire.CriterionService().ImportCriteria(context.Background(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("✓ Imported %d criteria for %s\n", resp.Imported, resp.Feature)
		return nil
	},
}

var criteriaListCmd = &cobra.Command{
	Use:   "list [feature]",
	Short: "List a feature's stored criteria",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		criteria, err := wire.CriterionService().ListCriteria(context.Background(), args[0])
		if err != nil {
			return err
		}

		if len(criteria) == 0 {
			fmt.Println("No criteria in the store.")
			fmt.Println()
			fmt.Println("Import them from the tracker:")
			fmt.Printf("  specfirst criteria import %s\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "CID\tSTATUS\tPHASE\tEVIDENCE\tTEXT")
		fmt.Fprintln(w, "---\t------\t-----\t--------\t----")
		for _, c := range criteria {
			phase := c.Phase
			if phase == "" {
				phase = "-"
			}
			evidence := c.Evidence
			if evidence == "" {
				evidence = "-"
			}
			fmt.Fprintf(w, "%s\t%s %s\t%s\t%s\t%s\n", c.CID, criterionStatusGlyph(c.Status), c.Status, phase, evidence, c.Text)
		}
		w.Flush()

		return nil
	},
}

var criteriaUpdateCmd = &cobra.Command{
	Use:   "update [feature] [cid] [status]",
	Short: "Update one criterion's status",
	Long: `Set a criterion's status, optionally with evidence.

Tracker criteria (C-prefixed) accept pending, in-progress, verified,
failed or their symbols. Anti-criteria (A-prefixed) accept watching,
avoided, triggered.

Examples:
  specfirst criteria update user-auth C2 verified --evidence "login test green"
  specfirst criteria update user-auth A1 triggered`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		evidence, _ := cmd.Flags().GetString("evidence")

		err := wire.CriterionService().UpdateCriterionStatus(context.Background(), args[0], args[1], args[2], evidence)
		if err != nil {
			return err
		}

		fmt.Printf("✓ Criterion %s set to %s\n", args[1], args[2])
		return nil
	},
}

func criterionStatusGlyph(status string) string {
	switch status {
	case "pending":
		return "⬜"
	case "in-progress":
		return "🔄"
	case "verified", "avoided":
		return "✅"
	case "failed":
		return "❌"
	case "watching":
		return "👀"
	case "triggered":
		return "🚨"
	default:
		return "?"
	}
}

// CriteriaCmd returns the criteria command
func CriteriaCmd() *cobra.Command {
	// Add flags
	criteriaCheckCmd.Flags().Bool("strict", false, "Treat quality findings as failures")
	criteriaUpdateCmd.Flags().StringP("evidence", "E", "", "Evidence supporting the status")

	// Add subcommands
	criteriaCmd.AddCommand(criteriaCheckCmd)
	criteriaCmd.AddCommand(criteriaImportCmd)
	criteriaCmd.AddCommand(criteriaListCmd)
	criteriaCmd.AddCommand(criteriaUpdateCmd)

	return criteriaCmd
}
