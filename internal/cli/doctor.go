package cli

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/config"
	"github.com/example/specfirst/internal/db"
)

// CheckResult represents the outcome of a single check
type CheckResult struct {
	Name    string
	Status  string // "✓", "⚠", "✗"
	Details string // Only shown if Status != "✓"
}

// DoctorCmd returns the doctor command for environment validation
func DoctorCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate the SpecFirst environment",
		Long: `Comprehensive environment health check for SpecFirst.

Validates:
- git binary on PATH (the phase ledger is git-backed)
- git repository in the current directory
- .specfirst/config.json parses
- Database opens and carries every expected table
- Specs directory and constitution

Examples:
  specfirst doctor            # Run full health check
  specfirst doctor --quiet    # Exit code only (0=healthy, 1=issues)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			results := []CheckResult{
				checkGitBinary(),
				checkGitRepository(root),
				checkConfig(root),
				checkDatabase(root),
				checkProjectFiles(root),
			}

			hasErrors := false
			for _, r := range results {
				if r.Status == "✗" {
					hasErrors = true
					break
				}
			}

			if !quiet {
				// Print compact table
				fmt.Println()
				fmt.Println("Check              Status")
				fmt.Println("─────────────────────────")
				for _, r := range results {
					fmt.Printf("%-18s %s\n", r.Name, r.Status)
				}
				fmt.Println()

				// Print details for non-passing checks
				hasDetails := false
				for _, r := range results {
					if r.Status != "✓" && r.Details != "" {
						if !hasDetails {
							fmt.Println("Details:")
							hasDetails = true
						}
						fmt.Printf("\n%s:\n%s\n", r.Name, r.Details)
					}
				}

				if hasErrors {
					fmt.Println("\n⚠ Issues found. Run 'specfirst init' to set up the project.")
				} else {
					fmt.Println("All checks passed.")
				}
			}

			if hasErrors {
				return fmt.Errorf("environment validation failed")
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Quiet mode - exit code only")

	return cmd
}

// checkGitBinary validates that git is installed
func checkGitBinary() CheckResult {
	if _, err := exec.LookPath("git"); err != nil {
		return CheckResult{
			Name:    "Git binary",
			Status:  "✗",
			Details: "  git not found on PATH. The phase ledger is stored as git commits.",
		}
	}
	return CheckResult{Name: "Git binary", Status: "✓"}
}

// checkGitRepository validates that the project is a git repository
func checkGitRepository(root string) CheckResult {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = root
	if err := cmd.Run(); err != nil {
		return CheckResult{
			Name:    "Git repository",
			Status:  "✗",
			Details: "  Not a git repository. Run 'git init' first; workflow commands need the ledger.",
		}
	}
	return CheckResult{Name: "Git repository", Status: "✓"}
}

// checkConfig validates that the config file parses
func checkConfig(root string) CheckResult {
	if _, err := os.Stat(filepath.Join(root, config.Dir, "config.json")); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Config",
			Status:  "⚠",
			Details: "  No .specfirst/config.json. Defaults apply; 'specfirst init' writes one.",
		}
	}
	if _, err := config.LoadConfig(root); err != nil {
		return CheckResult{
			Name:    "Config",
			Status:  "✗",
			Details: fmt.Sprintf("  %v", err),
		}
	}
	return CheckResult{Name: "Config", Status: "✓"}
}

// checkDatabase validates that the database opens and has the full schema
func checkDatabase(root string) CheckResult {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		cfg = config.Default()
	}

	dbPath := cfg.DatabasePath(root)
	if override := os.Getenv("SPECFIRST_DB_PATH"); override != "" {
		dbPath = override
	}

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		return CheckResult{
			Name:    "Database",
			Status:  "⚠",
			Details: fmt.Sprintf("  No database at %s. 'specfirst init' creates it.", dbPath),
		}
	}

	conn, err := db.Open(dbPath)
	if err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: fmt.Sprintf("  %v", err),
		}
	}
	defer conn.Close()

	missing, err := db.MissingTables(conn)
	if err != nil {
		return CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: fmt.Sprintf("  failed to inspect schema: %v", err),
		}
	}
	if len(missing) > 0 {
		return CheckResult{
			Name:    "Database",
			Status:  "✗",
			Details: fmt.Sprintf("  missing tables: %s", strings.Join(missing, ", ")),
		}
	}
	return CheckResult{Name: "Database", Status: "✓"}
}

// checkProjectFiles validates the specs directory and constitution
func checkProjectFiles(root string) CheckResult {
	cfg, err := config.LoadConfig(root)
	if err != nil {
		cfg = config.Default()
	}

	missing := []string{}
	if _, err := os.Stat(filepath.Join(root, cfg.SpecsDir)); os.IsNotExist(err) {
		missing = append(missing, cfg.SpecsDir+"/")
	}
	if _, err := os.Stat(cfg.ConstitutionPath(root)); os.IsNotExist(err) {
		missing = append(missing, cfg.Constitution)
	}

	if len(missing) > 0 {
		return CheckResult{
			Name:    "Project files",
			Status:  "⚠",
			Details: fmt.Sprintf("  Missing: %s. 'specfirst init' scaffolds them.", strings.Join(missing, ", ")),
		}
	}
	return CheckResult{Name: "Project files", Status: "✓"}
}
