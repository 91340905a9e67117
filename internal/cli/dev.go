package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/db"
)

// DevCmd returns the dev command group for development utilities.
func DevCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dev",
		Short: "Development utilities (use via specfirst-dev shim)",
		Long: `Development utilities for working with the SpecFirst dev database.

These commands are intended to be run via the specfirst-dev shim, which
sets SPECFIRST_DB_PATH to a scratch location. Running without the shim
will error to prevent accidental modification of a project database.`,
	}

	cmd.AddCommand(devResetCmd())
	cmd.AddCommand(devSeedCmd())
	return cmd
}

func devResetCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Reset dev database with fresh fixtures",
		Long: `Delete the dev database and recreate it with fixture data.

This command:
1. Deletes the existing dev database file
2. Creates a fresh database with the current schema
3. Seeds fixture data for development

Safety: This command requires SPECFIRST_DB_PATH to be set (via the
specfirst-dev shim) to prevent accidental reset of a project database.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Safety check: require SPECFIRST_DB_PATH to be set
			dbPath := os.Getenv("SPECFIRST_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("SPECFIRST_DB_PATH not set - use 'specfirst-dev dev reset' instead of 'specfirst dev reset'\n\nThis safety check prevents accidental reset of your project database")
			}

			// Confirmation unless --force
			if !force {
				fmt.Printf("This will delete and recreate: %s\n", dbPath)
				fmt.Print("Continue? [y/N] ")
				var response string
				fmt.Scanln(&response)
				if response != "y" && response != "Y" {
					fmt.Println("Aborted.")
					return nil
				}
			}

			// Delete existing database
			if err := os.Remove(dbPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("failed to delete database: %w", err)
			}
			fmt.Printf("✓ Deleted %s\n", dbPath)

			// Create fresh database with schema
			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to create database: %w", err)
			}
			defer database.Close()
			fmt.Println("✓ Created fresh database with schema")

			// Seed fixtures
			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			fmt.Println("\nDev database reset complete!")
			fmt.Println("\nSeeded entities:")
			fmt.Println("  - 3 features (completed, in_progress, pending)")
			fmt.Println("  - 4 criteria on FEAT-002")
			fmt.Println("  - 1 running session claiming FEAT-002")

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Skip confirmation prompt")
	return cmd
}

func devSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed fixtures into the dev database",
		Long: `Seed fixture data into the dev database without deleting it.

Fails if fixture rows already exist; run 'dev reset' for a clean slate.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath := os.Getenv("SPECFIRST_DB_PATH")
			if dbPath == "" {
				return fmt.Errorf("SPECFIRST_DB_PATH not set - use the specfirst-dev shim for dev commands")
			}

			database, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer database.Close()

			if err := db.SeedFixtures(database); err != nil {
				return fmt.Errorf("failed to seed fixtures: %w", err)
			}
			fmt.Println("✓ Seeded fixture data")

			return nil
		},
	}

	return cmd
}
