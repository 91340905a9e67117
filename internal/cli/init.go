package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/example/specfirst/internal/config"
	"github.com/example/specfirst/internal/core/artifact"
	"github.com/example/specfirst/internal/db"
	"github.com/example/specfirst/internal/scaffold"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize a SpecFirst project",
		Long: `Initialize the current directory as a SpecFirst project.

This command:
1. Writes .specfirst/config.json (kept if it already exists)
2. Creates the specs directory
3. Scaffolds CONSTITUTION.md (kept if it already exists)
4. Creates the database and applies the schema`,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}

			// Config: keep an existing one, its paths may be customized
			cfg, err := config.LoadConfig(root)
			if err != nil {
				cfg = config.Default()
				if err := config.SaveConfig(root, cfg); err != nil {
					return fmt.Errorf("failed to write config: %w", err)
				}
				fmt.Printf("✓ Config written to %s\n", filepath.Join(config.Dir, "config.json"))
			} else {
				fmt.Printf("✓ Config found at %s\n", filepath.Join(config.Dir, "config.json"))
			}

			layout := artifact.NewLayout(root, cfg.SpecsDir)

			if err := os.MkdirAll(filepath.Join(root, cfg.SpecsDir), 0755); err != nil {
				return fmt.Errorf("failed to create specs directory: %w", err)
			}
			fmt.Printf("✓ Specs directory ready at %s/\n", cfg.SpecsDir)

			if err := initConstitution(layout, filepath.Base(root)); err != nil {
				return err
			}

			dbPath := cfg.DatabasePath(root)
			conn, err := db.Open(dbPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer conn.Close()
			fmt.Printf("✓ Database initialized at %s\n", cfg.Database)

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  specfirst feature new my-first-feature")
			fmt.Println("  specfirst run propose my-first-feature")

			return nil
		},
	}
}

// initConstitution scaffolds the constitution unless one already exists.
func initConstitution(layout artifact.Layout, project string) error {
	path := layout.Path("", artifact.Constitution)
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("✓ Constitution found at %s\n", filepath.Base(path))
		return nil
	}

	content, err := scaffold.NewGenerator().Constitution(project)
	if err != nil {
		return fmt.Errorf("failed to render constitution: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write constitution: %w", err)
	}
	fmt.Printf("✓ Constitution scaffolded at %s\n", filepath.Base(path))
	return nil
}
