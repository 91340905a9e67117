package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Dir is the project-local directory holding config and database.
const Dir = ".specfirst"

// CurrentVersion is written into fresh config files.
const CurrentVersion = "1.0"

// Defaults for fields left empty in the config file.
const (
	DefaultSpecsDir     = "specs"
	DefaultConstitution = "CONSTITUTION.md"
	DefaultDatabase     = Dir + "/specfirst.db"
)

// Config represents the flat SpecFirst configuration.
type Config struct {
	Version      string `json:"version"`
	SpecsDir     string `json:"specs_dir,omitempty"`    // feature artifact root, relative to the project
	Constitution string `json:"constitution,omitempty"` // project constitution file
	Database     string `json:"database,omitempty"`     // sqlite file, relative to the project
}

// Default returns a config populated with every default.
func Default() *Config {
	return &Config{
		Version:      CurrentVersion,
		SpecsDir:     DefaultSpecsDir,
		Constitution: DefaultConstitution,
		Database:     DefaultDatabase,
	}
}

// LoadConfig reads .specfirst/config.json from the specified directory.
// Resolution order: the given directory only (no home fallback). Empty
// fields fall back to defaults so hand-edited partial files keep working.
// Returns error if no config found - caller should handle accordingly.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, Dir, "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// SaveConfig writes config.json to the directory.
func SaveConfig(dir string, cfg *Config) error {
	cfgDir := filepath.Join(dir, Dir)
	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", Dir, err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(cfgDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// DatabasePath resolves the database location against the project root.
func (c *Config) DatabasePath(dir string) string {
	if filepath.IsAbs(c.Database) {
		return c.Database
	}
	return filepath.Join(dir, c.Database)
}

// ConstitutionPath resolves the constitution location against the project root.
func (c *Config) ConstitutionPath(dir string) string {
	if filepath.IsAbs(c.Constitution) {
		return c.Constitution
	}
	return filepath.Join(dir, c.Constitution)
}

func (c *Config) applyDefaults() {
	if c.SpecsDir == "" {
		c.SpecsDir = DefaultSpecsDir
	}
	if c.Constitution == "" {
		c.Constitution = DefaultConstitution
	}
	if c.Database == "" {
		c.Database = DefaultDatabase
	}
}
