package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// Migration represents a database migration
type Migration struct {
	Version int
	Name    string
	Up      func(*sql.DB) error
}

// migrations is the list of all migrations in order
var migrations = []Migration{
	{
		Version: 1,
		Name:    "create_features_criteria_sessions",
		Up:      migrationV1,
	},
	{
		Version: 2,
		Name:    "add_feature_lifecycle_columns",
		Up:      migrationV2,
	},
	{
		Version: 3,
		Name:    "create_audit_log",
		Up:      migrationV3,
	},
	{
		Version: 4,
		Name:    "widen_criteria_status",
		Up:      migrationV4,
	},
}

// RunMigrations executes all pending migrations against the given handle.
func RunMigrations(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_version table: %w", err)
	}

	var currentVersion int
	err = conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		if err := migration.Up(conn); err != nil {
			return fmt.Errorf("migration %d (%s) failed: %w", migration.Version, migration.Name, err)
		}

		_, err = conn.Exec("INSERT INTO schema_version (version) VALUES (?)", migration.Version)
		if err != nil {
			return fmt.Errorf("failed to record migration %d: %w", migration.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the highest applied migration version.
func SchemaVersion(conn *sql.DB) (int, error) {
	var version int
	err := conn.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// addColumn adds a column to a table. SQLite has no ADD COLUMN IF NOT
// EXISTS; a duplicate-column error means an earlier run already applied
// the change, so it is swallowed to keep upgrades idempotent.
func addColumn(conn *sql.DB, table, column, decl string) error {
	_, err := conn.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	if err != nil && strings.Contains(err.Error(), "duplicate column name") {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to add %s.%s: %w", table, column, err)
	}
	return nil
}

// migrationV1 creates the three core tables. sessions.current_feature_id
// and criteria.feature_id are the two foreign keys; features.session_id
// is plain text so a feature row can outlive its session.
func migrationV1(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS features (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			priority INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL CHECK(status IN ('pending', 'in_progress', 'completed', 'skipped')) DEFAULT 'pending',
			phase TEXT,
			constitution_path TEXT,
			proposal_path TEXT,
			spec_path TEXT,
			plan_path TEXT,
			tasks_path TEXT,
			session_id TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			started_at DATETIME,
			completed_at DATETIME
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create features: %w", err)
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL CHECK(status IN ('running', 'paused', 'completed', 'failed')) DEFAULT 'running',
			current_feature_id TEXT,
			features_completed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			FOREIGN KEY (current_feature_id) REFERENCES features(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create sessions: %w", err)
	}

	_, err = conn.Exec(`
		CREATE TABLE IF NOT EXISTS criteria (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			feature_id TEXT NOT NULL,
			cid TEXT NOT NULL,
			text TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('pending', 'in-progress', 'verified', 'failed')) DEFAULT 'pending',
			evidence TEXT,
			phase TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(feature_id, cid),
			FOREIGN KEY (feature_id) REFERENCES features(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create criteria: %w", err)
	}

	return nil
}

// migrationV2 adds the lifecycle extension columns. Additive and
// nullable only, applied idempotently.
func migrationV2(conn *sql.DB) error {
	if err := addColumn(conn, "features", "prd_status", "TEXT"); err != nil {
		return err
	}
	if err := addColumn(conn, "features", "effort_level", "TEXT"); err != nil {
		return err
	}
	if err := addColumn(conn, "features", "iteration", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return err
	}
	if err := addColumn(conn, "features", "verification_summary", "TEXT"); err != nil {
		return err
	}
	return nil
}

// migrationV3 creates the audit trail table.
func migrationV3(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
			actor_id TEXT NOT NULL DEFAULT '',
			entity_type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			action TEXT NOT NULL CHECK(action IN ('create', 'update', 'delete')),
			field_name TEXT,
			old_value TEXT,
			new_value TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create audit_log: %w", err)
	}
	return nil
}

// migrationV4 widens the criteria status constraint to admit the
// anti-criteria statuses (watching, avoided, triggered). SQLite cannot
// alter a CHECK in place, so the table is rebuilt and rows copied over.
func migrationV4(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE TABLE criteria_new (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			feature_id TEXT NOT NULL,
			cid TEXT NOT NULL,
			text TEXT NOT NULL,
			status TEXT NOT NULL CHECK(status IN ('pending', 'in-progress', 'verified', 'failed', 'watching', 'avoided', 'triggered')) DEFAULT 'pending',
			evidence TEXT,
			phase TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(feature_id, cid),
			FOREIGN KEY (feature_id) REFERENCES features(id)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create criteria_new: %w", err)
	}

	_, err = conn.Exec(`
		INSERT INTO criteria_new (id, feature_id, cid, text, status, evidence, phase, created_at, updated_at)
		SELECT id, feature_id, cid, text, status, evidence, phase, created_at, updated_at FROM criteria
	`)
	if err != nil {
		return fmt.Errorf("failed to copy criteria rows: %w", err)
	}

	if _, err = conn.Exec("DROP TABLE criteria"); err != nil {
		return fmt.Errorf("failed to drop old criteria: %w", err)
	}
	if _, err = conn.Exec("ALTER TABLE criteria_new RENAME TO criteria"); err != nil {
		return fmt.Errorf("failed to rename criteria_new: %w", err)
	}
	return nil
}
