package db

import (
	"database/sql"
	"fmt"
)

// ExpectedTables lists the tables a fully migrated database contains,
// sorted. Migrations are the single source of truth for the schema;
// this list exists so health checks can verify them without re-reading
// the migration SQL.
func ExpectedTables() []string {
	return []string{"audit_log", "criteria", "features", "schema_version", "sessions"}
}

// Tables returns the user tables present in the database, sorted.
func Tables(conn *sql.DB) ([]string, error) {
	rows, err := conn.Query(
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to list tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan table name: %w", err)
		}
		tables = append(tables, name)
	}
	return tables, rows.Err()
}

// MissingTables returns expected tables absent from the database.
func MissingTables(conn *sql.DB) ([]string, error) {
	present, err := Tables(conn)
	if err != nil {
		return nil, err
	}

	have := make(map[string]bool, len(present))
	for _, name := range present {
		have[name] = true
	}

	var missing []string
	for _, name := range ExpectedTables() {
		if !have[name] {
			missing = append(missing, name)
		}
	}
	return missing, nil
}
