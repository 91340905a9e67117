// Package db owns the SQLite connection and schema migrations.
// The handle is opened once and passed explicitly to every repository;
// there is no package-level connection state.
package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DefaultDirName is the per-project state directory.
const DefaultDirName = ".specfirst"

// DefaultFileName is the database filename inside the state directory.
const DefaultFileName = "specfirst.db"

// DefaultPath returns the database path for a project root.
func DefaultPath(projectRoot string) string {
	return filepath.Join(projectRoot, DefaultDirName, DefaultFileName)
}

// Open opens (creating if needed) the database at the given path,
// enables foreign keys, and applies pending migrations. The caller owns
// the returned handle and closes it when done.
func Open(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return conn, nil
}

// OpenInMemory opens a fresh in-memory database with the full schema
// applied. Used by tests.
func OpenInMemory() (*sql.DB, error) {
	conn, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory database: %w", err)
	}
	// Every pooled connection would get its own empty in-memory database;
	// pin the pool to one so the schema is visible everywhere.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return conn, nil
}
