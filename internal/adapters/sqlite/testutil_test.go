// Package sqlite_test contains integration tests for SQLite repositories.
//
// All test setup goes through db.OpenInMemory so tests run against the
// same migrations as production. Do not hardcode CREATE TABLE statements
// in test files; use setupTestDB() and the seed* helpers.
package sqlite_test

import (
	"database/sql"
	"testing"

	"github.com/example/specfirst/internal/db"
)

// setupTestDB creates an in-memory database with the full migrated schema.
// This is the single shared test database setup function for all repository tests.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := db.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// seedFeature inserts a test feature and returns its ID.
func seedFeature(t *testing.T, db *sql.DB, id, name string) string {
	t.Helper()
	if id == "" {
		id = "FEAT-001"
	}
	if name == "" {
		name = "test-feature"
	}
	_, err := db.Exec("INSERT INTO features (id, name, priority, status) VALUES (?, ?, 1, 'pending')", id, name)
	if err != nil {
		t.Fatalf("failed to seed feature: %v", err)
	}
	return id
}

// seedSession inserts a test session and returns its ID.
func seedSession(t *testing.T, db *sql.DB, id string) string {
	t.Helper()
	if id == "" {
		id = "aaaaaaaa-bbbb-4ccc-8ddd-eeeeeeeeeeee"
	}
	_, err := db.Exec("INSERT INTO sessions (id, status) VALUES (?, 'running')", id)
	if err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return id
}

// seedCriterion inserts a test criterion for a feature and returns its cid.
func seedCriterion(t *testing.T, db *sql.DB, featureID, cid, text string) string {
	t.Helper()
	if cid == "" {
		cid = "C1"
	}
	if text == "" {
		text = "All payments retry three times before landing in review"
	}
	_, err := db.Exec("INSERT INTO criteria (feature_id, cid, text, status) VALUES (?, ?, ?, 'pending')", featureID, cid, text)
	if err != nil {
		t.Fatalf("failed to seed criterion: %v", err)
	}
	return cid
}
