package db

import (
	"database/sql"
	"fmt"
	"time"
)

// SeedFixtures populates the database with development fixtures: a few
// features at different pipeline stages, criteria for the in-flight one,
// and a running session holding a claim.
func SeedFixtures(database *sql.DB) error {
	now := time.Now().UTC().Format(time.RFC3339)

	features := []struct {
		id, name      string
		priority      int
		status, phase string
	}{
		{"FEAT-001", "user-auth", 1, "completed", "release"},
		{"FEAT-002", "payment-retry", 2, "in_progress", "specify"},
		{"FEAT-003", "export-csv", 3, "pending", ""},
	}
	for _, f := range features {
		var phase any
		if f.phase != "" {
			phase = f.phase
		}
		if _, err := database.Exec(
			"INSERT INTO features (id, name, priority, status, phase, created_at) VALUES (?, ?, ?, ?, ?, ?)",
			f.id, f.name, f.priority, f.status, phase, now,
		); err != nil {
			return fmt.Errorf("seed features: %w", err)
		}
	}

	criteria := []struct {
		cid, text, status string
	}{
		{"C1", "Failed payments retry three times before landing in review queue", "verified"},
		{"C2", "Retry backoff doubles after every attempt up to one minute", "in-progress"},
		{"C3", "Operators see every exhausted payment inside the review dashboard", "pending"},
		{"C4", "Review queue drains to zero within one business day", "pending"},
	}
	for _, c := range criteria {
		if _, err := database.Exec(
			"INSERT INTO criteria (feature_id, cid, text, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			"FEAT-002", c.cid, c.text, c.status, now, now,
		); err != nil {
			return fmt.Errorf("seed criteria: %w", err)
		}
	}

	if _, err := database.Exec(
		"INSERT INTO sessions (id, status, current_feature_id, features_completed, started_at) VALUES (?, 'running', ?, 1, ?)",
		"11111111-2222-4333-8444-555555555555", "FEAT-002", now,
	); err != nil {
		return fmt.Errorf("seed sessions: %w", err)
	}
	if _, err := database.Exec(
		"UPDATE features SET session_id = ? WHERE id = ?",
		"11111111-2222-4333-8444-555555555555", "FEAT-002",
	); err != nil {
		return fmt.Errorf("seed claim: %w", err)
	}

	return nil
}
