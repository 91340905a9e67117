// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	corefeature "github.com/example/specfirst/internal/core/feature"
	"github.com/example/specfirst/internal/ports/secondary"
)

// featureColumns is the select list shared by every feature query.
const featureColumns = "id, name, priority, status, phase, " +
	"constitution_path, proposal_path, spec_path, plan_path, tasks_path, " +
	"session_id, prd_status, effort_level, iteration, verification_summary, " +
	"created_at, started_at, completed_at"

// FeatureRepository implements secondary.FeatureRepository with SQLite.
type FeatureRepository struct {
	db *sql.DB
}

// NewFeatureRepository creates a new SQLite feature repository.
func NewFeatureRepository(db *sql.DB) *FeatureRepository {
	return &FeatureRepository{db: db}
}

// Create persists a new feature.
// The record must have ID and Status pre-populated by the service layer.
func (r *FeatureRepository) Create(ctx context.Context, feature *secondary.FeatureRecord) error {
	if feature.ID == "" {
		return fmt.Errorf("feature ID must be pre-populated by service layer")
	}
	if feature.Status == "" {
		return fmt.Errorf("feature Status must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO features (id, name, priority, status, phase, effort_level) VALUES (?, ?, ?, ?, ?, ?)",
		feature.ID, feature.Name, feature.Priority, feature.Status,
		nullString(feature.Phase), nullString(feature.EffortLevel),
	)
	if err != nil {
		return fmt.Errorf("failed to create feature: %w", err)
	}

	return nil
}

// GetByID retrieves a feature by its ID.
func (r *FeatureRepository) GetByID(ctx context.Context, id string) (*secondary.FeatureRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+featureColumns+" FROM features WHERE id = ?", id)

	record, err := scanFeature(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feature %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return record, nil
}

// GetByName retrieves a feature by its unique name.
func (r *FeatureRepository) GetByName(ctx context.Context, name string) (*secondary.FeatureRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+featureColumns+" FROM features WHERE name = ?", name)

	record, err := scanFeature(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("feature %s not found", name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature: %w", err)
	}
	return record, nil
}

// List retrieves features matching the given filters.
func (r *FeatureRepository) List(ctx context.Context, filters secondary.FeatureFilters) ([]*secondary.FeatureRecord, error) {
	query := "SELECT " + featureColumns + " FROM features"
	args := []any{}
	where := ""

	if filters.Status != "" {
		where = " WHERE status = ?"
		args = append(args, filters.Status)
	}
	if filters.SessionID != "" {
		if where == "" {
			where = " WHERE session_id = ?"
		} else {
			where += " AND session_id = ?"
		}
		args = append(args, filters.SessionID)
	}

	query += where + " ORDER BY priority ASC, created_at ASC"

	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list features: %w", err)
	}
	defer rows.Close()

	var features []*secondary.FeatureRecord
	for rows.Next() {
		record, err := scanFeature(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature: %w", err)
		}
		features = append(features, record)
	}

	return features, rows.Err()
}

// Update updates an existing feature's mutable fields. Ownership is
// never touched here; claims go through Claim and Release so they stay
// atomic.
func (r *FeatureRepository) Update(ctx context.Context, feature *secondary.FeatureRecord) error {
	query := "UPDATE features SET id = id"
	args := []any{}

	if feature.Status != "" {
		query += ", status = ?"
		args = append(args, feature.Status)
	}
	if feature.Phase != "" {
		query += ", phase = ?"
		args = append(args, feature.Phase)
	}
	if feature.Priority != 0 {
		query += ", priority = ?"
		args = append(args, feature.Priority)
	}

	if feature.ConstitutionPath != "" {
		query += ", constitution_path = ?"
		args = append(args, feature.ConstitutionPath)
	}
	if feature.ProposalPath != "" {
		query += ", proposal_path = ?"
		args = append(args, feature.ProposalPath)
	}
	if feature.SpecPath != "" {
		query += ", spec_path = ?"
		args = append(args, feature.SpecPath)
	}
	if feature.PlanPath != "" {
		query += ", plan_path = ?"
		args = append(args, feature.PlanPath)
	}
	if feature.TasksPath != "" {
		query += ", tasks_path = ?"
		args = append(args, feature.TasksPath)
	}
	if feature.PRDStatus != "" {
		query += ", prd_status = ?"
		args = append(args, feature.PRDStatus)
	}
	if feature.EffortLevel != "" {
		query += ", effort_level = ?"
		args = append(args, feature.EffortLevel)
	}
	if feature.VerificationSummary != "" {
		query += ", verification_summary = ?"
		args = append(args, feature.VerificationSummary)
	}

	if feature.Iteration > 0 {
		query += ", iteration = ?"
		args = append(args, feature.Iteration)
	}

	// Timestamps are decided by the service layer's transition logic.
	if feature.StartedAt != "" {
		if ts, err := time.Parse(time.RFC3339, feature.StartedAt); err == nil {
			query += ", started_at = ?"
			args = append(args, sql.NullTime{Time: ts, Valid: true})
		}
	}
	if feature.CompletedAt != "" {
		if ts, err := time.Parse(time.RFC3339, feature.CompletedAt); err == nil {
			query += ", completed_at = ?"
			args = append(args, sql.NullTime{Time: ts, Valid: true})
		}
	}

	query += " WHERE id = ?"
	args = append(args, feature.ID)

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update feature: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("feature %s not found", feature.ID)
	}

	return nil
}

// Claim atomically assigns the feature to a session with a single
// conditional update. The WHERE clause is the whole race defense: two
// sessions racing for the same feature resolve on the row, and exactly
// one sees rows-affected = 1.
func (r *FeatureRepository) Claim(ctx context.Context, featureID, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE features SET session_id = ? WHERE id = ? AND (session_id IS NULL OR session_id = ?)",
		sessionID, featureID, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim feature: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	if rowsAffected > 0 {
		return true, nil
	}

	// No row changed: either the feature is owned elsewhere or it does
	// not exist. Only the former is a claim conflict.
	var exists int
	err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM features WHERE id = ?", featureID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check feature existence: %w", err)
	}
	if exists == 0 {
		return false, fmt.Errorf("feature %s not found", featureID)
	}
	return false, nil
}

// Release clears the claim only while the given session still holds it.
func (r *FeatureRepository) Release(ctx context.Context, featureID, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE features SET session_id = NULL WHERE id = ? AND session_id = ?",
		featureID, sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to release feature: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read release result: %w", err)
	}
	return rowsAffected > 0, nil
}

// GetNextID returns the next available feature ID.
// Uses core function for ID format to keep business logic in the functional core.
func (r *FeatureRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(SUBSTR(id, 6) AS INTEGER)), 0) FROM features",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next feature ID: %w", err)
	}

	return corefeature.GenerateFeatureID(maxID), nil
}

// Stats returns aggregate counts over all features in one query.
func (r *FeatureRepository) Stats(ctx context.Context) (*secondary.FeatureStats, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT status, COUNT(*) FROM features GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("failed to get feature stats: %w", err)
	}
	defer rows.Close()

	stats := &secondary.FeatureStats{ByStatus: make(map[string]int)}
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		stats.ByStatus[status] = count
		stats.Total += count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if stats.Total > 0 {
		stats.PercentComplete = float64(stats.ByStatus[string(corefeature.StatusCompleted)]) / float64(stats.Total) * 100
	}

	return stats, nil
}

// scanFeature maps one row onto a record, normalizing nullable columns.
func scanFeature(scan func(dest ...any) error) (*secondary.FeatureRecord, error) {
	var (
		phase, constitutionPath, proposalPath, specPath, planPath, tasksPath sql.NullString
		sessionID, prdStatus, effortLevel, verificationSummary              sql.NullString
		createdAt                                                           time.Time
		startedAt, completedAt                                              sql.NullTime
	)

	record := &secondary.FeatureRecord{}
	err := scan(
		&record.ID, &record.Name, &record.Priority, &record.Status, &phase,
		&constitutionPath, &proposalPath, &specPath, &planPath, &tasksPath,
		&sessionID, &prdStatus, &effortLevel, &record.Iteration, &verificationSummary,
		&createdAt, &startedAt, &completedAt,
	)
	if err != nil {
		return nil, err
	}

	record.Phase = phase.String
	record.ConstitutionPath = constitutionPath.String
	record.ProposalPath = proposalPath.String
	record.SpecPath = specPath.String
	record.PlanPath = planPath.String
	record.TasksPath = tasksPath.String
	record.SessionID = sessionID.String
	record.PRDStatus = prdStatus.String
	record.EffortLevel = effortLevel.String
	record.VerificationSummary = verificationSummary.String
	record.CreatedAt = createdAt.Format(time.RFC3339)
	if startedAt.Valid {
		record.StartedAt = startedAt.Time.Format(time.RFC3339)
	}
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

// nullString maps empty strings onto NULL for insert parameters.
func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
