package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/specfirst/internal/ports/secondary"
)

// CriterionRepository implements secondary.CriterionRepository with SQLite.
type CriterionRepository struct {
	db *sql.DB
}

// NewCriterionRepository creates a new SQLite criterion repository.
func NewCriterionRepository(db *sql.DB) *CriterionRepository {
	return &CriterionRepository{db: db}
}

// Upsert inserts the criterion or refreshes the row with the same
// (feature, cid) pair. Re-importing a document is safe to repeat.
func (r *CriterionRepository) Upsert(ctx context.Context, criterion *secondary.CriterionRecord) error {
	if criterion.FeatureID == "" || criterion.CID == "" {
		return fmt.Errorf("criterion FeatureID and CID must be pre-populated by service layer")
	}
	if criterion.Status == "" {
		return fmt.Errorf("criterion Status must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO criteria (feature_id, cid, text, status, evidence, phase)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(feature_id, cid) DO UPDATE SET
			text = excluded.text,
			status = excluded.status,
			evidence = excluded.evidence,
			phase = excluded.phase,
			updated_at = CURRENT_TIMESTAMP`,
		criterion.FeatureID, criterion.CID, criterion.Text, criterion.Status,
		nullString(criterion.Evidence), nullString(criterion.Phase),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert criterion: %w", err)
	}

	return nil
}

// ListByFeature retrieves all criteria for a feature: tracker rows
// (C-prefixed cids) before anti rows (A-prefixed), each ordered by the
// numeric part of the cid so C10 sorts after C9 rather than after C1.
func (r *CriterionRepository) ListByFeature(ctx context.Context, featureID string) ([]*secondary.CriterionRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, feature_id, cid, text, status, evidence, phase, created_at, updated_at
		FROM criteria
		WHERE feature_id = ?
		ORDER BY SUBSTR(cid, 1, 1) DESC, CAST(SUBSTR(cid, 2) AS INTEGER) ASC`,
		featureID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list criteria: %w", err)
	}
	defer rows.Close()

	var criteria []*secondary.CriterionRecord
	for rows.Next() {
		var (
			evidence, phase      sql.NullString
			createdAt, updatedAt time.Time
		)
		record := &secondary.CriterionRecord{}
		err := rows.Scan(
			&record.ID, &record.FeatureID, &record.CID, &record.Text,
			&record.Status, &evidence, &phase, &createdAt, &updatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan criterion: %w", err)
		}
		record.Evidence = evidence.String
		record.Phase = phase.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		record.UpdatedAt = updatedAt.Format(time.RFC3339)
		criteria = append(criteria, record)
	}

	return criteria, rows.Err()
}

// UpdateStatus sets the status and evidence of one criterion.
func (r *CriterionRepository) UpdateStatus(ctx context.Context, featureID, cid, status, evidence string) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE criteria
		SET status = ?, evidence = ?, updated_at = CURRENT_TIMESTAMP
		WHERE feature_id = ? AND cid = ?`,
		status, nullString(evidence), featureID, cid,
	)
	if err != nil {
		return fmt.Errorf("failed to update criterion status: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("criterion %s not found for feature %s", cid, featureID)
	}

	return nil
}

// DeleteByFeature removes all criteria for a feature. Deleting zero
// rows is not an error; a feature may simply have no imported document.
func (r *CriterionRepository) DeleteByFeature(ctx context.Context, featureID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM criteria WHERE feature_id = ?", featureID)
	if err != nil {
		return fmt.Errorf("failed to delete criteria: %w", err)
	}
	return nil
}
