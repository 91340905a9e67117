package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/specfirst/internal/ports/secondary"
)

const sessionColumns = "id, status, current_feature_id, features_completed, started_at, ended_at"

// SessionRepository implements secondary.SessionRepository with SQLite.
type SessionRepository struct {
	db *sql.DB
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(db *sql.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create persists a new session.
// The record must have ID and Status pre-populated by the service layer.
func (r *SessionRepository) Create(ctx context.Context, session *secondary.SessionRecord) error {
	if session.ID == "" {
		return fmt.Errorf("session ID must be pre-populated by service layer")
	}
	if session.Status == "" {
		return fmt.Errorf("session Status must be pre-populated by service layer")
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO sessions (id, status, current_feature_id) VALUES (?, ?, ?)",
		session.ID, session.Status, nullString(session.CurrentFeatureID),
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE id = ?", id)

	record, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("session %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return record, nil
}

// GetRunning retrieves the running session, or nil when none is
// running. Absence is a normal answer here, not an error.
func (r *SessionRepository) GetRunning(ctx context.Context) (*secondary.SessionRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+sessionColumns+" FROM sessions WHERE status = 'running' ORDER BY started_at DESC LIMIT 1")

	record, err := scanSession(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get running session: %w", err)
	}
	return record, nil
}

// Update writes every mutable column. Sessions are only mutated by
// their owning process, so read-modify-write is safe and lets the
// caller clear current_feature_id by writing an empty value.
func (r *SessionRepository) Update(ctx context.Context, session *secondary.SessionRecord) error {
	var endedAt sql.NullTime
	if session.EndedAt != "" {
		ts, err := time.Parse(time.RFC3339, session.EndedAt)
		if err != nil {
			return fmt.Errorf("invalid ended_at timestamp: %w", err)
		}
		endedAt = sql.NullTime{Time: ts, Valid: true}
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE sessions
		SET status = ?, current_feature_id = ?, features_completed = ?, ended_at = ?
		WHERE id = ?`,
		session.Status, nullString(session.CurrentFeatureID),
		session.FeaturesCompleted, endedAt, session.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("session %s not found", session.ID)
	}

	return nil
}

// List retrieves sessions, most recent first.
func (r *SessionRepository) List(ctx context.Context, limit int) ([]*secondary.SessionRecord, error) {
	query := "SELECT " + sessionColumns + " FROM sessions ORDER BY started_at DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*secondary.SessionRecord
	for rows.Next() {
		record, err := scanSession(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, record)
	}

	return sessions, rows.Err()
}

func scanSession(scan func(dest ...any) error) (*secondary.SessionRecord, error) {
	var (
		currentFeatureID sql.NullString
		startedAt        time.Time
		endedAt          sql.NullTime
	)

	record := &secondary.SessionRecord{}
	err := scan(
		&record.ID, &record.Status, &currentFeatureID,
		&record.FeaturesCompleted, &startedAt, &endedAt,
	)
	if err != nil {
		return nil, err
	}

	record.CurrentFeatureID = currentFeatureID.String
	record.StartedAt = startedAt.Format(time.RFC3339)
	if endedAt.Valid {
		record.EndedAt = endedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}
