package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/specfirst/internal/ports/secondary"
)

// AuditLogRepository implements secondary.AuditLogRepository with SQLite.
type AuditLogRepository struct {
	db *sql.DB
}

// NewAuditLogRepository creates a new SQLite audit log repository.
func NewAuditLogRepository(db *sql.DB) *AuditLogRepository {
	return &AuditLogRepository{db: db}
}

// Insert persists one audit entry. The timestamp comes from the column
// default so entries order consistently regardless of caller clocks.
func (r *AuditLogRepository) Insert(ctx context.Context, record *secondary.AuditRecord) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (actor_id, entity_type, entity_id, action, field_name, old_value, new_value)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		record.ActorID, record.EntityType, record.EntityID, record.Action,
		nullString(record.FieldName), nullString(record.OldValue), nullString(record.NewValue),
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// List retrieves audit entries matching the filters, newest first.
func (r *AuditLogRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	query := "SELECT id, timestamp, actor_id, entity_type, entity_id, action, field_name, old_value, new_value FROM audit_log"
	args := []any{}
	conditions := []string{}

	if filters.EntityType != "" {
		conditions = append(conditions, "entity_type = ?")
		args = append(args, filters.EntityType)
	}
	if filters.EntityID != "" {
		conditions = append(conditions, "entity_id = ?")
		args = append(args, filters.EntityID)
	}
	if filters.ActorID != "" {
		conditions = append(conditions, "actor_id = ?")
		args = append(args, filters.ActorID)
	}
	if filters.Action != "" {
		conditions = append(conditions, "action = ?")
		args = append(args, filters.Action)
	}

	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}

	query += " ORDER BY timestamp DESC, id DESC"
	if filters.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filters.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.AuditRecord
	for rows.Next() {
		var (
			timestamp                     time.Time
			fieldName, oldValue, newValue sql.NullString
		)
		record := &secondary.AuditRecord{}
		err := rows.Scan(
			&record.ID, &timestamp, &record.ActorID,
			&record.EntityType, &record.EntityID, &record.Action,
			&fieldName, &oldValue, &newValue,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		record.Timestamp = timestamp.Format(time.RFC3339)
		record.FieldName = fieldName.String
		record.OldValue = oldValue.String
		record.NewValue = newValue.String
		entries = append(entries, record)
	}

	return entries, rows.Err()
}

// DeleteOlderThan removes entries with a timestamp before the cutoff.
func (r *AuditLogRepository) DeleteOlderThan(ctx context.Context, cutoff string) (int, error) {
	ts, err := time.Parse(time.RFC3339, cutoff)
	if err != nil {
		return 0, fmt.Errorf("invalid cutoff timestamp: %w", err)
	}

	result, err := r.db.ExecContext(ctx, "DELETE FROM audit_log WHERE timestamp < ?", ts)
	if err != nil {
		return 0, fmt.Errorf("failed to prune audit entries: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read prune result: %w", err)
	}
	return int(rowsAffected), nil
}
