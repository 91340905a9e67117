package primary

import "context"

// LogService defines the primary port for audit log operations.
type LogService interface {
	// ListLogs retrieves audit entries matching the given filters.
	ListLogs(ctx context.Context, filters LogFilters) ([]*LogEntry, error)

	// PruneLogs deletes audit entries older than the specified number of
	// days and returns how many were removed.
	PruneLogs(ctx context.Context, olderThanDays int) (int, error)
}

// LogEntry represents an audit log entry at the port boundary.
type LogEntry struct {
	ID         int64
	Timestamp  string
	ActorID    string // session that performed the change
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string // for updates only
	OldValue   string
	NewValue   string
}

// LogFilters contains filter options for querying audit entries.
type LogFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
