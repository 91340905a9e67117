package secondary

import "context"

// LogWriter defines the interface for writing audit log entries.
// Implementations extract the acting session from context. Audit writes
// are best-effort: a failed write never fails the audited operation.
type LogWriter interface {
	// LogCreate logs a create operation for an entity.
	LogCreate(ctx context.Context, entityType, entityID string) error

	// LogUpdate logs an update operation for an entity field.
	// fieldName, oldValue, newValue describe what changed.
	LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error

	// LogDelete logs a delete operation for an entity.
	LogDelete(ctx context.Context, entityType, entityID string) error
}

// AuditLogRepository defines the secondary port for raw audit storage.
// LogWriter implementations sit on top of it and add actor resolution.
type AuditLogRepository interface {
	// Insert persists one audit entry. Timestamp is assigned by storage.
	Insert(ctx context.Context, record *AuditRecord) error

	// List retrieves audit entries matching the filters, newest first.
	List(ctx context.Context, filters AuditFilters) ([]*AuditRecord, error)

	// DeleteOlderThan removes entries with a timestamp before the given
	// RFC3339 cutoff and returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff string) (int, error)
}

// AuditRecord represents one audit entry as stored in persistence.
type AuditRecord struct {
	ID         int64
	Timestamp  string // RFC3339, assigned by storage on insert
	ActorID    string // session that performed the change, may be empty
	EntityType string
	EntityID   string
	Action     string // 'create', 'update', 'delete'
	FieldName  string
	OldValue   string
	NewValue   string
}

// AuditFilters contains filter options for querying audit entries.
type AuditFilters struct {
	EntityType string
	EntityID   string
	ActorID    string
	Action     string
	Limit      int
}
