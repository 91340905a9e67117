package sqlite

import (
	"context"

	"github.com/example/specfirst/internal/ctxutil"
	"github.com/example/specfirst/internal/ports/secondary"
)

// LogWriterAdapter implements secondary.LogWriter on top of the audit
// repository, resolving the acting session from context.
type LogWriterAdapter struct {
	auditRepo secondary.AuditLogRepository
}

// NewLogWriterAdapter creates a new LogWriterAdapter.
func NewLogWriterAdapter(auditRepo secondary.AuditLogRepository) *LogWriterAdapter {
	return &LogWriterAdapter{auditRepo: auditRepo}
}

// LogCreate logs a create operation for an entity.
func (w *LogWriterAdapter) LogCreate(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "create", "", "", "")
}

// LogUpdate logs an update operation for an entity field.
func (w *LogWriterAdapter) LogUpdate(ctx context.Context, entityType, entityID, fieldName, oldValue, newValue string) error {
	return w.writeLog(ctx, entityType, entityID, "update", fieldName, oldValue, newValue)
}

// LogDelete logs a delete operation for an entity.
func (w *LogWriterAdapter) LogDelete(ctx context.Context, entityType, entityID string) error {
	return w.writeLog(ctx, entityType, entityID, "delete", "", "", "")
}

func (w *LogWriterAdapter) writeLog(ctx context.Context, entityType, entityID, action, fieldName, oldValue, newValue string) error {
	// Changes made outside a session (init, doctor, dev tooling) are
	// still recorded, just without an actor.
	actorID := ctxutil.ActorFromContext(ctx)

	record := &secondary.AuditRecord{
		ActorID:    actorID,
		EntityType: entityType,
		EntityID:   entityID,
		Action:     action,
		FieldName:  fieldName,
		OldValue:   oldValue,
		NewValue:   newValue,
	}

	return w.auditRepo.Insert(ctx, record)
}

// Ensure LogWriterAdapter implements the interface
var _ secondary.LogWriter = (*LogWriterAdapter)(nil)
