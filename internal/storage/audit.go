package storage

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// AuditEntry is one recorded change event, written by the audit worker.
type AuditEntry struct {
	ID         int64
	Entity     string
	EntityID   int64
	Action     string
	RecordedAt time.Time
}

// RecordAuditEvent appends a change event to the audit log.
func (r *Repository) RecordAuditEvent(ctx context.Context, entity string, entityID int64, action string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO audit_log (entity, entity_id, action, recorded_at)
		VALUES (?, ?, ?, ?)`,
		entity, entityID, action, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	slog.DebugContext(ctx, "Audit event recorded",
		"entity", entity,
		"entity_id", entityID,
		"action", action)
	return nil
}

// ListAuditEvents returns the newest audit entries, most recent first.
func (r *Repository) ListAuditEvents(ctx context.Context, limit int) ([]AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, entity, entity_id, action, recorded_at
		FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.Entity, &e.EntityID, &e.Action, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
