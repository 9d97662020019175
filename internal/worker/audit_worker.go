// Package worker consumes cashflow change events and maintains the audit
// trail. It runs as a separate binary so the API server never blocks on
// the broker.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/amqp"
	"cashflow/internal/storage"
)

type AuditWorker struct {
	repo *storage.Repository
}

func NewAuditWorker(repo *storage.Repository) *AuditWorker {
	return &AuditWorker{repo: repo}
}

// HandleEvent records a single cashflow change event in the audit log.
// Unknown actions are rejected so the broker drops them instead of
// requeueing forever.
func (w *AuditWorker) HandleEvent(ctx context.Context, msg *amqp.CashFlowEventMessage) error {
	switch msg.Action {
	case amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted:
	default:
		return fmt.Errorf("unknown audit action %q for cashflow %d", msg.Action, msg.ID)
	}

	if err := w.repo.RecordAuditEvent(ctx, "cashflow", msg.ID, msg.Action); err != nil {
		return fmt.Errorf("record audit event: %w", err)
	}

	slog.InfoContext(ctx, "Audit event recorded",
		"entity", "cashflow",
		"id", msg.ID,
		"action", msg.Action)
	return nil
}

// ReportActivity logs a snapshot of recent audit entries. Called
// periodically so operators can see the trail is moving.
func (w *AuditWorker) ReportActivity(ctx context.Context) error {
	entries, err := w.repo.ListAuditEvents(ctx, 10)
	if err != nil {
		return fmt.Errorf("list audit events: %w", err)
	}

	if len(entries) == 0 {
		slog.InfoContext(ctx, "Audit trail empty")
		return nil
	}

	slog.InfoContext(ctx, "Audit trail activity",
		"recent_entries", len(entries),
		"latest_entity", entries[0].Entity,
		"latest_action", entries[0].Action,
		"latest_at", entries[0].RecordedAt)
	return nil
}
