package services

import (
	"context"
	"fmt"
	"log/slog"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// EventPublisher publishes cashflow change events for downstream consumers.
type EventPublisher interface {
	PublishCashFlowEvent(ctx context.Context, id int64, action string) error
}

// CashFlowService orchestrates cashflow writes: persist first, then publish
// a change event. Publish failures are logged and never fail the request;
// the row is already durably stored.
type CashFlowService struct {
	repo      *storage.Repository
	publisher EventPublisher
}

func NewCashFlowService(repo *storage.Repository, publisher EventPublisher) *CashFlowService {
	return &CashFlowService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *CashFlowService) CreateCashFlow(ctx context.Context, cf core.CashFlow) (core.CashFlow, error) {
	created, err := s.repo.CreateCashFlow(ctx, cf)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("save cashflow: %w", err)
	}

	s.publishEvent(ctx, created.ID, amqp.ActionCreated)
	return created, nil
}

func (s *CashFlowService) UpdateCashFlow(ctx context.Context, id int64, upd storage.CashFlowUpdate) (core.CashFlow, error) {
	updated, err := s.repo.UpdateCashFlow(ctx, id, upd)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("update cashflow: %w", err)
	}

	s.publishEvent(ctx, id, amqp.ActionUpdated)
	return updated, nil
}

func (s *CashFlowService) DeleteCashFlow(ctx context.Context, id int64) error {
	if err := s.repo.DeleteCashFlow(ctx, id); err != nil {
		return fmt.Errorf("delete cashflow: %w", err)
	}

	s.publishEvent(ctx, id, amqp.ActionDeleted)
	return nil
}

func (s *CashFlowService) publishEvent(ctx context.Context, id int64, action string) {
	if s.publisher == nil {
		slog.DebugContext(ctx, "Event publisher not configured, skipping event",
			"id", id, "action", action)
		return
	}
	if err := s.publisher.PublishCashFlowEvent(ctx, id, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish cashflow event",
			"id", id, "action", action, "error", err)
	}
}
