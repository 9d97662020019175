package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"cashflow/internal/amqp"
	"cashflow/internal/core"
	"cashflow/internal/storage"
)

type recordingPublisher struct {
	events []string
	err    error
}

func (p *recordingPublisher) PublishCashFlowEvent(ctx context.Context, id int64, action string) error {
	p.events = append(p.events, action)
	return p.err
}

func newTestService(t *testing.T, pub EventPublisher) (*CashFlowService, *storage.Repository) {
	t.Helper()
	repo, err := storage.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return NewCashFlowService(repo, pub), repo
}

func seedAccount(t *testing.T, repo *storage.Repository) core.Account {
	t.Helper()
	acc, err := repo.CreateAccount(context.Background(), core.Account{
		BankAccountNo: "ACCOUNT12345",
		BankName:      "TestBank",
		AccountType:   core.Savings,
		HolderName:    "Test User",
		Currency:      core.INR,
	})
	if err != nil {
		t.Fatalf("seed account: %v", err)
	}
	return acc
}

func TestCashFlowLifecyclePublishesEvents(t *testing.T) {
	pub := &recordingPublisher{}
	svc, repo := newTestService(t, pub)
	acc := seedAccount(t, repo)
	ctx := context.Background()

	cf, err := svc.CreateCashFlow(ctx, core.CashFlow{
		AccountID: acc.ID,
		TxnType:   core.Credit,
		Category:  "salary",
		Amount:    core.Money{Cents: 50000},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	amount := int64(60000)
	if _, err := svc.UpdateCashFlow(ctx, cf.ID, storage.CashFlowUpdate{AmountCents: &amount}); err != nil {
		t.Fatalf("update: %v", err)
	}

	if err := svc.DeleteCashFlow(ctx, cf.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	want := []string{amqp.ActionCreated, amqp.ActionUpdated, amqp.ActionDeleted}
	if len(pub.events) != len(want) {
		t.Fatalf("events = %v", pub.events)
	}
	for i := range want {
		if pub.events[i] != want[i] {
			t.Fatalf("events = %v, want %v", pub.events, want)
		}
	}
}

func TestPublishFailureDoesNotFailRequest(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	svc, repo := newTestService(t, pub)
	acc := seedAccount(t, repo)

	cf, err := svc.CreateCashFlow(context.Background(), core.CashFlow{
		AccountID: acc.ID,
		TxnType:   core.Debit,
		Amount:    core.Money{Cents: 100},
	})
	if err != nil {
		t.Fatalf("create should succeed despite publish failure: %v", err)
	}
	if _, err := repo.GetCashFlow(context.Background(), cf.ID); err != nil {
		t.Fatalf("row not persisted: %v", err)
	}
}

func TestNilPublisherIsOptional(t *testing.T) {
	svc, repo := newTestService(t, nil)
	acc := seedAccount(t, repo)

	if _, err := svc.CreateCashFlow(context.Background(), core.CashFlow{
		AccountID: acc.ID,
		TxnType:   core.Debit,
		Amount:    core.Money{Cents: 100},
	}); err != nil {
		t.Fatalf("create without publisher: %v", err)
	}
}

func TestStorageErrorsPropagate(t *testing.T) {
	svc, _ := newTestService(t, nil)

	_, err := svc.CreateCashFlow(context.Background(), core.CashFlow{
		AccountID: 999,
		TxnType:   core.Credit,
		Amount:    core.Money{Cents: 100},
	})
	if !errors.Is(err, storage.ErrAccountMissing) {
		t.Fatalf("expected referential error, got %v", err)
	}

	if err := svc.DeleteCashFlow(context.Background(), 12345); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
