package storage

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"cashflow/internal/core"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open test repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func seedAccount(t *testing.T, repo *Repository, accountNo string, balanceCents int64) core.Account {
	t.Helper()
	a, err := repo.CreateAccount(context.Background(), core.Account{
		BankAccountNo: accountNo,
		BankName:      "TestBank",
		AccountType:   core.Savings,
		HolderName:    "Test User",
		Currency:      core.INR,
		Balance:       core.Money{Cents: balanceCents},
	})
	if err != nil {
		t.Fatalf("seed account %s: %v", accountNo, err)
	}
	return a
}

func seedCashFlow(t *testing.T, repo *Repository, accountID int64, txnType core.TxnType, category string, cents int64) core.CashFlow {
	t.Helper()
	cf, err := repo.CreateCashFlow(context.Background(), core.CashFlow{
		AccountID: accountID,
		TxnType:   txnType,
		Category:  category,
		Amount:    core.Money{Cents: cents},
	})
	if err != nil {
		t.Fatalf("seed cashflow: %v", err)
	}
	return cf
}

func ptr[T any](v T) *T { return &v }

func TestAccountCRUD(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	created := seedAccount(t, repo, "ACCOUNT12345", 50075)
	if created.ID == 0 {
		t.Fatal("created account has no id")
	}
	if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
		t.Fatal("timestamps not set")
	}

	// Duplicate bank_account_no is rejected
	_, err := repo.CreateAccount(ctx, core.Account{
		BankAccountNo: "ACCOUNT12345",
		BankName:      "OtherBank",
		AccountType:   core.Savings,
		HolderName:    "Other User",
		Currency:      core.USD,
	})
	if !errors.Is(err, ErrDuplicateAccountNo) {
		t.Fatalf("duplicate account no: got %v", err)
	}

	got, err := repo.GetAccount(ctx, created.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.BankAccountNo != "ACCOUNT12345" || got.Balance.Cents != 50075 {
		t.Fatalf("got %+v", got)
	}

	updated, err := repo.UpdateAccount(ctx, created.ID, AccountUpdate{
		BankName:     ptr("RenamedBank"),
		BalanceCents: ptr(int64(100000)),
	})
	if err != nil {
		t.Fatalf("update account: %v", err)
	}
	if updated.BankName != "RenamedBank" || updated.Balance.Cents != 100000 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.HolderName != "Test User" {
		t.Fatalf("untouched field changed: %+v", updated)
	}

	if err := repo.DeleteAccount(ctx, created.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}
	if _, err := repo.GetAccount(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted account still readable: %v", err)
	}
	if err := repo.DeleteAccount(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: got %v", err)
	}
}

func TestListAccountsPagination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		seedAccount(t, repo, fmt.Sprintf("ACCOUNT%05d", i), int64(i)*100)
	}

	page, err := repo.ListAccounts(ctx, core.Page{Skip: 0, Limit: 3})
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("page length = %d", len(page))
	}

	rest, err := repo.ListAccounts(ctx, core.Page{Skip: 3, Limit: 3})
	if err != nil {
		t.Fatalf("list accounts: %v", err)
	}
	if len(rest) != 2 {
		t.Fatalf("second page length = %d", len(rest))
	}

	empty, err := repo.ListAccounts(ctx, core.Page{Skip: 100, Limit: 10})
	if err != nil {
		t.Fatalf("list past end: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("expected empty page, got %d rows", len(empty))
	}
}

func TestCreateCashFlowReferentialError(t *testing.T) {
	repo := newTestRepo(t)

	_, err := repo.CreateCashFlow(context.Background(), core.CashFlow{
		AccountID: 999,
		TxnType:   core.Credit,
		Amount:    core.Money{Cents: 100},
	})
	if !errors.Is(err, ErrAccountMissing) {
		t.Fatalf("missing account: got %v", err)
	}
}

func TestCashFlowUpdateAndDelete(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "ACCOUNT12345", 100000)
	cf := seedCashFlow(t, repo, acc.ID, core.Debit, "grocery", 20000)

	updated, err := repo.UpdateCashFlow(ctx, cf.ID, CashFlowUpdate{
		Category:    ptr("food"),
		AmountCents: ptr(int64(25000)),
	})
	if err != nil {
		t.Fatalf("update cashflow: %v", err)
	}
	if updated.Category != "food" || updated.Amount.Cents != 25000 {
		t.Fatalf("update not applied: %+v", updated)
	}
	if updated.TxnType != core.Debit {
		t.Fatalf("untouched field changed: %+v", updated)
	}

	// Balance is a display field; cashflow writes never touch it
	got, err := repo.GetAccount(ctx, acc.ID)
	if err != nil {
		t.Fatalf("get account: %v", err)
	}
	if got.Balance.Cents != 100000 {
		t.Fatalf("balance changed by cashflow write: %d", got.Balance.Cents)
	}

	if err := repo.DeleteCashFlow(ctx, cf.ID); err != nil {
		t.Fatalf("delete cashflow: %v", err)
	}
	if _, err := repo.GetCashFlow(ctx, cf.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("deleted cashflow still readable: %v", err)
	}
}

func TestListCashFlowsFilterCombination(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a1 := seedAccount(t, repo, "ACCOUNT00001", 0)
	a2 := seedAccount(t, repo, "ACCOUNT00002", 0)

	seedCashFlow(t, repo, a1.ID, core.Credit, "salary", 50000)
	seedCashFlow(t, repo, a1.ID, core.Debit, "grocery", 20000)
	seedCashFlow(t, repo, a1.ID, core.Debit, "coffee", 5000)
	seedCashFlow(t, repo, a2.ID, core.Debit, "grocery", 30000)

	cases := []struct {
		name      string
		filter    core.Filter
		wantTotal int64
	}{
		{"no filter", core.Filter{}, 4},
		{"by account", core.Filter{AccountID: &a1.ID}, 3},
		{"by type", core.Filter{TxnType: ptr(core.Debit)}, 3},
		{"by category", core.Filter{Category: ptr("grocery")}, 2},
		{"account AND type", core.Filter{AccountID: &a1.ID, TxnType: ptr(core.Debit)}, 2},
		{"account AND type AND category", core.Filter{AccountID: &a1.ID, TxnType: ptr(core.Debit), Category: ptr("grocery")}, 1},
		{"amount above", core.Filter{MinAmount: &core.Money{Cents: 20000}}, 2},
		{"amount below", core.Filter{MaxAmount: &core.Money{Cents: 20000}}, 1},
		{"amount band", core.Filter{MinAmount: &core.Money{Cents: 5000}, MaxAmount: &core.Money{Cents: 50000}}, 2},
		{"unknown account", core.Filter{AccountID: ptr(int64(999))}, 0},
		{"unknown category", core.Filter{Category: ptr("none")}, 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			page, err := repo.ListCashFlows(ctx, c.filter, core.Page{Skip: 0, Limit: core.MaxPageLimit})
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if page.TotalCount != c.wantTotal {
				t.Errorf("total_count = %d, want %d", page.TotalCount, c.wantTotal)
			}
			// count(filters) equals the length of the fully iterated result
			if int64(len(page.Rows)) != c.wantTotal {
				t.Errorf("rows = %d, want %d", len(page.Rows), c.wantTotal)
			}
		})
	}
}

func TestListCashFlowsExactCategoryMatch(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "ACCOUNT00001", 0)
	seedCashFlow(t, repo, acc.ID, core.Debit, "grocery", 100)
	seedCashFlow(t, repo, acc.ID, core.Debit, "grocery-market", 100)

	page, err := repo.ListCashFlows(ctx, core.Filter{Category: ptr("grocery")}, core.Page{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if page.TotalCount != 1 {
		t.Fatalf("exact match expected 1 row, got %d", page.TotalCount)
	}
}

func TestListCashFlowsPaginationReconstruction(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "ACCOUNT00001", 0)
	const n = 25
	for i := 0; i < n; i++ {
		seedCashFlow(t, repo, acc.ID, core.Debit, "bulk", int64(100+i))
	}

	full, err := repo.ListCashFlows(ctx, core.Filter{}, core.Page{Skip: 0, Limit: core.MaxPageLimit})
	if err != nil {
		t.Fatalf("full list: %v", err)
	}
	if full.TotalCount != n || len(full.Rows) != n {
		t.Fatalf("full list: total=%d rows=%d", full.TotalCount, len(full.Rows))
	}

	// Newest first: ids strictly descending under the created_at,id tie-break
	for i := 1; i < len(full.Rows); i++ {
		if full.Rows[i].ID >= full.Rows[i-1].ID {
			t.Fatalf("ordering violated at %d: %d then %d", i, full.Rows[i-1].ID, full.Rows[i].ID)
		}
	}

	// Concatenated pages reconstruct the full set, no duplicates, no omissions
	const k = 10
	var reconstructed []int64
	for skip := 0; skip < n+k; skip += k {
		page, err := repo.ListCashFlows(ctx, core.Filter{}, core.Page{Skip: skip, Limit: k})
		if err != nil {
			t.Fatalf("page skip=%d: %v", skip, err)
		}
		if len(page.Rows) > k {
			t.Fatalf("page exceeds limit: %d", len(page.Rows))
		}
		if page.TotalCount != n {
			t.Fatalf("page total = %d, want %d", page.TotalCount, n)
		}
		for _, row := range page.Rows {
			reconstructed = append(reconstructed, row.ID)
		}
	}
	if len(reconstructed) != n {
		t.Fatalf("reconstructed %d rows, want %d", len(reconstructed), n)
	}
	for i, row := range full.Rows {
		if reconstructed[i] != row.ID {
			t.Fatalf("row %d: reconstructed id %d != full id %d", i, reconstructed[i], row.ID)
		}
	}

	// Skip past the end yields an empty page, not an error
	past, err := repo.ListCashFlows(ctx, core.Filter{}, core.Page{Skip: 1000, Limit: k})
	if err != nil {
		t.Fatalf("skip past end: %v", err)
	}
	if len(past.Rows) != 0 || past.TotalCount != n {
		t.Fatalf("past-end page: rows=%d total=%d", len(past.Rows), past.TotalCount)
	}

	// Stable ordering across identical queries
	again, err := repo.ListCashFlows(ctx, core.Filter{}, core.Page{Skip: 0, Limit: core.MaxPageLimit})
	if err != nil {
		t.Fatalf("re-run list: %v", err)
	}
	for i := range full.Rows {
		if again.Rows[i].ID != full.Rows[i].ID {
			t.Fatalf("unstable ordering at %d", i)
		}
	}
}

func TestListCashFlowsAccountEnrichment(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "ACCOUNT12345", 0)
	seedCashFlow(t, repo, acc.ID, core.Credit, "salary", 50000)

	page, err := repo.ListCashFlows(ctx, core.Filter{}, core.Page{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	row := page.Rows[0]
	if row.BankAccountNo != "ACCOUNT12345" || row.Currency != core.INR {
		t.Fatalf("enrichment missing: %+v", row)
	}
}

func TestDashboardStatsExampleScenario(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	// Account A1: balance 1000, cashflows credit 500 salary,
	// debit 200 grocery, debit 50 coffee.
	acc := seedAccount(t, repo, "ACCOUNTA0001", 100000)
	seedCashFlow(t, repo, acc.ID, core.Credit, "salary", 50000)
	seedCashFlow(t, repo, acc.ID, core.Debit, "grocery", 20000)
	seedCashFlow(t, repo, acc.ID, core.Debit, "coffee", 5000)

	stats, err := repo.DashboardStats(ctx, core.Filter{})
	if err != nil {
		t.Fatalf("dashboard stats: %v", err)
	}

	if stats.TotalAccounts != 1 {
		t.Errorf("total_accounts = %d", stats.TotalAccounts)
	}
	if stats.TotalBalanceCents != 100000 {
		t.Errorf("total_balance = %d", stats.TotalBalanceCents)
	}
	if stats.TotalCreditsCents != 50000 {
		t.Errorf("total_credits = %d", stats.TotalCreditsCents)
	}
	if stats.TotalDebitsCents != 25000 {
		t.Errorf("total_debits = %d", stats.TotalDebitsCents)
	}
	if stats.TotalCreditsCount != 1 || stats.TotalDebitsCount != 2 {
		t.Errorf("counts = %d credits, %d debits", stats.TotalCreditsCount, stats.TotalDebitsCount)
	}
	if stats.TotalCashflows != 3 {
		t.Errorf("total_cashflows = %d", stats.TotalCashflows)
	}
	if len(stats.Recent) != 3 {
		t.Fatalf("recent = %d entries", len(stats.Recent))
	}
	// Newest first: coffee, grocery, salary
	if stats.Recent[0].Category != "coffee" || stats.Recent[2].Category != "salary" {
		t.Errorf("recent ordering: %s, %s, %s",
			stats.Recent[0].Category, stats.Recent[1].Category, stats.Recent[2].Category)
	}

	// credit_count + debit_count == total_matching_count and the sums add up
	if stats.TotalCreditsCount+stats.TotalDebitsCount != stats.TotalCashflows {
		t.Error("count identity violated")
	}
	if stats.TotalCreditsCents+stats.TotalDebitsCents != 75000 {
		t.Error("sum identity violated")
	}

	// Filtered page matches the spec's debit example
	page, err := repo.ListCashFlows(ctx, core.Filter{TxnType: ptr(core.Debit)}, core.Page{Skip: 0, Limit: 1})
	if err != nil {
		t.Fatalf("debit list: %v", err)
	}
	if len(page.Rows) != 1 || page.TotalCount != 2 {
		t.Fatalf("debit page: rows=%d total=%d", len(page.Rows), page.TotalCount)
	}
	if page.Rows[0].Category != "coffee" || page.Rows[0].Amount.Cents != 5000 {
		t.Fatalf("most recent debit: %+v", page.Rows[0])
	}
}

func TestDashboardStatsScopedAndZeroSums(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	a1 := seedAccount(t, repo, "ACCOUNTA0001", 100000)
	a2 := seedAccount(t, repo, "ACCOUNTB0002", 50000)
	seedCashFlow(t, repo, a1.ID, core.Credit, "salary", 50000)
	seedCashFlow(t, repo, a2.ID, core.Debit, "rent", 30000)

	// Scope to a1: debit side must be zero, not missing
	stats, err := repo.DashboardStats(ctx, core.Filter{AccountID: &a1.ID})
	if err != nil {
		t.Fatalf("scoped stats: %v", err)
	}
	if stats.TotalDebitsCents != 0 || stats.TotalDebitsCount != 0 {
		t.Errorf("debit side not zero: %d/%d", stats.TotalDebitsCents, stats.TotalDebitsCount)
	}
	if stats.TotalCreditsCents != 50000 || stats.TotalCashflows != 1 {
		t.Errorf("credit side: %d, cashflows %d", stats.TotalCreditsCents, stats.TotalCashflows)
	}
	// Balance ignores the transaction scope
	if stats.TotalBalanceCents != 150000 || stats.TotalAccounts != 2 {
		t.Errorf("account totals scoped unexpectedly: %d/%d", stats.TotalBalanceCents, stats.TotalAccounts)
	}
	if len(stats.Recent) != 1 || stats.Recent[0].AccountID != a1.ID {
		t.Errorf("recent not scoped: %+v", stats.Recent)
	}
}

func TestDeleteAccountCascades(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	acc := seedAccount(t, repo, "ACCOUNT00001", 1000)
	other := seedAccount(t, repo, "ACCOUNT00002", 1000)
	seedCashFlow(t, repo, acc.ID, core.Credit, "salary", 50000)
	seedCashFlow(t, repo, acc.ID, core.Debit, "grocery", 20000)
	seedCashFlow(t, repo, other.ID, core.Debit, "rent", 30000)

	if err := repo.DeleteAccount(ctx, acc.ID); err != nil {
		t.Fatalf("delete account: %v", err)
	}

	page, err := repo.ListCashFlows(ctx, core.Filter{AccountID: &acc.ID}, core.Page{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("scoped list: %v", err)
	}
	if page.TotalCount != 0 || len(page.Rows) != 0 {
		t.Fatalf("cascade failed: total=%d rows=%d", page.TotalCount, len(page.Rows))
	}

	stats, err := repo.DashboardStats(ctx, core.Filter{AccountID: &acc.ID})
	if err != nil {
		t.Fatalf("scoped stats: %v", err)
	}
	if stats.TotalCashflows != 0 || stats.TotalCreditsCents != 0 || stats.TotalDebitsCents != 0 {
		t.Fatalf("scoped sums not zero after cascade: %+v", stats)
	}

	// Other account's rows survive
	rest, err := repo.ListCashFlows(ctx, core.Filter{}, core.Page{Skip: 0, Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if rest.TotalCount != 1 {
		t.Fatalf("unrelated rows affected: total=%d", rest.TotalCount)
	}
}

func TestAuditLog(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, action := range []string{"created", "updated", "deleted"} {
		if err := repo.RecordAuditEvent(ctx, "cashflow", int64(i+1), action); err != nil {
			t.Fatalf("record audit event: %v", err)
		}
	}

	entries, err := repo.ListAuditEvents(ctx, 10)
	if err != nil {
		t.Fatalf("list audit events: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("entries = %d", len(entries))
	}
	if entries[0].Action != "deleted" || entries[2].Action != "created" {
		t.Fatalf("ordering: %+v", entries)
	}
}
