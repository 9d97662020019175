// Filtered listing and dashboard aggregation over the cashflow table.
//
// Both the page select and the total count are driven by the same WHERE
// clause built once per request, so a page and its total_count can never
// disagree about which rows match.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"cashflow/internal/core"
)

// CashFlowWithAccount is a cashflow row enriched with the owning account's
// display fields for list and dashboard responses.
type CashFlowWithAccount struct {
	core.CashFlow
	BankAccountNo string
	Currency      core.Currency
}

// CashFlowPage is one window of a filtered, ordered cashflow listing plus
// the total match count ignoring skip/limit.
type CashFlowPage struct {
	Rows       []CashFlowWithAccount
	TotalCount int64
}

// DashboardStats aggregates cashflow rows matching a filter scope. Balance
// and account count always cover all accounts, regardless of scope.
type DashboardStats struct {
	TotalAccounts     int64
	TotalCashflows    int64
	TotalCreditsCount int64
	TotalDebitsCount  int64
	TotalBalanceCents int64
	TotalCreditsCents int64
	TotalDebitsCents  int64
	Recent            []CashFlowWithAccount
}

// buildCashFlowWhere translates a filter scope into a WHERE clause over the
// cashflow table aliased as cf. Absent predicates add no condition; present
// ones AND together. Amount bounds are exclusive (gt/lt).
func buildCashFlowWhere(f core.Filter) (string, []any) {
	conds := []string{}
	args := []any{}

	if f.AccountID != nil {
		conds = append(conds, "cf.account_id = ?")
		args = append(args, *f.AccountID)
	}
	if f.Category != nil {
		conds = append(conds, "cf.category = ?")
		args = append(args, *f.Category)
	}
	if f.TxnType != nil {
		conds = append(conds, "cf.txn_type = ?")
		args = append(args, string(*f.TxnType))
	}
	if f.MinAmount != nil {
		conds = append(conds, "cf.amount_cents > ?")
		args = append(args, f.MinAmount.Cents)
	}
	if f.MaxAmount != nil {
		conds = append(conds, "cf.amount_cents < ?")
		args = append(args, f.MaxAmount.Cents)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

const cashFlowSelect = `
	SELECT cf.id, cf.account_id, cf.txn_type, cf.category, cf.amount_cents, cf.description,
	       cf.created_at, cf.updated_at, a.bank_account_no, a.currency
	FROM cashflow cf
	JOIN account a ON a.id = cf.account_id`

// ListCashFlows returns one page of cashflow rows matching the filter,
// newest first (created_at DESC, id DESC as tie-break), along with the
// total count of matching rows. A skip past the end yields an empty page.
func (r *Repository) ListCashFlows(ctx context.Context, f core.Filter, page core.Page) (CashFlowPage, error) {
	where, args := buildCashFlowWhere(f)

	var total int64
	countQuery := "SELECT COUNT(*) FROM cashflow cf" + where
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return CashFlowPage{}, fmt.Errorf("count cashflows: %w", err)
	}

	query := cashFlowSelect + where + `
	ORDER BY cf.created_at DESC, cf.id DESC
	LIMIT ? OFFSET ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, page.Limit, page.Skip)...)
	if err != nil {
		return CashFlowPage{}, fmt.Errorf("list cashflows: %w", err)
	}
	defer rows.Close()

	result := CashFlowPage{Rows: []CashFlowWithAccount{}, TotalCount: total}
	for rows.Next() {
		row, err := scanCashFlowWithAccount(rows)
		if err != nil {
			return CashFlowPage{}, err
		}
		result.Rows = append(result.Rows, row)
	}
	return result, rows.Err()
}

// DashboardStats computes the aggregate view for a filter scope: per-type
// sums and counts over matching cashflow rows, overall account totals, and
// the most recent matching transactions.
func (r *Repository) DashboardStats(ctx context.Context, f core.Filter) (DashboardStats, error) {
	var stats DashboardStats

	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(balance_cents), 0) FROM account`).
		Scan(&stats.TotalAccounts, &stats.TotalBalanceCents)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("account totals: %w", err)
	}

	where, args := buildCashFlowWhere(f)
	err = r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN cf.txn_type = 'credit' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN cf.txn_type = 'debit' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN cf.txn_type = 'credit' THEN cf.amount_cents ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN cf.txn_type = 'debit' THEN cf.amount_cents ELSE 0 END), 0)
		FROM cashflow cf`+where, args...).
		Scan(&stats.TotalCashflows, &stats.TotalCreditsCount, &stats.TotalDebitsCount,
			&stats.TotalCreditsCents, &stats.TotalDebitsCents)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("cashflow totals: %w", err)
	}

	// Same scope and ordering as ListCashFlows, so the recent list is always
	// a prefix of the rows the aggregates counted.
	query := cashFlowSelect + where + `
	ORDER BY cf.created_at DESC, cf.id DESC
	LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, append(args, core.RecentTransactionsLimit)...)
	if err != nil {
		return DashboardStats{}, fmt.Errorf("recent cashflows: %w", err)
	}
	defer rows.Close()

	stats.Recent = []CashFlowWithAccount{}
	for rows.Next() {
		row, err := scanCashFlowWithAccount(rows)
		if err != nil {
			return DashboardStats{}, err
		}
		stats.Recent = append(stats.Recent, row)
	}
	return stats, rows.Err()
}

func scanCashFlowWithAccount(rows *sql.Rows) (CashFlowWithAccount, error) {
	var row CashFlowWithAccount
	var txnType, currency string
	var category, description sql.NullString
	err := rows.Scan(&row.ID, &row.AccountID, &txnType, &category, &row.Amount.Cents, &description,
		&row.CreatedAt, &row.UpdatedAt, &row.BankAccountNo, &currency)
	if err != nil {
		return CashFlowWithAccount{}, fmt.Errorf("scan cashflow row: %w", err)
	}
	row.TxnType = core.TxnType(txnType)
	row.Category = category.String
	row.Description = description.String
	row.Currency = core.Currency(currency)
	return row, nil
}
