package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cashflow/internal/core"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound           = errors.New("record not found")
	ErrDuplicateAccountNo = errors.New("bank account number already exists")
	ErrAccountMissing     = errors.New("referenced account does not exist")
)

type Repository struct {
	db *sql.DB
}

func New(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// foreign_keys must be on for the account -> cashflow cascade delete
	dsn := "file:" + dbPath + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// Ping reports whether the database is reachable.
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// mapConstraintError translates sqlite constraint violations into sentinel
// errors the HTTP layer can classify.
func mapConstraintError(err error) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: account.bank_account_no"):
		return ErrDuplicateAccountNo
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return ErrAccountMissing
	}
	return err
}

// CreateAccount inserts a new account and returns it with generated fields.
func (r *Repository) CreateAccount(ctx context.Context, a core.Account) (core.Account, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO account (bank_account_no, bank_name, account_type, holder_name, currency, balance_cents, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.BankAccountNo, a.BankName, string(a.AccountType), a.HolderName, string(a.Currency), a.Balance.Cents, now, now)
	if err != nil {
		return core.Account{}, fmt.Errorf("create account: %w", mapConstraintError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.Account{}, fmt.Errorf("account insert id: %w", err)
	}

	slog.InfoContext(ctx, "Account created",
		"id", id,
		"bank_account_no", a.BankAccountNo,
		"bank_name", a.BankName)

	return r.GetAccount(ctx, id)
}

// GetAccount returns a single account by id.
func (r *Repository) GetAccount(ctx context.Context, id int64) (core.Account, error) {
	var a core.Account
	var accountType, currency string
	err := r.db.QueryRowContext(ctx, `
		SELECT id, bank_account_no, bank_name, account_type, holder_name, currency, balance_cents, created_at, updated_at
		FROM account WHERE id = ?`, id).
		Scan(&a.ID, &a.BankAccountNo, &a.BankName, &accountType, &a.HolderName, &currency, &a.Balance.Cents, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Account{}, ErrNotFound
	}
	if err != nil {
		return core.Account{}, fmt.Errorf("get account %d: %w", id, err)
	}
	a.AccountType = core.AccountType(accountType)
	a.Currency = core.Currency(currency)
	return a, nil
}

// ListAccounts returns a page of accounts ordered by id.
func (r *Repository) ListAccounts(ctx context.Context, page core.Page) ([]core.Account, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, bank_account_no, bank_name, account_type, holder_name, currency, balance_cents, created_at, updated_at
		FROM account ORDER BY id LIMIT ? OFFSET ?`, page.Limit, page.Skip)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []core.Account{}
	for rows.Next() {
		var a core.Account
		var accountType, currency string
		if err := rows.Scan(&a.ID, &a.BankAccountNo, &a.BankName, &accountType, &a.HolderName, &currency, &a.Balance.Cents, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		a.AccountType = core.AccountType(accountType)
		a.Currency = core.Currency(currency)
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// AccountUpdate carries the optional fields of a partial account edit.
type AccountUpdate struct {
	BankAccountNo *string
	BankName      *string
	AccountType   *core.AccountType
	HolderName    *string
	Currency      *core.Currency
	BalanceCents  *int64
}

// UpdateAccount applies a partial update and returns the stored row.
// Fields left nil are untouched.
func (r *Repository) UpdateAccount(ctx context.Context, id int64, upd AccountUpdate) (core.Account, error) {
	if _, err := r.GetAccount(ctx, id); err != nil {
		return core.Account{}, err
	}

	sets := []string{}
	args := []any{}
	appendSet := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.BankAccountNo != nil {
		appendSet("bank_account_no", *upd.BankAccountNo)
	}
	if upd.BankName != nil {
		appendSet("bank_name", *upd.BankName)
	}
	if upd.AccountType != nil {
		appendSet("account_type", string(*upd.AccountType))
	}
	if upd.HolderName != nil {
		appendSet("holder_name", *upd.HolderName)
	}
	if upd.Currency != nil {
		appendSet("currency", string(*upd.Currency))
	}
	if upd.BalanceCents != nil {
		appendSet("balance_cents", *upd.BalanceCents)
	}

	if len(sets) > 0 {
		appendSet("updated_at", time.Now().UTC())
		args = append(args, id)
		query := "UPDATE account SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return core.Account{}, fmt.Errorf("update account %d: %w", id, mapConstraintError(err))
		}
	}

	return r.GetAccount(ctx, id)
}

// DeleteAccount removes an account; its cashflow rows go with it via the
// ON DELETE CASCADE foreign key.
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM account WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete account %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Account deleted", "id", id)
	return nil
}

// CreateCashFlow inserts a new cashflow row. The owning account must exist;
// a foreign key violation surfaces as ErrAccountMissing.
func (r *Repository) CreateCashFlow(ctx context.Context, cf core.CashFlow) (core.CashFlow, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO cashflow (account_id, txn_type, category, amount_cents, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		cf.AccountID, string(cf.TxnType), nullString(cf.Category), cf.Amount.Cents, nullString(cf.Description), now, now)
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("create cashflow: %w", mapConstraintError(err))
	}

	id, err := res.LastInsertId()
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("cashflow insert id: %w", err)
	}

	slog.InfoContext(ctx, "Cashflow created",
		"id", id,
		"account_id", cf.AccountID,
		"txn_type", cf.TxnType,
		"amount_cents", cf.Amount.Cents)

	return r.GetCashFlow(ctx, id)
}

// GetCashFlow returns a single cashflow row by id.
func (r *Repository) GetCashFlow(ctx context.Context, id int64) (core.CashFlow, error) {
	var cf core.CashFlow
	var txnType string
	var category, description sql.NullString
	err := r.db.QueryRowContext(ctx, `
		SELECT id, account_id, txn_type, category, amount_cents, description, created_at, updated_at
		FROM cashflow WHERE id = ?`, id).
		Scan(&cf.ID, &cf.AccountID, &txnType, &category, &cf.Amount.Cents, &description, &cf.CreatedAt, &cf.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return core.CashFlow{}, ErrNotFound
	}
	if err != nil {
		return core.CashFlow{}, fmt.Errorf("get cashflow %d: %w", id, err)
	}
	cf.TxnType = core.TxnType(txnType)
	cf.Category = category.String
	cf.Description = description.String
	return cf, nil
}

// CashFlowUpdate carries the optional fields of a partial cashflow edit.
type CashFlowUpdate struct {
	AccountID   *int64
	TxnType     *core.TxnType
	Category    *string
	AmountCents *int64
	Description *string
}

// UpdateCashFlow applies a partial update and returns the stored row.
// Account balance is never adjusted here; balance is a display field.
func (r *Repository) UpdateCashFlow(ctx context.Context, id int64, upd CashFlowUpdate) (core.CashFlow, error) {
	if _, err := r.GetCashFlow(ctx, id); err != nil {
		return core.CashFlow{}, err
	}

	sets := []string{}
	args := []any{}
	appendSet := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}

	if upd.AccountID != nil {
		appendSet("account_id", *upd.AccountID)
	}
	if upd.TxnType != nil {
		appendSet("txn_type", string(*upd.TxnType))
	}
	if upd.Category != nil {
		appendSet("category", nullString(*upd.Category))
	}
	if upd.AmountCents != nil {
		appendSet("amount_cents", *upd.AmountCents)
	}
	if upd.Description != nil {
		appendSet("description", nullString(*upd.Description))
	}

	if len(sets) > 0 {
		appendSet("updated_at", time.Now().UTC())
		args = append(args, id)
		query := "UPDATE cashflow SET " + strings.Join(sets, ", ") + " WHERE id = ?"
		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return core.CashFlow{}, fmt.Errorf("update cashflow %d: %w", id, mapConstraintError(err))
		}
	}

	return r.GetCashFlow(ctx, id)
}

// DeleteCashFlow removes a single cashflow row.
func (r *Repository) DeleteCashFlow(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cashflow WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete cashflow %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete cashflow %d: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}

	slog.InfoContext(ctx, "Cashflow deleted", "id", id)
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
