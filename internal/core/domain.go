package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	Credit TxnType = "credit"
	Debit  TxnType = "debit"
)

const (
	Savings        AccountType = "savings"
	CurrentAccount AccountType = "current_account"
	FDAccount      AccountType = "fd_account"
	RDAccount      AccountType = "rd_account"
	DematAccount   AccountType = "demat_account"
)

const (
	INR Currency = "INR"
	USD Currency = "USD"
)

type (
	TxnType     string
	AccountType string
	Currency    string

	// Account is a bank account. Balance is an independently maintained
	// display value; it is never recomputed from cashflow rows.
	Account struct {
		ID            int64
		BankAccountNo string
		BankName      string
		AccountType   AccountType
		HolderName    string
		Currency      Currency
		Balance       Money
		CreatedAt     time.Time
		UpdatedAt     time.Time
	}

	// CashFlow is a single credit or debit event tied to an account.
	CashFlow struct {
		ID          int64
		AccountID   int64
		TxnType     TxnType
		Category    string
		Amount      Money
		Description string
		CreatedAt   time.Time
		UpdatedAt   time.Time
	}
)

var (
	ErrInvalidTxnType     = errors.New("invalid transaction type, must be 'credit' or 'debit'")
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrInvalidCurrency    = errors.New("invalid currency")
	ErrInvalidAccountNo   = errors.New("bank account number must be 10-50 characters")
	ErrInvalidBankName    = errors.New("bank name must be 3-50 characters")
	ErrEmptyHolderName    = errors.New("holder name cannot be empty")
	ErrNegativeBalance    = errors.New("balance shouldn't be less than 0")
	ErrMissingAccountID   = errors.New("account id is required")
)

// ParseTxnType normalizes and validates a transaction type string.
func ParseTxnType(s string) (TxnType, error) {
	switch TxnType(strings.ToLower(strings.TrimSpace(s))) {
	case Credit:
		return Credit, nil
	case Debit:
		return Debit, nil
	default:
		return "", ErrInvalidTxnType
	}
}

// ParseAccountType validates an account type string, defaulting to savings
// when empty.
func ParseAccountType(s string) (AccountType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Savings, nil
	}
	switch AccountType(s) {
	case Savings, CurrentAccount, FDAccount, RDAccount, DematAccount:
		return AccountType(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidAccountType, s)
	}
}

// ParseCurrency validates a currency code, defaulting to INR when empty.
func ParseCurrency(s string) (Currency, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return INR, nil
	}
	switch Currency(s) {
	case INR, USD:
		return Currency(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, s)
	}
}

// NormalizeAccountNo trims and uppercases a bank account number.
func NormalizeAccountNo(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func (a Account) Validate() error {
	if n := len(a.BankAccountNo); n < 10 || n > 50 {
		return ErrInvalidAccountNo
	}
	if n := len(strings.TrimSpace(a.BankName)); n < 3 || n > 50 {
		return ErrInvalidBankName
	}
	if strings.TrimSpace(a.HolderName) == "" {
		return ErrEmptyHolderName
	}
	if _, err := ParseAccountType(string(a.AccountType)); err != nil {
		return err
	}
	if _, err := ParseCurrency(string(a.Currency)); err != nil {
		return err
	}
	if a.Balance.Cents < 0 {
		return ErrNegativeBalance
	}
	return nil
}

func (cf CashFlow) Validate() error {
	if cf.AccountID <= 0 {
		return ErrMissingAccountID
	}
	if _, err := ParseTxnType(string(cf.TxnType)); err != nil {
		return err
	}
	if err := cf.Amount.Validate(); err != nil {
		return err
	}
	if len(cf.Description) > 200 {
		return errors.New("description too long (max 200 characters)")
	}
	if len(cf.Category) > 50 {
		return errors.New("category too long (max 50 characters)")
	}
	return nil
}
