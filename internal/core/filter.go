package core

import "errors"

const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000

	// RecentTransactionsLimit bounds the dashboard's recent-activity list.
	RecentTransactionsLimit = 5
)

var (
	ErrNegativeSkip   = errors.New("skip must be non-negative")
	ErrInvalidLimit   = errors.New("limit must be between 1 and 1000")
	ErrAmountBounds   = errors.New("greater-than amount cannot exceed less-than amount")
	ErrInvalidAccount = errors.New("account id must be a positive integer")
)

// Filter is the optional predicate set narrowing a cashflow query.
// Nil fields impose no constraint; set fields combine with logical AND.
// Amount bounds are exclusive, matching the original gt/lt semantics.
type Filter struct {
	AccountID *int64
	Category  *string
	TxnType   *TxnType
	MinAmount *Money
	MaxAmount *Money
}

func (f Filter) Validate() error {
	if f.AccountID != nil && *f.AccountID <= 0 {
		return ErrInvalidAccount
	}
	if f.TxnType != nil {
		if _, err := ParseTxnType(string(*f.TxnType)); err != nil {
			return err
		}
	}
	if f.MinAmount != nil {
		if err := f.MinAmount.Validate(); err != nil {
			return err
		}
	}
	if f.MaxAmount != nil {
		if err := f.MaxAmount.Validate(); err != nil {
			return err
		}
	}
	if f.MinAmount != nil && f.MaxAmount != nil && f.MinAmount.Cents > f.MaxAmount.Cents {
		return ErrAmountBounds
	}
	return nil
}

// Page describes a skip/limit window over a filtered result set.
type Page struct {
	Skip  int
	Limit int
}

func (p Page) Validate() error {
	if p.Skip < 0 {
		return ErrNegativeSkip
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return ErrInvalidLimit
	}
	return nil
}

// Number returns the 1-based page number implied by skip and limit.
func (p Page) Number() int {
	if p.Limit <= 0 {
		return 1
	}
	return p.Skip/p.Limit + 1
}
