package http

import (
	"time"

	"cashflow/internal/core"
	"cashflow/internal/storage"
)

// Wire shapes for the JSON API. Amounts cross the boundary as major-unit
// decimals; internally everything is cents.

type accountResponse struct {
	ID            int64     `json:"id"`
	BankAccountNo string    `json:"bank_account_no"`
	BankName      string    `json:"bank_name"`
	AccountType   string    `json:"account_type"`
	HolderName    string    `json:"holder_name"`
	Currency      string    `json:"currency"`
	Balance       float64   `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		BankAccountNo: a.BankAccountNo,
		BankName:      a.BankName,
		AccountType:   string(a.AccountType),
		HolderName:    a.HolderName,
		Currency:      string(a.Currency),
		Balance:       a.Balance.Float(),
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}

type createAccountRequest struct {
	BankAccountNo string   `json:"bank_account_no"`
	BankName      string   `json:"bank_name"`
	AccountType   string   `json:"account_type"`
	HolderName    string   `json:"holder_name"`
	Currency      string   `json:"currency"`
	Balance       *float64 `json:"balance"`
}

type updateAccountRequest struct {
	BankAccountNo *string  `json:"bank_account_no"`
	BankName      *string  `json:"bank_name"`
	AccountType   *string  `json:"account_type"`
	HolderName    *string  `json:"holder_name"`
	Currency      *string  `json:"currency"`
	Balance       *float64 `json:"balance"`
}

type cashFlowResponse struct {
	ID          int64     `json:"id"`
	AccountID   int64     `json:"account_id"`
	TxnType     string    `json:"txn_type"`
	Category    string    `json:"category,omitempty"`
	Amount      float64   `json:"amount"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toCashFlowResponse(cf core.CashFlow) cashFlowResponse {
	return cashFlowResponse{
		ID:          cf.ID,
		AccountID:   cf.AccountID,
		TxnType:     string(cf.TxnType),
		Category:    cf.Category,
		Amount:      cf.Amount.Float(),
		Description: cf.Description,
		CreatedAt:   cf.CreatedAt,
		UpdatedAt:   cf.UpdatedAt,
	}
}

// cashFlowListItem adds the owning account's display fields to a list row.
type cashFlowListItem struct {
	cashFlowResponse
	BankAccountNo string `json:"bank_account_no"`
	Currency      string `json:"currency"`
}

func toCashFlowListItems(rows []storage.CashFlowWithAccount) []cashFlowListItem {
	items := make([]cashFlowListItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, cashFlowListItem{
			cashFlowResponse: toCashFlowResponse(row.CashFlow),
			BankAccountNo:    row.BankAccountNo,
			Currency:         string(row.Currency),
		})
	}
	return items
}

type createCashFlowRequest struct {
	AccountID   int64   `json:"account_id"`
	TxnType     string  `json:"txn_type"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Description string  `json:"description"`
}

type updateCashFlowRequest struct {
	AccountID   *int64   `json:"account_id"`
	TxnType     *string  `json:"txn_type"`
	Category    *string  `json:"category"`
	Amount      *float64 `json:"amount"`
	Description *string  `json:"description"`
}

// cashFlowPageResponse is the listing envelope: one page of rows plus
// enough pagination metadata to reconstruct the full result set.
type cashFlowPageResponse struct {
	Data       []cashFlowListItem `json:"data"`
	PageSize   int                `json:"page_size"`
	PageNumber int                `json:"page_number"`
	TotalCount int64              `json:"total_count"`
}

// dashboardRequest carries the optional filter scope for the dashboard.
// Amount bounds are exclusive (strictly greater / strictly less than).
type dashboardRequest struct {
	AccountID *int64   `json:"account_id"`
	Category  *string  `json:"category"`
	TxnType   *string  `json:"txn_type"`
	GtAmount  *float64 `json:"gt_amount"`
	LtAmount  *float64 `json:"lt_amount"`
}

func (req dashboardRequest) toFilter() (core.Filter, error) {
	var f core.Filter
	f.AccountID = req.AccountID
	if req.Category != nil {
		f.Category = req.Category
	}
	if req.TxnType != nil {
		t, err := core.ParseTxnType(*req.TxnType)
		if err != nil {
			return core.Filter{}, err
		}
		f.TxnType = &t
	}
	if req.GtAmount != nil {
		m := core.MoneyFromFloat(*req.GtAmount)
		f.MinAmount = &m
	}
	if req.LtAmount != nil {
		m := core.MoneyFromFloat(*req.LtAmount)
		f.MaxAmount = &m
	}
	if err := f.Validate(); err != nil {
		return core.Filter{}, err
	}
	return f, nil
}

type dashboardTotalCounts struct {
	TotalAccounts     int64 `json:"total_accounts"`
	TotalCashflows    int64 `json:"total_cashflows"`
	TotalCreditsCount int64 `json:"total_credits_count"`
	TotalDebitsCount  int64 `json:"total_debits_count"`
}

type dashboardBalanceSummary struct {
	TotalBalance float64 `json:"total_balance"`
	TotalCredits float64 `json:"total_credits"`
	TotalDebits  float64 `json:"total_debits"`
}

type dashboardResponse struct {
	TotalCounts        dashboardTotalCounts    `json:"total_counts"`
	BalanceSummary     dashboardBalanceSummary `json:"balance_summary"`
	RecentTransactions []cashFlowListItem      `json:"recent_transactions"`
}

func toDashboardResponse(stats storage.DashboardStats) dashboardResponse {
	return dashboardResponse{
		TotalCounts: dashboardTotalCounts{
			TotalAccounts:     stats.TotalAccounts,
			TotalCashflows:    stats.TotalCashflows,
			TotalCreditsCount: stats.TotalCreditsCount,
			TotalDebitsCount:  stats.TotalDebitsCount,
		},
		BalanceSummary: dashboardBalanceSummary{
			TotalBalance: core.Money{Cents: stats.TotalBalanceCents}.Float(),
			TotalCredits: core.Money{Cents: stats.TotalCreditsCents}.Float(),
			TotalDebits:  core.Money{Cents: stats.TotalDebitsCents}.Float(),
		},
		RecentTransactions: toCashFlowListItems(stats.Recent),
	}
}
