package core

import (
	"errors"
	"testing"
)

func TestParseTxnType(t *testing.T) {
	cases := []struct {
		in      string
		want    TxnType
		wantErr bool
	}{
		{"credit", Credit, false},
		{"DEBIT", Debit, false},
		{" credit ", Credit, false},
		{"transfer", "", true},
		{"", "", true},
	}
	for _, c := range cases {
		got, err := ParseTxnType(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseTxnType(%q) err=%v, wantErr=%v", c.in, err, c.wantErr)
		}
		if got != c.want {
			t.Errorf("ParseTxnType(%q)=%q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseAccountTypeDefaults(t *testing.T) {
	got, err := ParseAccountType("")
	if err != nil || got != Savings {
		t.Fatalf("empty account type: got %q, %v", got, err)
	}
	if _, err := ParseAccountType("checking"); err == nil {
		t.Fatal("expected error for unknown account type")
	}
}

func TestParseCurrencyDefaults(t *testing.T) {
	got, err := ParseCurrency("")
	if err != nil || got != INR {
		t.Fatalf("empty currency: got %q, %v", got, err)
	}
	if got, err := ParseCurrency("usd"); err != nil || got != USD {
		t.Fatalf("lowercase currency: got %q, %v", got, err)
	}
	if _, err := ParseCurrency("EUR"); err == nil {
		t.Fatal("expected error for unsupported currency")
	}
}

func TestAccountValidate(t *testing.T) {
	valid := Account{
		BankAccountNo: "ACCOUNT12345",
		BankName:      "TestBank",
		AccountType:   Savings,
		HolderName:    "Test User",
		Currency:      INR,
		Balance:       Money{Cents: 50075},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid account rejected: %v", err)
	}

	short := valid
	short.BankAccountNo = "SHORT"
	if err := short.Validate(); !errors.Is(err, ErrInvalidAccountNo) {
		t.Errorf("short account no: got %v", err)
	}

	negative := valid
	negative.Balance = Money{Cents: -1}
	if err := negative.Validate(); !errors.Is(err, ErrNegativeBalance) {
		t.Errorf("negative balance: got %v", err)
	}

	noHolder := valid
	noHolder.HolderName = "  "
	if err := noHolder.Validate(); !errors.Is(err, ErrEmptyHolderName) {
		t.Errorf("blank holder: got %v", err)
	}
}

func TestCashFlowValidate(t *testing.T) {
	valid := CashFlow{
		AccountID: 1,
		TxnType:   Credit,
		Category:  "salary",
		Amount:    Money{Cents: 50000},
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid cashflow rejected: %v", err)
	}

	noAccount := valid
	noAccount.AccountID = 0
	if err := noAccount.Validate(); !errors.Is(err, ErrMissingAccountID) {
		t.Errorf("missing account: got %v", err)
	}

	badType := valid
	badType.TxnType = "transfer"
	if err := badType.Validate(); !errors.Is(err, ErrInvalidTxnType) {
		t.Errorf("bad type: got %v", err)
	}

	zeroAmount := valid
	zeroAmount.Amount = Money{}
	if err := zeroAmount.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Errorf("zero amount: got %v", err)
	}
}
