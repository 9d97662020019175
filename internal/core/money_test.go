package core

import "testing"

func TestParseDecimalToCents(t *testing.T) {
	cases := []struct {
		in      string
		want    int64
		wantErr bool
	}{
		{"12.34", 1234, false},
		{"12,34", 1234, false},
		{"12.345", 1234, false},
		{"12.346", 1235, false},
		{"500", 50000, false},
		{".5", 50, false},
		{"0", 0, true},
		{"-1", 0, true},
		{"+1", 0, true},
		{"abc", 0, true},
		{"1.2.3", 0, true},
		{"", 0, true},
	}
	for _, c := range cases {
		got, err := ParseDecimalToCents(c.in)
		if (err != nil) != c.wantErr {
			t.Errorf("ParseDecimalToCents(%q) err=%v, wantErr=%v", c.in, err, c.wantErr)
			continue
		}
		if got != c.want {
			t.Errorf("ParseDecimalToCents(%q)=%d, want %d", c.in, got, c.want)
		}
	}
}

func TestMoneyFromFloat(t *testing.T) {
	if m := MoneyFromFloat(12.34); m.Cents != 1234 {
		t.Errorf("MoneyFromFloat(12.34)=%d", m.Cents)
	}
	if m := MoneyFromFloat(0.1 + 0.2); m.Cents != 30 {
		t.Errorf("MoneyFromFloat(0.3)=%d", m.Cents)
	}
}

func TestMoneyFloat(t *testing.T) {
	if f := (Money{Cents: 25050}).Float(); f != 250.50 {
		t.Errorf("Float()=%v", f)
	}
}
