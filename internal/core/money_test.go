package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestSpendAmount(t *testing.T) {
	cases := []struct {
		amount string
		want   string
	}{
		{"-54.20", "54.20"},
		{"100.00", "0"},
		{"0", "0"},
		{"-0.01", "0.01"},
	}
	for i, tc := range cases {
		got := SpendAmount(dec(tc.amount))
		if !got.Equal(dec(tc.want)) {
			t.Fatalf("case %d: SpendAmount(%s) = %s, want %s", i, tc.amount, got, tc.want)
		}
	}
}

func TestIncomeAmount(t *testing.T) {
	if got := IncomeAmount(dec("250.00")); !got.Equal(dec("250.00")) {
		t.Fatalf("IncomeAmount(250.00) = %s", got)
	}
	if got := IncomeAmount(dec("-250.00")); !got.IsZero() {
		t.Fatalf("IncomeAmount(-250.00) = %s, want 0", got)
	}
}

func TestSignConvention(t *testing.T) {
	if !IsExpense(dec("-1")) || IsExpense(dec("1")) || IsExpense(decimal.Zero) {
		t.Fatal("IsExpense sign convention broken")
	}
	if !IsIncome(dec("1")) || IsIncome(dec("-1")) || IsIncome(decimal.Zero) {
		t.Fatal("IsIncome sign convention broken")
	}
}

func TestMoney2Rounding(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"10.005", 10.01},
		{"10.004", 10.0},
		{"-10.005", -10.01},
		{"3", 3},
	}
	for i, tc := range cases {
		if got := Money2(dec(tc.in)); got != tc.want {
			t.Fatalf("case %d: Money2(%s) = %v, want %v", i, tc.in, got, tc.want)
		}
	}
}

func TestParseAmountLenient(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"12.34", "12.34"},
		{"12,34", "12.34"},
		{"-55.10", "-55.10"},
		{"$19.99", "19.99"},
		{"", "0"},
		{"not-a-number", "0"},
	}
	for i, tc := range cases {
		if got := ParseAmount(tc.in); !got.Equal(dec(tc.want)) {
			t.Fatalf("case %d: ParseAmount(%q) = %s, want %s", i, tc.in, got, tc.want)
		}
	}
}
