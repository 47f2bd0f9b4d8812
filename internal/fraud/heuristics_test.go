package fraud

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
)

func testRules() Rules {
	return Rules{
		LargeWithdrawalLimit: decimal.New(1_000_000, 0),
		TransferWindow:       10 * time.Minute,
		TransferThreshold:    3,
	}
}

func testRegistry(t *testing.T) *currency.Registry {
	t.Helper()
	reg, err := currency.NewRegistry("INR", map[string]decimal.Decimal{
		"INR": decimal.New(1, 0),
		"USD": decimal.New(85, 0),
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	return reg
}

func TestLargeWithdrawal(t *testing.T) {
	reg := testRegistry(t)
	rules := testRules()

	cases := []struct {
		name    string
		amount  decimal.Decimal
		code    string
		flagged bool
	}{
		{"20k usd converts over limit", decimal.New(20_000, 0), "USD", true},
		{"1k usd stays under limit", decimal.New(1_000, 0), "USD", false},
		{"exactly at limit is not flagged", decimal.New(1_000_000, 0), "INR", false},
		{"one above limit is flagged", decimal.New(1_000_001, 0), "INR", true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			flagged, err := LargeWithdrawal(reg, rules, tc.amount, tc.code)
			if err != nil {
				t.Fatalf("check: %v", err)
			}
			if flagged != tc.flagged {
				t.Fatalf("expected flagged=%v for %s %s", tc.flagged, tc.amount, tc.code)
			}
		})
	}
}

func TestLargeWithdrawalUnsupportedCurrency(t *testing.T) {
	reg := testRegistry(t)
	if _, err := LargeWithdrawal(reg, testRules(), decimal.New(10, 0), "JPY"); !errors.Is(err, currency.ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestFrequentTransfer(t *testing.T) {
	rules := testRules()

	if FrequentTransfer(rules, 2) {
		t.Fatal("two prior transfers should not flag")
	}
	if !FrequentTransfer(rules, 3) {
		t.Fatal("three prior transfers should flag")
	}
	if !FrequentTransfer(rules, 7) {
		t.Fatal("counts above the threshold should flag")
	}
}

func TestWindowStart(t *testing.T) {
	rules := testRules()
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	want := now.Add(-10 * time.Minute)
	if got := WindowStart(rules, now); !got.Equal(want) {
		t.Fatalf("expected window start %v, got %v", want, got)
	}
}
