package currency

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func testRates() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		"INR": decimal.New(1, 0),
		"USD": decimal.New(85, 0),
		"EUR": decimal.New(95, 0),
	}
}

func TestRegistrySupported(t *testing.T) {
	reg, err := NewRegistry("INR", testRates())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	if !reg.Supported("USD") {
		t.Fatal("expected USD to be supported")
	}
	if !reg.Supported("usd") {
		t.Fatal("expected code lookup to be case-insensitive")
	}
	if reg.Supported("JPY") {
		t.Fatal("expected JPY to be unsupported")
	}
}

func TestRegistryToReference(t *testing.T) {
	reg, err := NewRegistry("INR", testRates())
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}

	converted, err := reg.ToReference("USD", decimal.New(20_000, 0))
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !converted.Equal(decimal.New(1_700_000, 0)) {
		t.Fatalf("expected 1700000, got %s", converted)
	}

	if _, err := reg.ToReference("JPY", decimal.New(1, 0)); !errors.Is(err, ErrUnsupportedCurrency) {
		t.Fatalf("expected ErrUnsupportedCurrency, got %v", err)
	}
}

func TestRegistryRejectsBadRates(t *testing.T) {
	rates := testRates()
	rates["XXX"] = decimal.New(-3, 0)
	if _, err := NewRegistry("INR", rates); err == nil {
		t.Fatal("expected error for negative rate")
	}

	if _, err := NewRegistry("USD", testRates()); err == nil {
		t.Fatal("expected error when reference rate is not 1")
	}
}
