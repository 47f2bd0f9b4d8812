package currency

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnsupportedCurrency occurs when a currency code is absent from the
// registry.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Registry holds the supported currency codes and their conversion rates
// into the reference currency. It is immutable after construction.
type Registry struct {
	reference string
	rates     map[string]decimal.Decimal
}

// NewRegistry builds a registry from a rate table. The reference currency
// must be present with a rate of exactly 1.
func NewRegistry(reference string, rates map[string]decimal.Decimal) (*Registry, error) {
	reference = strings.ToUpper(reference)
	refRate, ok := rates[reference]
	if !ok {
		return nil, fmt.Errorf("reference currency %s missing from rate table", reference)
	}
	if !refRate.Equal(decimal.New(1, 0)) {
		return nil, fmt.Errorf("reference currency %s must have rate 1, got %s", reference, refRate)
	}
	copied := make(map[string]decimal.Decimal, len(rates))
	for code, rate := range rates {
		if rate.Sign() <= 0 {
			return nil, fmt.Errorf("rate for %s must be positive, got %s", code, rate)
		}
		copied[strings.ToUpper(code)] = rate
	}
	return &Registry{reference: reference, rates: copied}, nil
}

// Reference returns the reference currency code.
func (r *Registry) Reference() string {
	return r.reference
}

// Supported reports whether the currency code is in the registry.
func (r *Registry) Supported(code string) bool {
	_, ok := r.rates[strings.ToUpper(code)]
	return ok
}

// ToReference converts an amount from the given currency into the reference
// currency using the fixed rate table.
func (r *Registry) ToReference(code string, amount decimal.Decimal) (decimal.Decimal, error) {
	rate, ok := r.rates[strings.ToUpper(code)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return amount.Mul(rate), nil
}

// Codes returns the supported currency codes in sorted order.
func (r *Registry) Codes() []string {
	codes := make([]string, 0, len(r.rates))
	for code := range r.rates {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}
