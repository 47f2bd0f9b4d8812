package wallet

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

func testService(t *testing.T) (*Service, ledger.Store) {
	t.Helper()
	reg, err := currency.NewRegistry("INR", map[string]decimal.Decimal{
		"INR": decimal.New(1, 0),
		"USD": decimal.New(85, 0),
	})
	if err != nil {
		t.Fatalf("new registry: %v", err)
	}
	store := ledger.NewMemory()
	return NewService(store, reg), store
}

func TestServiceCreateAndGet(t *testing.T) {
	svc, _ := testService(t)
	ctx := context.Background()

	w, err := svc.Create(ctx, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if w.Status != ledger.WalletStatusActive {
		t.Fatalf("expected active wallet, got %s", w.Status)
	}

	fetched, err := svc.Get(ctx, w.AccountID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if fetched.AccountID != w.AccountID {
		t.Fatalf("expected %s, got %s", w.AccountID, fetched.AccountID)
	}

	if _, err := svc.Create(ctx, w.AccountID); !errors.Is(err, ledger.ErrWalletExists) {
		t.Fatalf("expected ErrWalletExists, got %v", err)
	}
	if _, err := svc.Create(ctx, "not-a-uuid"); err == nil {
		t.Fatal("expected error for malformed account id")
	}
}

func TestServiceAllBalancesZeroFills(t *testing.T) {
	svc, store := testService(t)
	ctx := context.Background()
	id := uuid.NewString()
	if _, err := svc.Create(ctx, id); err != nil {
		t.Fatalf("create: %v", err)
	}
	ledger.SeedBalance(store, id, "USD", decimal.New(50, 0))

	balances, err := svc.AllBalances(ctx, id)
	if err != nil {
		t.Fatalf("all balances: %v", err)
	}
	if len(balances) != 2 {
		t.Fatalf("expected an entry per supported currency, got %v", balances)
	}
	if !balances["USD"].Equal(decimal.New(50, 0)) {
		t.Fatalf("expected USD 50, got %s", balances["USD"])
	}
	if !balances["INR"].IsZero() {
		t.Fatalf("expected INR zero-filled, got %s", balances["INR"])
	}

	held, err := svc.Balances(ctx, id)
	if err != nil {
		t.Fatalf("balances: %v", err)
	}
	if len(held) != 1 {
		t.Fatalf("expected only held currencies, got %v", held)
	}
}
