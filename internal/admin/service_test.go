package admin

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

func testRegistry(t *testing.T) *currency.Registry {
	t.Helper()
	reg, err := currency.NewRegistry("INR", map[string]decimal.Decimal{
		"INR": decimal.NewFromInt(1),
		"USD": decimal.NewFromInt(85),
		"EUR": decimal.NewFromInt(95),
	})
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	return reg
}

func seedWallet(t *testing.T, store ledger.Store, id string, balances map[string]int64) {
	t.Helper()
	if _, err := store.CreateWallet(context.Background(), id); err != nil {
		t.Fatalf("create wallet %s: %v", id, err)
	}
	for code, amount := range balances {
		ledger.SeedBalance(store, id, code, decimal.NewFromInt(amount))
	}
}

func TestTotalBalancesAggregatesAcrossWallets(t *testing.T) {
	store := ledger.NewMemory()
	svc := NewService(store, testRegistry(t))

	seedWallet(t, store, "a", map[string]int64{"INR": 500, "USD": 10})
	seedWallet(t, store, "b", map[string]int64{"INR": 1500})

	totals, err := svc.TotalBalances(context.Background())
	if err != nil {
		t.Fatalf("total balances: %v", err)
	}
	if got := totals["INR"]; !got.Equal(decimal.NewFromInt(2000)) {
		t.Fatalf("INR total = %s, want 2000", got)
	}
	if got := totals["USD"]; !got.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("USD total = %s, want 10", got)
	}
}

func TestTopAccountsByBalanceConvertsToReference(t *testing.T) {
	store := ledger.NewMemory()
	svc := NewService(store, testRegistry(t))

	// 10 USD = 850 INR, so the dollar wallet outranks the raw-INR one.
	seedWallet(t, store, "rich", map[string]int64{"USD": 10})
	seedWallet(t, store, "small", map[string]int64{"INR": 600})

	ranked, err := svc.TopAccountsByBalance(context.Background(), 10)
	if err != nil {
		t.Fatalf("top by balance: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d entries, want 2", len(ranked))
	}
	if ranked[0].AccountID != "rich" {
		t.Fatalf("top account = %s, want rich", ranked[0].AccountID)
	}
	if !ranked[0].Total.Equal(decimal.NewFromInt(850)) {
		t.Fatalf("top total = %s, want 850", ranked[0].Total)
	}
}

func TestTopAccountsByBalanceHonorsLimit(t *testing.T) {
	store := ledger.NewMemory()
	svc := NewService(store, testRegistry(t))

	seedWallet(t, store, "a", map[string]int64{"INR": 300})
	seedWallet(t, store, "b", map[string]int64{"INR": 200})
	seedWallet(t, store, "c", map[string]int64{"INR": 100})

	ranked, err := svc.TopAccountsByBalance(context.Background(), 2)
	if err != nil {
		t.Fatalf("top by balance: %v", err)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d entries, want 2", len(ranked))
	}
	if ranked[0].AccountID != "a" || ranked[1].AccountID != "b" {
		t.Fatalf("ranking = %s,%s want a,b", ranked[0].AccountID, ranked[1].AccountID)
	}
}

func TestSoftDeleteAndRestoreTransaction(t *testing.T) {
	store := ledger.NewMemory()
	svc := NewService(store, testRegistry(t))

	seedWallet(t, store, "a", nil)
	saved := ledger.SeedTransaction(store, ledger.Transaction{
		AccountID: "a",
		Kind:      ledger.KindDeposit,
		Amount:    decimal.NewFromInt(100),
		Currency:  "INR",
	})

	if err := svc.SoftDeleteTransaction(context.Background(), saved.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}
	visible, err := store.ListTransactions(context.Background(), "a", false)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("deleted record still visible: %d entries", len(visible))
	}

	if err := svc.RestoreTransaction(context.Background(), saved.ID); err != nil {
		t.Fatalf("restore: %v", err)
	}
	visible, err = store.ListTransactions(context.Background(), "a", false)
	if err != nil {
		t.Fatalf("list after restore: %v", err)
	}
	if len(visible) != 1 {
		t.Fatalf("restored record missing: %d entries", len(visible))
	}

	if err := svc.SoftDeleteTransaction(context.Background(), "missing"); err != ledger.ErrTransactionNotFound {
		t.Fatalf("missing id error = %v, want ErrTransactionNotFound", err)
	}
}

func TestDeactivateAndReactivateWallet(t *testing.T) {
	store := ledger.NewMemory()
	svc := NewService(store, testRegistry(t))
	seedWallet(t, store, "a", nil)

	if err := svc.DeactivateWallet(context.Background(), "a"); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	w, err := store.GetWallet(context.Background(), "a")
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if w.Active() {
		t.Fatal("wallet still active after deactivation")
	}

	if err := svc.ReactivateWallet(context.Background(), "a"); err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	w, err = store.GetWallet(context.Background(), "a")
	if err != nil {
		t.Fatalf("get wallet: %v", err)
	}
	if !w.Active() {
		t.Fatal("wallet inactive after reactivation")
	}

	if err := svc.DeactivateWallet(context.Background(), "missing"); err != ledger.ErrWalletNotFound {
		t.Fatalf("missing wallet error = %v, want ErrWalletNotFound", err)
	}
}

func TestFlaggedInRangeExcludesSoftDeleted(t *testing.T) {
	store := ledger.NewMemory()
	svc := NewService(store, testRegistry(t))
	seedWallet(t, store, "a", nil)

	day := time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC)
	kept := ledger.SeedTransaction(store, ledger.Transaction{
		AccountID: "a",
		Kind:      ledger.KindWithdraw,
		Amount:    decimal.NewFromInt(2_000_000),
		Currency:  "INR",
		Flagged:   true,
		CreatedAt: day.Add(3 * time.Hour),
	})
	hidden := ledger.SeedTransaction(store, ledger.Transaction{
		AccountID: "a",
		Kind:      ledger.KindWithdraw,
		Amount:    decimal.NewFromInt(2_000_000),
		Currency:  "INR",
		Flagged:   true,
		CreatedAt: day.Add(5 * time.Hour),
	})
	if err := svc.SoftDeleteTransaction(context.Background(), hidden.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	flagged, err := svc.FlaggedInRange(context.Background(), day, day.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("flagged in range: %v", err)
	}
	if len(flagged) != 1 || flagged[0].ID != kept.ID {
		t.Fatalf("flagged = %+v, want only the visible record", flagged)
	}
}
