package admin

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

// Service provides read-only reporting and the two administrative mutations
// (record soft-delete and wallet deactivation). It never adjusts balances
// and never recomputes fraud flags; the booleans it toggles are the only
// post-creation writes a journal record ever sees.
type Service struct {
	store    ledger.Store
	registry *currency.Registry
}

// NewService builds an admin service.
func NewService(store ledger.Store, registry *currency.Registry) *Service {
	return &Service{store: store, registry: registry}
}

// AccountBalance pairs an account with its total balance converted into the
// reference currency.
type AccountBalance struct {
	AccountID string
	Total     decimal.Decimal
}

// FlaggedTransactions lists all non-deleted flagged records.
func (s *Service) FlaggedTransactions(ctx context.Context) ([]ledger.Transaction, error) {
	return s.store.ListFlagged(ctx, time.Time{}, time.Now().UTC().Add(time.Second))
}

// FlaggedInRange lists flagged records created within [from, to).
func (s *Service) FlaggedInRange(ctx context.Context, from, to time.Time) ([]ledger.Transaction, error) {
	return s.store.ListFlagged(ctx, from, to)
}

// TotalBalances sums every wallet's balances per currency.
func (s *Service) TotalBalances(ctx context.Context) (map[string]decimal.Decimal, error) {
	return s.store.TotalBalances(ctx)
}

// TopAccountsByBalance ranks accounts by their holdings converted into the
// reference currency, descending, at most limit entries.
func (s *Service) TopAccountsByBalance(ctx context.Context, limit int) ([]AccountBalance, error) {
	wallets, err := s.store.ListWallets(ctx)
	if err != nil {
		return nil, err
	}
	ranked := make([]AccountBalance, 0, len(wallets))
	for _, w := range wallets {
		total := decimal.Zero
		for code, balance := range w.Balances {
			converted, err := s.registry.ToReference(code, balance)
			if err != nil {
				return nil, err
			}
			total = total.Add(converted)
		}
		ranked = append(ranked, AccountBalance{AccountID: w.AccountID, Total: total})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].Total.Equal(ranked[j].Total) {
			return ranked[i].Total.GreaterThan(ranked[j].Total)
		}
		return ranked[i].AccountID < ranked[j].AccountID
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// TopAccountsByActivity ranks accounts by journal record count.
func (s *Service) TopAccountsByActivity(ctx context.Context, limit int) ([]ledger.AccountActivity, error) {
	return s.store.TransactionCounts(ctx, limit)
}

// SoftDeleteTransaction hides a record from default listings. The balance
// effect it journaled is already part of the wallet aggregate and stays.
func (s *Service) SoftDeleteTransaction(ctx context.Context, id string) error {
	return s.store.SetDeleted(ctx, id, true)
}

// RestoreTransaction undoes a soft delete.
func (s *Service) RestoreTransaction(ctx context.Context, id string) error {
	return s.store.SetDeleted(ctx, id, false)
}

// DeactivateWallet blocks further engine operations on the wallet. The
// wallet and its history remain.
func (s *Service) DeactivateWallet(ctx context.Context, accountID string) error {
	return s.store.SetWalletStatus(ctx, accountID, ledger.WalletStatusInactive)
}

// ReactivateWallet re-enables a deactivated wallet.
func (s *Service) ReactivateWallet(ctx context.Context, accountID string) error {
	return s.store.SetWalletStatus(ctx, accountID, ledger.WalletStatusActive)
}
