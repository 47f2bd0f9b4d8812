package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/ledger"
)

// Service exposes wallet provisioning and read-only views over the ledger
// store. All balance mutations go through the engine, never through here.
type Service struct {
	store    ledger.Store
	registry *currency.Registry
}

// NewService builds a wallet service instance.
func NewService(store ledger.Store, registry *currency.Registry) *Service {
	return &Service{store: store, registry: registry}
}

// Create provisions a wallet for the account. An empty account id mints a
// fresh one.
func (s *Service) Create(ctx context.Context, accountID string) (ledger.Wallet, error) {
	if accountID == "" {
		accountID = uuid.NewString()
	} else if _, err := uuid.Parse(accountID); err != nil {
		return ledger.Wallet{}, fmt.Errorf("invalid account id: %w", err)
	}
	return s.store.CreateWallet(ctx, accountID)
}

// Get retrieves the wallet aggregate.
func (s *Service) Get(ctx context.Context, accountID string) (ledger.Wallet, error) {
	return s.store.GetWallet(ctx, accountID)
}

// Balances returns the currencies the wallet actually holds.
func (s *Service) Balances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
	w, err := s.store.GetWallet(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return w.Balances, nil
}

// AllBalances returns one entry per supported currency, zero-filled for
// currencies the wallet has never held.
func (s *Service) AllBalances(ctx context.Context, accountID string) (map[string]decimal.Decimal, error) {
	w, err := s.store.GetWallet(ctx, accountID)
	if err != nil {
		return nil, err
	}
	balances := make(map[string]decimal.Decimal, len(s.registry.Codes()))
	for _, code := range s.registry.Codes() {
		balances[code] = w.Balance(code)
	}
	return balances, nil
}

// Transactions lists the account's journal, newest first.
func (s *Service) Transactions(ctx context.Context, accountID string, includeDeleted bool) ([]ledger.Transaction, error) {
	return s.store.ListTransactions(ctx, accountID, includeDeleted)
}
