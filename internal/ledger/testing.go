package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// SeedBalance is a test helper that writes a balance directly when using the
// in-memory store.
func SeedBalance(s Store, accountID, code string, amount decimal.Decimal) {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		st, exists := mem.wallets[accountID]
		if !exists {
			st = &walletState{status: WalletStatusActive, createdAt: time.Now().UTC(), balances: make(map[string]decimal.Decimal)}
			mem.wallets[accountID] = st
		}
		st.balances[code] = amount
	}
}

// SeedTransaction is a test helper that appends a journal record with the
// provided creation timestamp, bypassing the engine. Useful for backdating
// fraud-window history.
func SeedTransaction(s Store, txn Transaction) Transaction {
	if mem, ok := s.(*memoryStore); ok {
		mem.mu.Lock()
		defer mem.mu.Unlock()
		if txn.ID == "" {
			txn.ID = uuid.NewString()
		}
		if txn.CreatedAt.IsZero() {
			txn.CreatedAt = time.Now().UTC()
		}
		rec := txn
		mem.journal = append(mem.journal, &rec)
	}
	return txn
}
