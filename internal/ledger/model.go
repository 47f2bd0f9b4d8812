package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind enumerates the balance-affecting operations recorded in the journal.
type Kind string

const (
	KindDeposit  Kind = "deposit"
	KindWithdraw Kind = "withdraw"
	KindTransfer Kind = "transfer"
)

const (
	// WalletStatusActive marks a wallet accepting operations.
	WalletStatusActive = "active"
	// WalletStatusInactive marks a deactivated wallet. Wallets are never
	// physically deleted.
	WalletStatusInactive = "inactive"
)

// Wallet is the balance aggregate owned by exactly one account. Balances are
// keyed by currency code and are never negative.
type Wallet struct {
	AccountID string
	Status    string
	Balances  map[string]decimal.Decimal
	CreatedAt time.Time
}

// Balance returns the balance held in the given currency, zero if the
// currency entry is absent.
func (w Wallet) Balance(code string) decimal.Decimal {
	if b, ok := w.Balances[code]; ok {
		return b
	}
	return decimal.Zero
}

// Active reports whether the wallet accepts ledger operations.
func (w Wallet) Active() bool {
	return w.Status == WalletStatusActive
}

// Transaction is an immutable journal record describing one balance-affecting
// event. Only the Flagged and Deleted booleans may change after creation, and
// only through administrative action.
type Transaction struct {
	ID           string
	AccountID    string
	Kind         Kind
	Amount       decimal.Decimal
	Currency     string
	Counterparty string // set for transfers only
	CreatedAt    time.Time
	Flagged      bool
	Deleted      bool
}
