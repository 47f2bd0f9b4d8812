package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tx is the view of the store inside a single atomic unit of work. Every
// read observes a snapshot consistent with the locks held for the unit, and
// every write becomes visible only if the whole unit commits.
type Tx interface {
	// Wallet returns the wallet for the account, or ErrWalletNotFound.
	Wallet(accountID string) (Wallet, error)

	// Adjust adds delta (possibly negative) to the account's balance in the
	// given currency, creating the currency entry at zero first if absent.
	// Fails with ErrInsufficientFunds if the result would be negative.
	Adjust(accountID, code string, delta decimal.Decimal) (Wallet, error)

	// Append stores a journal record, assigning its identifier and creation
	// timestamp. The payload is immutable once committed.
	Append(txn Transaction) (Transaction, error)

	// CountTransfersSince counts committed transfer records owned by the
	// account with a creation time at or after since. Records appended
	// inside the current unit are not counted.
	CountTransfersSince(accountID string, since time.Time) (int, error)
}

// AccountActivity pairs an account with its journal record count.
type AccountActivity struct {
	AccountID    string
	Transactions int
}

// Store persists wallets and the transaction journal. Atomic is the only
// path that mutates balances; the remaining methods serve provisioning and
// administrative reads that never touch balances.
type Store interface {
	// Atomic executes fn inside one isolated unit covering the listed
	// accounts. Lock acquisition follows sorted account order so that
	// concurrent cross-account units cannot deadlock. Any error from fn
	// rolls every effect back.
	Atomic(ctx context.Context, accountIDs []string, fn func(Tx) error) error

	CreateWallet(ctx context.Context, accountID string) (Wallet, error)
	GetWallet(ctx context.Context, accountID string) (Wallet, error)
	SetWalletStatus(ctx context.Context, accountID, status string) error
	ListWallets(ctx context.Context) ([]Wallet, error)

	// ListTransactions returns the account's journal ordered by creation
	// time descending, excluding soft-deleted records unless asked.
	ListTransactions(ctx context.Context, accountID string, includeDeleted bool) ([]Transaction, error)

	// ListFlagged returns non-deleted flagged records created in [from, to).
	ListFlagged(ctx context.Context, from, to time.Time) ([]Transaction, error)

	// SetDeleted toggles the administrative soft-delete flag on a record.
	// It never alters balances.
	SetDeleted(ctx context.Context, id string, deleted bool) error

	// TotalBalances sums wallet balances per currency across all accounts.
	TotalBalances(ctx context.Context) (map[string]decimal.Decimal, error)

	// TransactionCounts returns the busiest accounts by journal record
	// count, descending, at most limit entries.
	TransactionCounts(ctx context.Context, limit int) ([]AccountActivity, error)
}
