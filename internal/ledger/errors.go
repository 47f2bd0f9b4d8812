package ledger

import (
	"errors"

	"github.com/rupeelink/rupeelink/internal/currency"
)

var (
	// ErrUnsupportedCurrency occurs when an operation names a currency
	// absent from the registry.
	ErrUnsupportedCurrency = currency.ErrUnsupportedCurrency

	// ErrInvalidAmount occurs when an operation amount is not strictly
	// positive.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrWalletNotFound occurs when no wallet exists for the account.
	ErrWalletNotFound = errors.New("wallet not found")

	// ErrWalletInactive occurs when the target wallet has been deactivated.
	ErrWalletInactive = errors.New("wallet is inactive")

	// ErrInsufficientFunds occurs when a debit would drive a balance below
	// zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrSelfTransfer occurs when a transfer names the sender as its own
	// counterparty.
	ErrSelfTransfer = errors.New("cannot transfer to own wallet")

	// ErrTransientStore indicates a timeout or contention failure inside
	// the store. The operation left no partial state and is safe to retry.
	ErrTransientStore = errors.New("transient store failure")

	// ErrTransactionNotFound occurs when a journal record id is unknown.
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrWalletExists occurs when provisioning a wallet for an account that
	// already has one.
	ErrWalletExists = errors.New("wallet already exists")
)
