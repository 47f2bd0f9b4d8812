package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
	"github.com/rupeelink/rupeelink/internal/fraud"
	"github.com/rupeelink/rupeelink/internal/logging"
	"github.com/rupeelink/rupeelink/internal/notification"
)

// Engine executes deposits, withdrawals and transfers. Each operation runs
// as one atomic unit spanning the balance read, the sufficiency check, the
// fraud-history read, the balance write and the journal append; on any
// failure before commit nothing becomes visible. Fraud flags are
// observational: they mark the record and raise an alert after commit but
// never reject the operation.
type Engine struct {
	store    Store
	registry *currency.Registry
	rules    fraud.Rules
	alerts   notification.Sink
	logger   *slog.Logger
}

// NewEngine wires the engine with its store, currency registry, fraud rules
// and alert sink. alerts may be nil when no notifier is configured.
func NewEngine(store Store, registry *currency.Registry, rules fraud.Rules, alerts notification.Sink, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{store: store, registry: registry, rules: rules, alerts: alerts, logger: logger}
}

// TransferResult captures both sides of a committed transfer.
type TransferResult struct {
	From           Wallet
	To             Wallet
	SenderRecord   Transaction
	ReceiverRecord Transaction
	Flagged        bool
}

func (e *Engine) validate(amount decimal.Decimal, code string) (string, error) {
	if amount.Sign() <= 0 {
		return "", ErrInvalidAmount
	}
	code = strings.ToUpper(code)
	if !e.registry.Supported(code) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedCurrency, code)
	}
	return code, nil
}

// Deposit credits the account's balance in the given currency and journals
// the event. Deposits are never flagged.
func (e *Engine) Deposit(ctx context.Context, accountID string, amount decimal.Decimal, code string) (Wallet, Transaction, error) {
	code, err := e.validate(amount, code)
	if err != nil {
		return Wallet{}, Transaction{}, err
	}

	var (
		w   Wallet
		rec Transaction
	)
	err = e.store.Atomic(ctx, []string{accountID}, func(tx Tx) error {
		wallet, err := tx.Wallet(accountID)
		if err != nil {
			return err
		}
		if !wallet.Active() {
			return ErrWalletInactive
		}
		if w, err = tx.Adjust(accountID, code, amount); err != nil {
			return err
		}
		rec, err = tx.Append(Transaction{AccountID: accountID, Kind: KindDeposit, Amount: amount, Currency: code})
		return err
	})
	if err != nil {
		return Wallet{}, Transaction{}, err
	}
	return w, rec, nil
}

// Withdraw debits the account's balance. The large-withdrawal heuristic is a
// pure function of the single operation and runs before the unit; its flag
// is attached to the journal record inside the unit and alerted after commit.
func (e *Engine) Withdraw(ctx context.Context, accountID string, amount decimal.Decimal, code string) (Wallet, Transaction, error) {
	code, err := e.validate(amount, code)
	if err != nil {
		return Wallet{}, Transaction{}, err
	}

	flagged, err := fraud.LargeWithdrawal(e.registry, e.rules, amount, code)
	if err != nil {
		return Wallet{}, Transaction{}, err
	}

	var (
		w   Wallet
		rec Transaction
	)
	err = e.store.Atomic(ctx, []string{accountID}, func(tx Tx) error {
		wallet, err := tx.Wallet(accountID)
		if err != nil {
			return err
		}
		if !wallet.Active() {
			return ErrWalletInactive
		}
		if w, err = tx.Adjust(accountID, code, amount.Neg()); err != nil {
			return err
		}
		rec, err = tx.Append(Transaction{AccountID: accountID, Kind: KindWithdraw, Amount: amount, Currency: code, Flagged: flagged})
		return err
	})
	if err != nil {
		return Wallet{}, Transaction{}, err
	}

	if flagged {
		e.logger.Warn("large withdrawal flagged",
			"account_id", accountID, "amount", amount.String(), "currency", code, "transaction_id", rec.ID)
		e.alert(notification.Alert{
			Kind:      notification.KindLargeWithdrawal,
			AccountID: accountID,
			Subject:   "Alert: Large Withdrawal Detected",
			Body:      fmt.Sprintf("A large withdrawal of %s %s was detected on your account. If this was not you, please contact support immediately.", amount, code),
		})
	}
	return w, rec, nil
}

// Transfer moves funds between two wallets and appends one mirrored journal
// record per side inside the same unit. The frequent-transfer heuristic
// counts the sender's committed transfers in the trailing window, read under
// the same locks as the balance mutation so concurrent transfers cannot
// under-count each other. Only the sender's record ever carries the flag.
func (e *Engine) Transfer(ctx context.Context, fromID, toID string, amount decimal.Decimal, code string) (TransferResult, error) {
	code, err := e.validate(amount, code)
	if err != nil {
		return TransferResult{}, err
	}
	if fromID == toID {
		return TransferResult{}, ErrSelfTransfer
	}

	var res TransferResult
	err = e.store.Atomic(ctx, []string{fromID, toID}, func(tx Tx) error {
		sender, err := tx.Wallet(fromID)
		if err != nil {
			return err
		}
		receiver, err := tx.Wallet(toID)
		if err != nil {
			return err
		}
		if !sender.Active() || !receiver.Active() {
			return ErrWalletInactive
		}

		// The window is [now-W, now): evaluated at this instant, before the
		// new record exists, so a transfer never counts itself.
		prior, err := tx.CountTransfersSince(fromID, fraud.WindowStart(e.rules, time.Now().UTC()))
		if err != nil {
			return err
		}
		res.Flagged = fraud.FrequentTransfer(e.rules, prior)

		if res.From, err = tx.Adjust(fromID, code, amount.Neg()); err != nil {
			return err
		}
		if res.To, err = tx.Adjust(toID, code, amount); err != nil {
			return err
		}
		if res.SenderRecord, err = tx.Append(Transaction{
			AccountID:    fromID,
			Kind:         KindTransfer,
			Amount:       amount,
			Currency:     code,
			Counterparty: toID,
			Flagged:      res.Flagged,
		}); err != nil {
			return err
		}
		res.ReceiverRecord, err = tx.Append(Transaction{
			AccountID:    toID,
			Kind:         KindTransfer,
			Amount:       amount,
			Currency:     code,
			Counterparty: fromID,
		})
		return err
	})
	if err != nil {
		return TransferResult{}, err
	}

	if res.Flagged {
		e.logger.Warn("frequent transfer flagged",
			"account_id", fromID, "transaction_id", res.SenderRecord.ID)
		e.alert(notification.Alert{
			Kind:      notification.KindFrequentTransfer,
			AccountID: fromID,
			Subject:   "Alert: Suspicious Transfer Activity",
			Body:      "Multiple transfers were detected from your account in a short period. If this was not you, please review your account activity.",
		})
	}
	return res, nil
}

// alert enqueues after commit only. The sink never blocks, so a slow
// notifier cannot delay the response path.
func (e *Engine) alert(a notification.Alert) {
	if e.alerts == nil {
		return
	}
	e.alerts.Enqueue(a)
}
