package fraud

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/rupeelink/rupeelink/internal/currency"
)

// Rules carries the fraud detection thresholds. The values are fixed at
// process start; see config.Load.
type Rules struct {
	// LargeWithdrawalLimit is expressed in the reference currency. A
	// withdrawal converting to strictly more than this is flagged.
	LargeWithdrawalLimit decimal.Decimal

	// TransferWindow is the trailing period inspected by the frequent
	// transfer check. The window is [now-W, now), exclusive of the commit
	// instant, so an operation never counts itself.
	TransferWindow time.Duration

	// TransferThreshold is the number of prior transfers inside the window
	// at or above which the next transfer is flagged.
	TransferThreshold int
}

// LargeWithdrawal reports whether a withdrawal of the given amount and
// currency exceeds the configured limit once converted into the reference
// currency. It inspects only the single operation, never history.
func LargeWithdrawal(reg *currency.Registry, rules Rules, amount decimal.Decimal, code string) (bool, error) {
	converted, err := reg.ToReference(code, amount)
	if err != nil {
		return false, err
	}
	return converted.GreaterThan(rules.LargeWithdrawalLimit), nil
}

// FrequentTransfer reports whether a transfer should be flagged given the
// number of transfers the sender already committed inside the trailing
// window. The count must be taken from committed history strictly before
// the new record exists.
func FrequentTransfer(rules Rules, priorTransfers int) bool {
	return priorTransfers >= rules.TransferThreshold
}

// WindowStart returns the lower bound of the trailing window evaluated at
// the given instant.
func WindowStart(rules Rules, now time.Time) time.Time {
	return now.Add(-rules.TransferWindow)
}
