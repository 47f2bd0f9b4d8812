package admin

import (
	"context"
	"log/slog"
	"time"

	"github.com/rupeelink/rupeelink/internal/ledger"
)

// Reporter periodically writes a fraud summary for the current day to the
// log, independent of the engine. It reads the journal's flagged range
// query only.
type Reporter struct {
	service  *Service
	logger   *slog.Logger
	interval time.Duration
}

// NewReporter builds a daily fraud reporter.
func NewReporter(service *Service, logger *slog.Logger, interval time.Duration) *Reporter {
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &Reporter{service: service, logger: logger, interval: interval}
}

// Run emits a report every interval until ctx is cancelled.
func (r *Reporter) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			flagged, err := r.ReportDay(ctx, time.Now().UTC())
			if err != nil {
				r.logger.Error("daily fraud scan failed", "error", err)
				continue
			}
			r.log(flagged)
		}
	}
}

// ReportDay returns the flagged records created on the day containing now.
func (r *Reporter) ReportDay(ctx context.Context, now time.Time) ([]ledger.Transaction, error) {
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	return r.service.FlaggedInRange(ctx, day, day.Add(24*time.Hour))
}

func (r *Reporter) log(flagged []ledger.Transaction) {
	if len(flagged) == 0 {
		r.logger.Info("fraud report", "flagged", 0)
		return
	}
	for _, txn := range flagged {
		r.logger.Info("fraud report entry",
			"transaction_id", txn.ID,
			"account_id", txn.AccountID,
			"kind", string(txn.Kind),
			"amount", txn.Amount.String(),
			"currency", txn.Currency,
			"created_at", txn.CreatedAt,
		)
	}
	r.logger.Info("fraud report", "flagged", len(flagged))
}
