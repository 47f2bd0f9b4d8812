package notification

import (
	"context"
	"log/slog"
)

const (
	// KindLargeWithdrawal indicates a withdrawal over the fraud limit.
	KindLargeWithdrawal = "large_withdrawal"
	// KindFrequentTransfer indicates rapid transfer activity from one account.
	KindFrequentTransfer = "frequent_transfer"
)

// Alert describes a suspicious-activity notification payload.
type Alert struct {
	Kind      string
	AccountID string
	Subject   string
	Body      string
}

// Notifier delivers alerts to downstream systems (email gateway, webhook).
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
}

// Sink accepts alerts for asynchronous delivery. Enqueue must never block
// the caller; alerts are observational and a full queue drops them.
type Sink interface {
	Enqueue(alert Alert)
}

// LoggerNotifier is a stub implementation that writes alerts to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the alert to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, alert Alert) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("alert",
		"kind", alert.Kind,
		"account_id", alert.AccountID,
		"subject", alert.Subject,
		"body", alert.Body,
	)
	return nil
}
