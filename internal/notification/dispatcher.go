package notification

import (
	"context"
	"log/slog"
)

// Dispatcher is an in-process outbox between the ledger engine and a
// Notifier. The engine enqueues after its unit of work commits; a worker
// goroutine delivers in the background so a slow or failing notifier can
// never hold up or roll back a financial transaction.
type Dispatcher struct {
	notifier Notifier
	logger   *slog.Logger
	queue    chan Alert
}

// NewDispatcher builds a dispatcher with the given queue capacity.
func NewDispatcher(notifier Notifier, logger *slog.Logger, buffer int) *Dispatcher {
	if buffer <= 0 {
		buffer = 64
	}
	return &Dispatcher{
		notifier: notifier,
		logger:   logger,
		queue:    make(chan Alert, buffer),
	}
}

// Enqueue hands an alert to the delivery worker. It never blocks; when the
// queue is full the alert is dropped and logged.
func (d *Dispatcher) Enqueue(alert Alert) {
	select {
	case d.queue <- alert:
	default:
		d.logger.Warn("alert queue full, dropping alert",
			"kind", alert.Kind, "account_id", alert.AccountID)
	}
}

// Run consumes the queue until ctx is cancelled, then drains whatever is
// already buffered before returning.
func (d *Dispatcher) Run(ctx context.Context) {
	for {
		select {
		case alert := <-d.queue:
			d.deliver(ctx, alert)
		case <-ctx.Done():
			for {
				select {
				case alert := <-d.queue:
					d.deliver(context.Background(), alert)
				default:
					return
				}
			}
		}
	}
}

func (d *Dispatcher) deliver(ctx context.Context, alert Alert) {
	if err := d.notifier.Send(ctx, alert); err != nil {
		d.logger.Error("alert delivery failed",
			"kind", alert.Kind, "account_id", alert.AccountID, "error", err)
	}
}
