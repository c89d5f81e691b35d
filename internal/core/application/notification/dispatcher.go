// Package notification fans stage changes out to the in-app and email sinks.
package notification

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/ports"
)

const defaultTimeout = 10 * time.Second

type recipient struct {
	userID kernel.UUID
	role   string
	email  string
}

// Dispatcher implements ports.Notifier. Each Notify call runs detached from
// the caller's context and is bounded by the configured timeout; sink errors
// are logged and counted, never returned.
type Dispatcher struct {
	sinks   []ports.NotificationSink
	timeout time.Duration
	metrics ports.Metrics
	logger  *slog.Logger

	wg sync.WaitGroup
}

func NewDispatcher(
	sinks []ports.NotificationSink,
	timeout time.Duration,
	metrics ports.Metrics,
	logger *slog.Logger,
) *Dispatcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Dispatcher{
		sinks:   sinks,
		timeout: timeout,
		metrics: metrics,
		logger:  logger.With("component", "notification_dispatcher"),
	}
}

// Notify schedules delivery of change to the buyer and the seller and returns
// immediately.
func (d *Dispatcher) Notify(ctx context.Context, change ports.StageChange) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), d.timeout)
		defer cancel()

		d.dispatch(sendCtx, change)
	}()
}

// Wait blocks until every scheduled delivery finished. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) dispatch(ctx context.Context, change ports.StageChange) {
	recipients := []recipient{
		{userID: change.BuyerID, role: "buyer", email: change.ContactEmail},
		{userID: change.SellerID, role: "seller"},
	}

	for _, r := range recipients {
		payload := map[string]any{
			"orderId":       change.OrderID.String(),
			"previousStage": change.PreviousStage,
			"newStage":      change.NewStage,
			"source":        change.Source.String(),
			"changedAt":     change.ChangedAt.UTC().Format(time.RFC3339),
			"role":          r.role,
		}
		if r.email != "" {
			payload["email"] = r.email
		}

		for _, sink := range d.sinks {
			d.send(ctx, sink, r, payload)
		}
	}
}

func (d *Dispatcher) send(ctx context.Context, sink ports.NotificationSink, r recipient, payload map[string]any) {
	err := sink.Send(ctx, r.userID, ports.TemplateOrderStageChanged, payload)
	switch {
	case err == nil:
		d.metrics.NotificationObserved(sink.Channel(), "sent")
	case errors.Is(err, ports.ErrRecipientUnreachable):
		d.metrics.NotificationObserved(sink.Channel(), "skipped")
	default:
		d.metrics.NotificationObserved(sink.Channel(), "failed")
		d.logger.WarnContext(ctx, "notification failed",
			"channel", sink.Channel(),
			"order_id", payload["orderId"],
			"user_id", r.userID.String(),
			"error", err)
	}
}
