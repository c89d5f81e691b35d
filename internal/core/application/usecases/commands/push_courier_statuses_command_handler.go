package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"ordertracker/internal/core/ports"
	"ordertracker/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
)

// PushPolicy bounds delivery of a single outbox row.
type PushPolicy struct {
	// Timeout bounds one run of in-process retries for a row.
	Timeout time.Duration
	// Retries is the number of in-process retries after the first call.
	Retries uint64
	// RetryInterval is the first in-process backoff interval.
	RetryInterval time.Duration
	// MaxAttempts is the number of runs after which a row is given up.
	MaxAttempts int
	// RescheduleDelay is the delay before the second run; it doubles per run.
	RescheduleDelay time.Duration
	// Lease is how long each claimed row of a batch is held before another
	// instance may claim it again.
	Lease time.Duration
}

func DefaultPushPolicy() PushPolicy {
	return PushPolicy{
		Timeout:         10 * time.Second,
		Retries:         2,
		RetryInterval:   200 * time.Millisecond,
		MaxAttempts:     8,
		RescheduleDelay: 30 * time.Second,
		Lease:           15 * time.Second,
	}
}

const maxRescheduleDelay = time.Hour

// PushCourierStatusesCommandHandler delivers queued stage changes to the
// courier platform.
//
// Rows are leased in a short transaction with SKIP LOCKED, so several
// instances can drain the outbox concurrently, and no transaction is held open
// across courier calls: each outcome is recorded in its own transaction. A
// committed transition is never affected by what happens here: failures are
// rescheduled and, once attempts run out, the row is parked as failed and the
// upstream error is logged.
type PushCourierStatusesCommandHandler struct {
	uowFactory CourierPushUoWFactory
	client     ports.CourierClient
	vocabulary ports.CourierVocabulary
	policy     PushPolicy
	metrics    ports.Metrics
	logger     *slog.Logger
}

func NewPushCourierStatusesCommandHandler(
	uowFactory CourierPushUoWFactory,
	client ports.CourierClient,
	vocabulary ports.CourierVocabulary,
	policy PushPolicy,
	metrics ports.Metrics,
	logger *slog.Logger,
) PushCourierStatusesCommandHandler {
	defaults := DefaultPushPolicy()
	if policy.Timeout <= 0 {
		policy.Timeout = defaults.Timeout
	}
	if policy.RetryInterval <= 0 {
		policy.RetryInterval = defaults.RetryInterval
	}
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = defaults.MaxAttempts
	}
	if policy.RescheduleDelay <= 0 {
		policy.RescheduleDelay = defaults.RescheduleDelay
	}
	if policy.Lease < policy.Timeout {
		policy.Lease = policy.Timeout + policy.Timeout/2
	}

	return PushCourierStatusesCommandHandler{
		uowFactory: uowFactory,
		client:     client,
		vocabulary: vocabulary,
		policy:     policy,
		metrics:    metrics,
		logger:     logger.With("component", "courier_push"),
	}
}

func (h PushCourierStatusesCommandHandler) Handle(ctx context.Context, cmd PushCourierStatusesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	pushes, err := h.claim(ctx, cmd.BatchSize())
	if err != nil {
		return err
	}

	var failures []error
	for _, p := range pushes {
		if err = h.deliver(ctx, p); err != nil {
			h.logger.ErrorContext(ctx, "courier push outcome not recorded",
				"push_id", p.ID,
				"order_id", p.OrderID.String(),
				"error", err)
			failures = append(failures, err)
		}
	}

	return errors.Join(failures...)
}

func (h PushCourierStatusesCommandHandler) claim(ctx context.Context, limit int) ([]ports.CourierPush, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := time.Now()
	leaseUntil := now.Add(h.policy.Lease * time.Duration(limit))
	pushes, err := uow.CourierPushRepository().ClaimDue(ctx, now, leaseUntil, limit)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return pushes, nil
}

// record runs mark against the outbox in its own transaction.
func (h PushCourierStatusesCommandHandler) record(ctx context.Context, mark func(ports.CourierPushRepository) error) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := mark(uow.CourierPushRepository()); err != nil {
		return err
	}
	return uow.Commit(ctx)
}

func (h PushCourierStatusesCommandHandler) deliver(ctx context.Context, p ports.CourierPush) error {
	externalCode := h.vocabulary.ToExternal(p.StageCode)
	pushErr := h.push(ctx, p.ExternalOrderRef, externalCode)
	if pushErr == nil {
		h.metrics.CourierPushObserved("delivered")
		return h.record(ctx, func(repo ports.CourierPushRepository) error {
			return repo.MarkDelivered(ctx, p.ID)
		})
	}

	attempts := p.Attempts + 1
	if errors.Is(pushErr, ports.ErrCourierRejected) || attempts >= h.policy.MaxAttempts {
		h.metrics.CourierPushObserved("failed")
		h.logger.ErrorContext(ctx, "courier push abandoned",
			"push_id", p.ID,
			"order_id", p.OrderID.String(),
			"external_order_ref", p.ExternalOrderRef,
			"external_code", externalCode,
			"attempts", attempts,
			"error", errs.NewUpstreamError("courier", attempts, pushErr))
		return h.record(ctx, func(repo ports.CourierPushRepository) error {
			return repo.MarkFailed(ctx, p.ID, attempts, pushErr.Error())
		})
	}

	next := time.Now().Add(h.rescheduleDelay(attempts))
	h.metrics.CourierPushObserved("retry")
	h.logger.WarnContext(ctx, "courier push failed, rescheduled",
		"push_id", p.ID,
		"order_id", p.OrderID.String(),
		"attempts", attempts,
		"next_attempt_at", next,
		"error", pushErr)
	return h.record(ctx, func(repo ports.CourierPushRepository) error {
		return repo.MarkRetry(ctx, p.ID, attempts, pushErr.Error(), next)
	})
}

// push calls the courier with in-process exponential backoff. The last
// courier error is returned rather than the context error when time runs out.
func (h PushCourierStatusesCommandHandler) push(ctx context.Context, externalRef, externalCode string) error {
	ctx, cancel := context.WithTimeout(ctx, h.policy.Timeout)
	defer cancel()

	var lastErr error
	operation := func() error {
		err := h.client.PushStatus(ctx, externalRef, externalCode)
		if errors.Is(err, ports.ErrCourierRejected) {
			return backoff.Permanent(err)
		}
		if err != nil {
			lastErr = err
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = h.policy.RetryInterval
	b.MaxElapsedTime = h.policy.Timeout

	err := backoff.Retry(operation, backoff.WithContext(backoff.WithMaxRetries(b, h.policy.Retries), ctx))
	if err != nil && ctx.Err() != nil && lastErr != nil {
		return lastErr
	}
	return err
}

func (h PushCourierStatusesCommandHandler) rescheduleDelay(attempts int) time.Duration {
	delay := h.policy.RescheduleDelay
	for i := 1; i < attempts; i++ {
		delay *= 2
		if delay >= maxRescheduleDelay {
			return maxRescheduleDelay
		}
	}
	return delay
}
