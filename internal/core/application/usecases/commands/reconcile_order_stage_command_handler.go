package commands

import (
	"context"
	"log/slog"
	"time"

	"ordertracker/internal/core/domain/model/kernel"
)

// ReconcileOrderStageCommandHandler rewrites an order's current stage and
// last change time from its newest ledger entry. The ledger is authoritative;
// the order row is only a cache of it.
type ReconcileOrderStageCommandHandler struct {
	uowFactory ReconcileUoWFactory
	logger     *slog.Logger
}

func NewReconcileOrderStageCommandHandler(uowFactory ReconcileUoWFactory, logger *slog.Logger) ReconcileOrderStageCommandHandler {
	return ReconcileOrderStageCommandHandler{
		uowFactory: uowFactory,
		logger:     logger.With("component", "stage_reconciler"),
	}
}

// Handle reports whether the cache had to be rewritten.
func (h ReconcileOrderStageCommandHandler) Handle(ctx context.Context, cmd ReconcileOrderStageCommand) (bool, error) {
	if err := cmd.Validate(); err != nil {
		return false, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return false, err
	}

	latest, err := uow.HistoryRepository().Latest(ctx, o.ID())
	if err != nil {
		return false, err
	}

	var (
		code string
		at   *time.Time
	)
	if latest != nil {
		code = latest.StageCode()
		createdAt := latest.CreatedAt()
		at = &createdAt
	}

	previous := o.CurrentStageCode()
	if !o.SyncStage(code, at) {
		return false, nil
	}

	if err = orderRepo.Update(ctx, o); err != nil {
		return false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return false, err
	}

	h.logger.WarnContext(ctx, "order stage cache repaired",
		"order_id", o.ID().String(),
		"cached_stage", previous,
		"ledger_stage", code)
	return true, nil
}

// InconsistentOrderLister finds orders whose cached stage disagrees with the
// newest ledger entry.
type InconsistentOrderLister interface {
	ListInconsistent(ctx context.Context, limit int) ([]kernel.UUID, error)
}

// ReconcileOrderStagesCommandHandler runs ReconcileOrderStageCommandHandler
// over every inconsistent order found in one batch. A failure on one order is
// logged and does not stop the batch.
type ReconcileOrderStagesCommandHandler struct {
	lister InconsistentOrderLister
	single ReconcileOrderStageCommandHandler
	logger *slog.Logger
}

func NewReconcileOrderStagesCommandHandler(
	lister InconsistentOrderLister,
	single ReconcileOrderStageCommandHandler,
	logger *slog.Logger,
) ReconcileOrderStagesCommandHandler {
	return ReconcileOrderStagesCommandHandler{
		lister: lister,
		single: single,
		logger: logger.With("component", "stage_reconciler"),
	}
}

// Handle returns the number of repaired orders.
func (h ReconcileOrderStagesCommandHandler) Handle(ctx context.Context, cmd ReconcileOrderStagesCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	ids, err := h.lister.ListInconsistent(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}

	repaired := 0
	for _, id := range ids {
		single, err := NewReconcileOrderStageCommand(id)
		if err != nil {
			return repaired, err
		}

		changed, err := h.single.Handle(ctx, single)
		if err != nil {
			h.logger.ErrorContext(ctx, "reconcile order failed", "order_id", id.String(), "error", err)
			continue
		}
		if changed {
			repaired++
		}
	}

	return repaired, nil
}
