package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/services"
	"ordertracker/internal/core/ports"
	"ordertracker/internal/pkg/errs"
)

// TransitionOrderCommandHandler is the only writer of the status ledger.
//
// Within one transaction it locks the order row, checks permission, stage,
// coordinate and transition policy, appends the ledger entry, moves the
// order's cached stage and, when the stage changed on a seller request for an
// order known to the courier platform, queues an outbound push. After commit
// the notifier is told about the change.
//
// The previous stage is always the newest ledger entry, never the cached
// stage on the order row.
//
// Example:
//
//	handler := NewTransitionOrderCommandHandler(uowFactory, catalog, policy, notifier, metrics, logger)
//	entry, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, errs.ErrPermissionDenied): // 403
//	case errs.IsValidation(err):                  // 400
//	}
type TransitionOrderCommandHandler struct {
	uowFactory TransitionUoWFactory
	catalog    ports.StageCatalog
	policy     services.TransitionPolicy
	notifier   ports.Notifier
	metrics    ports.Metrics
	logger     *slog.Logger
}

func NewTransitionOrderCommandHandler(
	uowFactory TransitionUoWFactory,
	catalog ports.StageCatalog,
	policy services.TransitionPolicy,
	notifier ports.Notifier,
	metrics ports.Metrics,
	logger *slog.Logger,
) TransitionOrderCommandHandler {
	return TransitionOrderCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		policy:     policy,
		notifier:   notifier,
		metrics:    metrics,
		logger:     logger.With("component", "transition_authority"),
	}
}

// Handle returns the appended entry.
func (h TransitionOrderCommandHandler) Handle(ctx context.Context, cmd TransitionOrderCommand) (entry history.Entry, err error) {
	if err = cmd.Validate(); err != nil {
		return history.Entry{}, err
	}

	source := "user"
	if cmd.Actor().IsExternalSystem() {
		source = string(history.SourceExternalSystem)
	}
	defer func() {
		h.metrics.TransitionObserved(source, transitionResult(err))
	}()

	registry, err := h.catalog.Registry(ctx)
	if err != nil {
		return history.Entry{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return history.Entry{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	orderRepo := uow.OrderRepository()
	o, err := orderRepo.GetForUpdate(ctx, cmd.OrderID())
	if err != nil {
		return history.Entry{}, err
	}

	if err = o.AuthorizeTransition(cmd.Actor()); err != nil {
		return history.Entry{}, err
	}

	if !registry.Contains(cmd.StageCode()) {
		return history.Entry{}, errs.NewValueIsInvalidErrorWithCause("stageCode",
			fmt.Errorf("%q is not a registered stage", cmd.StageCode()))
	}

	point, err := kernel.NewOptionalGeoPoint(cmd.Coordinate())
	if err != nil {
		return history.Entry{}, err
	}

	ledger := uow.HistoryRepository()
	latest, err := ledger.Latest(ctx, o.ID())
	if err != nil {
		return history.Entry{}, err
	}
	previous := ""
	if latest != nil {
		previous = latest.StageCode()
	}

	if err = h.policy.Check(registry, previous, cmd.StageCode()); err != nil {
		return history.Entry{}, err
	}

	newEntry, err := history.NewEntry(o.ID(), cmd.StageCode(), cmd.Note(), point, cmd.Actor(), time.Now())
	if err != nil {
		return history.Entry{}, err
	}

	entry, err = ledger.Append(ctx, newEntry)
	if err != nil {
		return history.Entry{}, err
	}

	changed := previous != entry.StageCode()
	o.ApplyStage(entry.StageCode(), entry.CreatedAt())
	if err = orderRepo.Update(ctx, o); err != nil {
		return history.Entry{}, err
	}

	if changed && o.HasExternalRef() && !cmd.Actor().IsExternalSystem() {
		err = uow.CourierPushRepository().Enqueue(ctx, ports.CourierPush{
			OrderID:          o.ID(),
			ExternalOrderRef: o.ExternalRef(),
			StageCode:        entry.StageCode(),
			CreatedAt:        entry.CreatedAt(),
		})
		if err != nil {
			return history.Entry{}, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return history.Entry{}, err
	}

	h.logger.InfoContext(ctx, "order transitioned",
		"order_id", o.ID().String(),
		"previous_stage", previous,
		"stage", entry.StageCode(),
		"source", entry.Source().String(),
		"seq", entry.Seq())

	if changed {
		h.notifier.Notify(ctx, ports.StageChange{
			OrderID:       o.ID(),
			BuyerID:       o.BuyerID(),
			SellerID:      o.SellerID(),
			PreviousStage: previous,
			NewStage:      entry.StageCode(),
			Source:        entry.Source(),
			ContactEmail:  o.Delivery().ContactEmail(),
			ChangedAt:     entry.CreatedAt(),
		})
	}

	return entry, nil
}

func transitionResult(err error) string {
	switch {
	case err == nil:
		return "applied"
	case errors.Is(err, errs.ErrPermissionDenied):
		return "denied"
	case errs.IsValidation(err):
		return "rejected"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return "conflict"
	default:
		return "failed"
	}
}
