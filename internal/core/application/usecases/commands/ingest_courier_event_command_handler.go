package commands

import (
	"context"
	"errors"
	"log/slog"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/ports"
	"ordertracker/internal/pkg/errs"
)

// ExternalRefResolver finds our order id for a courier shipment reference.
type ExternalRefResolver interface {
	FindIDByExternalRef(ctx context.Context, externalRef string) (kernel.UUID, error)
}

// TransitionHandler is the Transition Authority as seen by ingestion.
type TransitionHandler interface {
	Handle(ctx context.Context, cmd TransitionOrderCommand) (history.Entry, error)
}

// IngestCourierEventResult tells the webhook what happened to an event.
// Applied is false when the code was unknown and the event was dropped.
type IngestCourierEventResult struct {
	Applied       bool
	InternalStage string
	Entry         history.Entry
}

// IngestCourierEventCommandHandler translates courier events into
// transitions performed by the external system.
//
// Unknown external codes, and codes mapping to a stage that is not
// registered, are logged and dropped without touching the ledger.
type IngestCourierEventCommandHandler struct {
	vocabulary ports.CourierVocabulary
	catalog    ports.StageCatalog
	resolver   ExternalRefResolver
	transition TransitionHandler
	metrics    ports.Metrics
	logger     *slog.Logger
}

func NewIngestCourierEventCommandHandler(
	vocabulary ports.CourierVocabulary,
	catalog ports.StageCatalog,
	resolver ExternalRefResolver,
	transition TransitionHandler,
	metrics ports.Metrics,
	logger *slog.Logger,
) IngestCourierEventCommandHandler {
	return IngestCourierEventCommandHandler{
		vocabulary: vocabulary,
		catalog:    catalog,
		resolver:   resolver,
		transition: transition,
		metrics:    metrics,
		logger:     logger.With("component", "courier_webhook"),
	}
}

func (h IngestCourierEventCommandHandler) Handle(
	ctx context.Context,
	cmd IngestCourierEventCommand,
) (result IngestCourierEventResult, err error) {
	if err = cmd.Validate(); err != nil {
		return IngestCourierEventResult{}, err
	}

	defer func() {
		h.metrics.WebhookEventObserved(ingestOutcome(result, err))
	}()

	internal, ok := h.vocabulary.ToInternal(cmd.ExternalCode())
	if !ok {
		h.logSkipped(ctx, cmd, "unknown external status code")
		return IngestCourierEventResult{}, nil
	}

	registry, err := h.catalog.Registry(ctx)
	if err != nil {
		return IngestCourierEventResult{}, err
	}
	if !registry.Contains(internal) {
		h.logSkipped(ctx, cmd, "external status code maps to an unregistered stage", "internal_code", internal)
		return IngestCourierEventResult{}, nil
	}

	orderID, err := h.resolveOrderID(ctx, cmd)
	if err != nil {
		return IngestCourierEventResult{}, err
	}

	lat, lng := cmd.Coordinate()
	transition, err := NewTransitionOrderCommand(orderID, history.ExternalSystemActor(), internal, cmd.Note(), lat, lng)
	if err != nil {
		return IngestCourierEventResult{}, err
	}

	entry, err := h.transition.Handle(ctx, transition)
	if err != nil {
		h.logger.WarnContext(ctx, "courier event rejected",
			"order_id", orderID.String(),
			"external_code", cmd.ExternalCode(),
			"internal_code", internal,
			"error", err)
		return IngestCourierEventResult{}, err
	}

	return IngestCourierEventResult{Applied: true, InternalStage: internal, Entry: entry}, nil
}

func (h IngestCourierEventCommandHandler) resolveOrderID(ctx context.Context, cmd IngestCourierEventCommand) (kernel.UUID, error) {
	if id := cmd.OrderID(); id != nil {
		return *id, nil
	}
	return h.resolver.FindIDByExternalRef(ctx, cmd.ExternalRef())
}

func (h IngestCourierEventCommandHandler) logSkipped(ctx context.Context, cmd IngestCourierEventCommand, msg string, attrs ...any) {
	attrs = append(attrs,
		"external_code", cmd.ExternalCode(),
		"external_order_ref", cmd.ExternalRef())
	if id := cmd.OrderID(); id != nil {
		attrs = append(attrs, "order_id", id.String())
	}
	h.logger.WarnContext(ctx, msg, attrs...)
}

func ingestOutcome(result IngestCourierEventResult, err error) string {
	switch {
	case err == nil && result.Applied:
		return "applied"
	case err == nil:
		return "skipped"
	case errors.Is(err, errs.ErrObjectNotFound):
		return "not_found"
	case errors.Is(err, errs.ErrPermissionDenied), errs.IsValidation(err):
		return "rejected"
	default:
		return "failed"
	}
}
