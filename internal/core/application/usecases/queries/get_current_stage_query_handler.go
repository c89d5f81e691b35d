package queries

import (
	"context"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/services"
	"ordertracker/internal/core/ports"

	"gorm.io/gorm"
)

// GetCurrentStageQueryHandler reads the newest ledger row of an order and
// projects it onto the stage registry. The cached stage on the order row is
// never consulted.
type GetCurrentStageQueryHandler struct {
	db        *gorm.DB
	catalog   ports.StageCatalog
	projector services.OrderStateProjector
}

func NewGetCurrentStageQueryHandler(db *gorm.DB, catalog ports.StageCatalog) GetCurrentStageQueryHandler {
	return GetCurrentStageQueryHandler{
		db:        db,
		catalog:   catalog,
		projector: services.NewOrderStateProjector(),
	}
}

// Handle returns errs.ObjectNotFoundError for an unknown order and
// history.ErrNoHistory for an order without transitions.
func (h GetCurrentStageQueryHandler) Handle(
	ctx context.Context,
	query GetCurrentStageQuery,
) (GetCurrentStageQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetCurrentStageQueryResponse{}, err
	}

	registry, err := h.catalog.Registry(ctx)
	if err != nil {
		return GetCurrentStageQueryResponse{}, err
	}

	if err = requireOrder(ctx, h.db, query.OrderID()); err != nil {
		return GetCurrentStageQueryResponse{}, err
	}

	entries, err := selectEntries(ctx, h.db, `
		SELECT seq, order_id, stage_code, note, lat, lng, source, actor_id, created_at
		FROM status_history
		WHERE order_id = ?
		ORDER BY seq DESC
		LIMIT 1
	`, query.OrderID().Value())
	if err != nil {
		return GetCurrentStageQueryResponse{}, err
	}

	var latest *history.Entry
	if len(entries) > 0 {
		latest = &entries[0]
	}

	projection, err := h.projector.Project(registry, latest)
	if err != nil {
		return GetCurrentStageQueryResponse{}, err
	}

	return GetCurrentStageQueryResponse{
		OrderID:         query.OrderID(),
		Stage:           projection.Stage,
		ProgressPercent: projection.ProgressPercent,
		Entry:           projection.Entry,
	}, nil
}
