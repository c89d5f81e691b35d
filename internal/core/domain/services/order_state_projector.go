package services

import (
	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/stage"
)

// Projection is the derived view of an order: its current stage and a
// progress value in [0, 100].
type Projection struct {
	Stage           stage.Stage
	ProgressPercent int
	// Entry is the ledger row the projection was computed from.
	Entry history.Entry
}

// OrderStateProjector computes projections. It is pure: it never touches the
// order's cached stage.
//
// Example:
//
//	latest, err := historyRepo.Latest(ctx, orderID)
//	p, err := services.NewOrderStateProjector().Project(registry, latest)
//	if errors.Is(err, history.ErrNoHistory) {
//	    // order not started yet
//	}
type OrderStateProjector struct{}

func NewOrderStateProjector() OrderStateProjector {
	return OrderStateProjector{}
}

// Project returns history.ErrNoHistory when latest is nil and a validation
// error when the entry's stage is no longer registered.
func (OrderStateProjector) Project(registry *stage.Registry, latest *history.Entry) (Projection, error) {
	if latest == nil {
		return Projection{}, history.ErrNoHistory
	}

	if err := latest.Validate(); err != nil {
		return Projection{}, err
	}

	s, err := registry.Find(latest.StageCode())
	if err != nil {
		return Projection{}, err
	}

	pct, err := registry.Progress(s.Code())
	if err != nil {
		return Projection{}, err
	}

	return Projection{Stage: s, ProgressPercent: pct, Entry: *latest}, nil
}
