package queries

import (
	"errors"

	"ordertracker/internal/core/domain/model/history"
	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/pkg/guard"
)

var (
	ErrGetCurrentStageQueryIsNotConstructed = errors.New(
		"GetCurrentStageQuery must be created via NewGetCurrentStageQuery constructor",
	)
)

// GetCurrentStageQuery projects an order's current stage from its ledger.
//
// Example:
//
//	query, err := NewGetCurrentStageQuery(orderID)
//	handler := NewGetCurrentStageQueryHandler(db, catalog)
//
//	current, err := handler.Handle(ctx, query)
//	if errors.Is(err, history.ErrNoHistory) {
//	    // not started yet
//	}
//	fmt.Printf("%s (%d%%)\n", current.Stage.DisplayName(), current.ProgressPercent)
type GetCurrentStageQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetCurrentStageQuery(orderID kernel.UUID) (GetCurrentStageQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetCurrentStageQuery{}, err
	}

	return GetCurrentStageQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetCurrentStageQuery) Validate() error {
	return q.guard.Validate(ErrGetCurrentStageQueryIsNotConstructed)
}

func (q GetCurrentStageQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetCurrentStageQueryResponse is the projection of one order together with
// the ledger entry it was derived from.
type GetCurrentStageQueryResponse struct {
	OrderID         kernel.UUID
	Stage           stage.Stage
	ProgressPercent int
	Entry           history.Entry
}
