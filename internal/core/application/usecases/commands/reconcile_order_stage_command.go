package commands

import (
	"errors"

	"ordertracker/internal/core/domain/model/kernel"
	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

var (
	ErrReconcileOrderStageCommandIsNotConstructed = errors.New(
		"ReconcileOrderStageCommand must be created via NewReconcileOrderStageCommand constructor",
	)
	ErrReconcileOrderStagesCommandIsNotConstructed = errors.New(
		"ReconcileOrderStagesCommand must be created via NewReconcileOrderStagesCommand constructor",
	)
)

// ReconcileOrderStageCommand re-derives one order's cached stage from the ledger.
type ReconcileOrderStageCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewReconcileOrderStageCommand(orderID kernel.UUID) (ReconcileOrderStageCommand, error) {
	if err := orderID.Validate(); err != nil {
		return ReconcileOrderStageCommand{}, err
	}

	return ReconcileOrderStageCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c ReconcileOrderStageCommand) Validate() error {
	return c.guard.Validate(ErrReconcileOrderStageCommandIsNotConstructed)
}

func (c ReconcileOrderStageCommand) OrderID() kernel.UUID {
	return c.orderID
}

// ReconcileOrderStagesCommand repairs up to BatchSize orders whose cache
// disagrees with their newest ledger entry.
type ReconcileOrderStagesCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewReconcileOrderStagesCommand(batchSize int) (ReconcileOrderStagesCommand, error) {
	if batchSize <= 0 {
		return ReconcileOrderStagesCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}

	return ReconcileOrderStagesCommand{batchSize: batchSize, guard: guard.NewConstructorGuard()}, nil
}

func (c ReconcileOrderStagesCommand) Validate() error {
	return c.guard.Validate(ErrReconcileOrderStagesCommandIsNotConstructed)
}

func (c ReconcileOrderStagesCommand) BatchSize() int {
	return c.batchSize
}
