package commands

import (
	"errors"

	"ordertracker/internal/pkg/errs"
	"ordertracker/internal/pkg/guard"
)

var ErrPushCourierStatusesCommandIsNotConstructed = errors.New(
	"PushCourierStatusesCommand must be created via NewPushCourierStatusesCommand constructor",
)

// PushCourierStatusesCommand drains up to BatchSize due rows of the outbox.
type PushCourierStatusesCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

func NewPushCourierStatusesCommand(batchSize int) (PushCourierStatusesCommand, error) {
	if batchSize <= 0 {
		return PushCourierStatusesCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, "unbounded")
	}

	return PushCourierStatusesCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

func (c PushCourierStatusesCommand) Validate() error {
	return c.guard.Validate(ErrPushCourierStatusesCommandIsNotConstructed)
}

func (c PushCourierStatusesCommand) BatchSize() int {
	return c.batchSize
}
