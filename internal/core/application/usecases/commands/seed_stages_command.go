package commands

import (
	"errors"

	"ordertracker/internal/core/domain/model/stage"
	"ordertracker/internal/pkg/guard"
)

var ErrSeedStagesCommandIsNotConstructed = errors.New(
	"SeedStagesCommand must be created via NewSeedStagesCommand constructor",
)

// SeedStagesCommand carries a complete, consistent stage catalog.
type SeedStagesCommand struct { //nolint:recvcheck //using for validation
	stages []stage.Stage

	guard guard.ConstructorGuard
}

// NewSeedStagesCommand rejects an empty catalog and duplicate codes or
// positions.
func NewSeedStagesCommand(stages []stage.Stage) (SeedStagesCommand, error) {
	registry, err := stage.NewRegistry(stages)
	if err != nil {
		return SeedStagesCommand{}, err
	}

	return SeedStagesCommand{stages: registry.Stages(), guard: guard.NewConstructorGuard()}, nil
}

func (c SeedStagesCommand) Validate() error {
	return c.guard.Validate(ErrSeedStagesCommandIsNotConstructed)
}

func (c SeedStagesCommand) Stages() []stage.Stage {
	return c.stages
}
