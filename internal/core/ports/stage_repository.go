package ports

import (
	"context"

	"ordertracker/internal/core/domain/model/stage"
)

// StageRepository reads and seeds the stage registry table.
type StageRepository interface {
	List(ctx context.Context) ([]stage.Stage, error)

	// Upsert inserts or updates stages by code. Only migration and seeding
	// tooling calls it.
	Upsert(ctx context.Context, stages []stage.Stage) error
}

// StageCatalog serves the stage registry for the process lifetime.
type StageCatalog interface {
	Registry(ctx context.Context) (*stage.Registry, error)
	Refresh(ctx context.Context) error
}
