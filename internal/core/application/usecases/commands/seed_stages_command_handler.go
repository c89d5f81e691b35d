package commands

import (
	"context"
	"log/slog"

	"ordertracker/internal/core/ports"
)

// SeedStagesCommandHandler upserts the stage catalog and reloads the cached
// registry. Stages missing from the command are kept: ledger rows may still
// refer to them.
type SeedStagesCommandHandler struct {
	uowFactory StageUoWFactory
	catalog    ports.StageCatalog
	logger     *slog.Logger
}

func NewSeedStagesCommandHandler(uowFactory StageUoWFactory, catalog ports.StageCatalog, logger *slog.Logger) SeedStagesCommandHandler {
	return SeedStagesCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		logger:     logger.With("component", "stage_seeder"),
	}
}

func (h SeedStagesCommandHandler) Handle(ctx context.Context, cmd SeedStagesCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err := uow.StageRepository().Upsert(ctx, cmd.Stages()); err != nil {
		return err
	}

	if err := uow.Commit(ctx); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "stage catalog seeded", "stages", len(cmd.Stages()))
	return h.catalog.Refresh(ctx)
}
