package jobs

import (
	"context"
	"log/slog"

	"ordertracker/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const reconcileBatchSize = 100

type StageReconcileHandler interface {
	Handle(ctx context.Context, cmd commands.ReconcileOrderStagesCommand) (int, error)
}

// StageReconcileJob repairs order stage caches that drifted from the ledger.
type StageReconcileJob struct {
	handler  StageReconcileHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewStageReconcileJob(handler StageReconcileHandler, schedule string, logger *slog.Logger) *StageReconcileJob {
	return &StageReconcileJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "stage_reconcile_job"),
	}
}

func (j *StageReconcileJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stage reconcile job started", "schedule", j.schedule)
	return nil
}

func (j *StageReconcileJob) run() {
	ctx := context.Background()

	cmd, err := commands.NewReconcileOrderStagesCommand(reconcileBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Stage reconcile job misconfigured", "error", err)
		return
	}

	repaired, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Stage reconcile job failed", "error", err)
		return
	}
	if repaired > 0 {
		j.logger.WarnContext(ctx, "Repaired drifted order stages", "count", repaired)
	}
}

func (j *StageReconcileJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Stage reconcile job stopped")
}
