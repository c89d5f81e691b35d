package jobs

import (
	"context"
	"log/slog"

	"ordertracker/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

const pushBatchSize = 50

type CourierPushHandler interface {
	Handle(ctx context.Context, cmd commands.PushCourierStatusesCommand) error
}

// CourierPushJob drains the courier push outbox on a schedule.
type CourierPushJob struct {
	handler  CourierPushHandler
	schedule string
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewCourierPushJob(handler CourierPushHandler, schedule string, logger *slog.Logger) *CourierPushJob {
	return &CourierPushJob{
		handler:  handler,
		schedule: schedule,
		cron:     cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:   logger.With("component", "courier_push_job"),
	}
}

func (j *CourierPushJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Courier push job started", "schedule", j.schedule)
	return nil
}

func (j *CourierPushJob) run() {
	ctx := context.Background()

	cmd, err := commands.NewPushCourierStatusesCommand(pushBatchSize)
	if err != nil {
		j.logger.ErrorContext(ctx, "Courier push job misconfigured", "error", err)
		return
	}

	if err = j.handler.Handle(ctx, cmd); err != nil {
		j.logger.ErrorContext(ctx, "Courier push job failed", "error", err)
	}
}

// Stop waits for a running drain to finish.
func (j *CourierPushJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Courier push job stopped")
}
