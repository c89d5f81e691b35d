package jobs

import (
	"fmt"
	"log/slog"
)

// Schedules holds the cron expressions (with a seconds field) of each job.
type Schedules struct {
	CourierPush string
	Reconcile   string
}

func DefaultSchedules() Schedules {
	return Schedules{
		CourierPush: "*/5 * * * * *",
		Reconcile:   "0 */5 * * * *",
	}
}

// JobManager coordinates all scheduled jobs in the application.
type JobManager struct {
	courierPushJob    *CourierPushJob
	stageReconcileJob *StageReconcileJob
}

func NewJobManager(
	pushHandler CourierPushHandler,
	reconcileHandler StageReconcileHandler,
	schedules Schedules,
	logger *slog.Logger,
) *JobManager {
	defaults := DefaultSchedules()
	if schedules.CourierPush == "" {
		schedules.CourierPush = defaults.CourierPush
	}
	if schedules.Reconcile == "" {
		schedules.Reconcile = defaults.Reconcile
	}

	return &JobManager{
		courierPushJob:    NewCourierPushJob(pushHandler, schedules.CourierPush, logger),
		stageReconcileJob: NewStageReconcileJob(reconcileHandler, schedules.Reconcile, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.courierPushJob.Start(); err != nil {
		return fmt.Errorf("failed to start courier push job: %w", err)
	}

	if err := jm.stageReconcileJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.courierPushJob.Stop()
		return fmt.Errorf("failed to start stage reconcile job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs and waits for running ones to return.
func (jm *JobManager) StopAll() {
	jm.stageReconcileJob.Stop()
	jm.courierPushJob.Stop()
}
