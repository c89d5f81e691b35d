// Package jobs provides scheduled background tasks for the order tracker.
//
// Jobs are cron-based (github.com/robfig/cron/v3, with a seconds field) and
// skip a tick while the previous run is still going.
//
// # Available Jobs
//
// 1. CourierPushJob - drains due rows of the courier push outbox
// 2. StageReconcileJob - rewrites order stage caches that disagree with the newest ledger entry
//
// # Usage
//
//	jobManager := jobs.NewJobManager(pushHandler, reconcileHandler, jobs.Schedules{
//		CourierPush: cfg.CourierPushSchedule,
//		Reconcile:   cfg.ReconcileSchedule,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// Failures are logged and the job keeps its schedule. Per-row and per-order
// failures are handled inside the command handlers and never stop a batch.
// Failed job starts stop any already running jobs.
package jobs
