// internal/workers/tasks.go
package workers

// Task type names registered with the asynq mux. The scheduler
// enqueues the capture and cleanup tasks on a cron schedule; the
// refresh task is also enqueued ad hoc after bulk imports.
const (
	TypeSnapshotCapture  = "snapshot:capture"
	TypeRefreshAnalytics = "analytics:refresh"
	TypeCleanupOldData   = "cleanup:old_data"
)
