package store

import (
	"context"
	"time"

	"github.com/RezaEskandarii/cronfire/types"
)

// CronJobStore defines the interface for managing Cron Jobs in DB.
type CronJobStore interface {
	// Create validates the schedule and inserts a new job for ownerID.
	Create(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error)

	// ListByOwner returns the owner's jobs, most recently created first.
	ListByOwner(ctx context.Context, ownerID int64) ([]types.CronJob, error)

	// ListAll returns every stored job.
	ListAll(ctx context.Context) ([]types.CronJob, error)

	// ListDue returns the jobs whose next occurrence after their last run
	// (or creation, if they never ran) is at or before asOf.
	ListDue(ctx context.Context, asOf time.Time) ([]types.CronJob, error)

	// MarkRun stamps the job's last run. It never moves last_run backwards.
	MarkRun(ctx context.Context, jobID int64, runAt time.Time) error

	// Close closes the database
	Close() error
}
