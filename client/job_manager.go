package client

import (
	"context"

	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/rs/zerolog"
)

// JobManager is the entry point for user-facing job operations.
type JobManager struct {
	CronJobStore store.CronJobStore
	engine       ScheduleEngine
	logger       zerolog.Logger
}

func NewJobManager(cronStore store.CronJobStore, engine ScheduleEngine, logger zerolog.Logger) *JobManager {
	return &JobManager{
		CronJobStore: cronStore,
		engine:       engine,
		logger:       logger,
	}
}

// CreateJob stores a reminder for ownerID and arms it on the running engine.
func (jm *JobManager) CreateJob(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error) {
	job, err := jm.CronJobStore.Create(ctx, ownerID, message, schedule)
	if err != nil {
		return nil, err
	}
	if err := jm.engine.Arm(*job); err != nil {
		jm.logger.Error().Err(err).Int64("job_id", job.ID).Msg("stored job could not be armed")
		return nil, err
	}
	jm.logger.Info().Int64("job_id", job.ID).Int64("user_id", ownerID).Str("schedule", job.Schedule).Msg("job scheduled")
	return job, nil
}

// ListJobs returns the owner's jobs, newest first.
func (jm *JobManager) ListJobs(ctx context.Context, ownerID int64) ([]types.CronJob, error) {
	return jm.CronJobStore.ListByOwner(ctx, ownerID)
}
