package client

import (
	"context"
	"fmt"
	"time"

	"github.com/RezaEskandarii/cronfire/internal/notifier"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/types"
)

const markRunTimeout = 5 * time.Second

// Executor runs a job's action and records the run.
type Executor struct {
	jobStore store.CronJobStore
	notifier notifier.Notifier
	timeout  time.Duration
	engineOptions
}

// NewExecutor returns an executor that bounds each action by timeout. A zero timeout means no bound.
func NewExecutor(jobStore store.CronJobStore, n notifier.Notifier, timeout time.Duration, opts ...EngineOption) *Executor {
	return &Executor{
		jobStore:      jobStore,
		notifier:      n,
		timeout:       timeout,
		engineOptions: newEngineOptions(opts),
	}
}

// Execute emits the job's message and then stamps its last run with firedAt,
// whether or not the action succeeded.
// Cancelling ctx does not interrupt an action that already started.
func (e *Executor) Execute(ctx context.Context, job types.CronJob, firedAt time.Time) types.JobResult {
	runCtx := context.WithoutCancel(ctx)
	actionCtx, cancel := runCtx, context.CancelFunc(func() {})
	if e.timeout > 0 {
		actionCtx, cancel = context.WithTimeout(runCtx, e.timeout)
	}
	defer cancel()

	start := e.now()
	err := e.notifier.Notify(actionCtx, types.NewNotification(job, firedAt))
	result := types.JobResult{
		JobID:    job.ID,
		FiredAt:  firedAt,
		Duration: e.now().Sub(start),
	}
	if err != nil {
		result.Err = fmt.Errorf("%w: job %d: %w", ErrExecutionFailed, job.ID, err)
		e.logger.Error().Err(err).Int64("job_id", job.ID).Msg("job action failed")
	} else {
		e.logger.Debug().Int64("job_id", job.ID).Dur("duration", result.Duration).Msg("job fired")
	}
	e.metrics.ObserveJob(result)

	markCtx, cancelMark := context.WithTimeout(runCtx, markRunTimeout)
	defer cancelMark()
	if err := e.jobStore.MarkRun(markCtx, job.ID, firedAt); err != nil {
		e.logger.Error().Err(err).Int64("job_id", job.ID).Msg("failed to record job run")
	}

	return result
}
