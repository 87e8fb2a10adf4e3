package client

import (
	"context"
	"sync"
	"time"

	"github.com/RezaEskandarii/cronfire/internal/constants"
	"github.com/RezaEskandarii/cronfire/internal/lock"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/pgk/parser"
	"github.com/RezaEskandarii/cronfire/types"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultSweepInterval = 30 * time.Second
	DefaultWorkerCount   = 4
)

// CronJobManager is the sweep poller. Every interval it selects the jobs that
// became due since their last run and executes them with bounded concurrency.
// A crash between execution and the last-run stamp re-runs the job on the next sweep.
type CronJobManager struct {
	jobStore store.CronJobStore
	lock     lock.DistributedLockManager
	executor *Executor
	interval time.Duration
	sem      *semaphore.Weighted
	engineOptions

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewCronJobManager(cronJobStore store.CronJobStore, lock lock.DistributedLockManager, executor *Executor,
	interval time.Duration, workerCount int, opts ...EngineOption) *CronJobManager {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if workerCount < 1 {
		workerCount = DefaultWorkerCount
	}
	o := newEngineOptions(opts)
	o.logger = o.logger.With().Str("engine", "poller").Logger()
	return &CronJobManager{
		jobStore:      cronJobStore,
		lock:          lock,
		executor:      executor,
		interval:      interval,
		sem:           semaphore.NewWeighted(int64(workerCount)),
		engineOptions: o,
	}
}

func (cm *CronJobManager) Start(ctx context.Context) error {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.cancel != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	cm.cancel = cancel
	cm.done = make(chan struct{})

	go cm.loop(runCtx, cm.done)
	cm.logger.Info().Dur("interval", cm.interval).Msg("cron job manager started")
	return nil
}

func (cm *CronJobManager) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(cm.interval)
	defer ticker.Stop()

	for {
		if _, err := cm.RunOnce(ctx); err != nil && ctx.Err() == nil {
			cm.logger.Error().Err(err).Msg("sweep failed")
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// Stop cancels the sweep loop and waits for the current sweep to drain.
func (cm *CronJobManager) Stop(ctx context.Context) error {
	cm.mu.Lock()
	cancel, done := cm.cancel, cm.done
	cm.cancel, cm.done = nil, nil
	cm.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()

	select {
	case <-done:
		cm.logger.Info().Msg("cron job manager stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Arm only validates the schedule; the next sweep picks the job up from the store.
func (cm *CronJobManager) Arm(job types.CronJob) error {
	if err := parser.Validate(job.Schedule); err != nil {
		return wrapExpression(err)
	}
	return nil
}

// Cancel is a no-op for the poller, which holds no per-job state between sweeps.
func (cm *CronJobManager) Cancel(jobID int64) {}

// RunOnce performs a single sweep and returns how many jobs it executed.
// It holds the cron advisory lock until every job of the sweep has finished.
func (cm *CronJobManager) RunOnce(ctx context.Context) (int, error) {
	if err := cm.lock.Acquire(ctx, constants.CronJobLock); err != nil {
		cm.metrics.Sweep("lock_error")
		return 0, err
	}
	defer func() {
		if err := cm.lock.Release(constants.CronJobLock); err != nil {
			cm.logger.Warn().Err(err).Msg("failed to release cron job lock")
		}
	}()

	asOf := cm.now().UTC()
	jobs, err := cm.jobStore.ListDue(ctx, asOf)
	if err != nil {
		cm.metrics.Sweep("error")
		return 0, err
	}

	var wg sync.WaitGroup
	executed := 0
	for _, job := range jobs {
		if err := cm.sem.Acquire(ctx, 1); err != nil {
			cm.logger.Warn().Err(err).Msg("sweep interrupted")
			break
		}
		executed++
		wg.Add(1)

		go func(job types.CronJob) {
			defer cm.sem.Release(1)
			defer wg.Done()
			cm.executor.Execute(ctx, job, asOf)
		}(job)
	}
	wg.Wait()

	cm.metrics.Sweep("success")
	if executed > 0 {
		cm.logger.Debug().Int("due", len(jobs)).Int("executed", executed).Msg("sweep finished")
	}
	return executed, nil
}
