package client

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/RezaEskandarii/cronfire/internal/state"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/pgk/parser"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type armedJob struct {
	entryID cron.EntryID
	state   state.JobState
	running sync.Mutex
}

// ReactiveScheduler registers one in-memory cron entry per job and fires it at
// each occurrence. A tick that arrives while the previous run of the same job
// is still in flight is skipped.
type ReactiveScheduler struct {
	jobStore store.CronJobStore
	executor *Executor
	engineOptions

	mu      sync.Mutex
	cron    *cron.Cron
	jobs    map[int64]*armedJob
	ctx     context.Context
	started bool
}

func NewReactiveScheduler(cronJobStore store.CronJobStore, executor *Executor, opts ...EngineOption) *ReactiveScheduler {
	o := newEngineOptions(opts)
	o.logger = o.logger.With().Str("engine", "reactive").Logger()
	return &ReactiveScheduler{
		jobStore:      cronJobStore,
		executor:      executor,
		engineOptions: o,
		jobs:          make(map[int64]*armedJob),
	}
}

// Start re-arms every stored job and starts the cron runner.
// A stored job whose schedule no longer parses is logged and skipped.
func (s *ReactiveScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return ErrAlreadyStarted
	}

	jobs, err := s.jobStore.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("load stored jobs: %w", err)
	}

	s.ctx = context.WithoutCancel(ctx)
	s.cron = cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLogger{s.logger}),
		cron.WithChain(cron.Recover(cronLogger{s.logger})),
	)
	for _, job := range jobs {
		if err := s.armLocked(job); err != nil {
			s.logger.Warn().Err(err).Int64("job_id", job.ID).Msg("skipping stored job")
		}
	}
	s.cron.Start()
	s.started = true

	s.logger.Info().Int("armed", len(s.jobs)).Msg("reactive scheduler started")
	return nil
}

// Arm registers the job. Arming an already armed job replaces its entry.
// Before Start the job is only validated; Start loads it from the store.
func (s *ReactiveScheduler) Arm(job types.CronJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		if err := parser.Validate(job.Schedule); err != nil {
			return wrapExpression(err)
		}
		return nil
	}
	return s.armLocked(job)
}

func (s *ReactiveScheduler) armLocked(job types.CronJob) error {
	schedule, err := parser.ParseCron(job.Schedule)
	if err != nil {
		return wrapExpression(err)
	}
	s.cancelLocked(job.ID)

	armed := &armedJob{state: state.StateArmed}
	armed.entryID = s.cron.Schedule(schedule, cron.FuncJob(func() {
		s.fire(job, armed)
	}))
	s.jobs[job.ID] = armed
	s.metrics.SetArmed(len(s.jobs))
	return nil
}

func (s *ReactiveScheduler) fire(job types.CronJob, armed *armedJob) {
	if !armed.running.TryLock() {
		s.logger.Warn().Int64("job_id", job.ID).Msg("previous run still in flight, skipping tick")
		return
	}
	defer armed.running.Unlock()

	if !s.transition(armed, state.StateFiring) {
		return
	}
	s.executor.Execute(s.ctx, job, s.now().UTC())
	s.transition(armed, state.StateArmed)
}

func (s *ReactiveScheduler) transition(armed *armedJob, to state.JobState) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !state.IsValidTransition(armed.state, to) {
		return false
	}
	armed.state = to
	return true
}

func (s *ReactiveScheduler) Cancel(jobID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(jobID)
}

func (s *ReactiveScheduler) cancelLocked(jobID int64) {
	armed, ok := s.jobs[jobID]
	if !ok {
		return
	}
	s.cron.Remove(armed.entryID)
	armed.state = state.StateCancelled
	delete(s.jobs, jobID)
	s.metrics.SetArmed(len(s.jobs))
}

// Stop removes every entry and waits for running actions to finish.
func (s *ReactiveScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return nil
	}
	for id := range s.jobs {
		s.cancelLocked(id)
	}
	s.started = false
	stopped := s.cron.Stop()
	s.mu.Unlock()

	select {
	case <-stopped.Done():
		s.logger.Info().Msg("reactive scheduler stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func wrapExpression(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidExpression, err)
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
