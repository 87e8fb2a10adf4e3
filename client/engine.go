package client

import (
	"context"
	"time"

	"github.com/RezaEskandarii/cronfire/internal/metrics"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/rs/zerolog"
)

// ScheduleEngine fires stored jobs at their cron occurrences.
// Exactly one engine runs per deployment.
type ScheduleEngine interface {
	// Start begins scheduling in the background and returns immediately.
	Start(ctx context.Context) error

	// Arm makes a newly created job eligible for firing.
	Arm(job types.CronJob) error

	// Cancel stops firing the job. Unknown ids are ignored.
	Cancel(jobID int64)

	// Stop halts scheduling and waits for in-flight executions or ctx, whichever ends first.
	Stop(ctx context.Context) error
}

type engineOptions struct {
	logger  zerolog.Logger
	metrics *metrics.Metrics
	now     func() time.Time
}

// EngineOption configures the executor and both engines.
type EngineOption func(*engineOptions)

func WithLogger(logger zerolog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) EngineOption {
	return func(o *engineOptions) {
		o.metrics = m
	}
}

// WithClock replaces time.Now. Engines evaluate schedules in UTC regardless of the clock's location.
func WithClock(now func() time.Time) EngineOption {
	return func(o *engineOptions) {
		o.now = now
	}
}

func newEngineOptions(opts []EngineOption) engineOptions {
	o := engineOptions{
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
