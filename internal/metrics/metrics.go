// Package metrics exposes Prometheus collectors for the scheduler and auth flows.
// A nil *Metrics is valid and records nothing.
package metrics

import (
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "cronfire"

type Metrics struct {
	JobExecutions *prometheus.CounterVec
	JobDuration   prometheus.Histogram
	ArmedJobs     prometheus.Gauge
	Sweeps        *prometheus.CounterVec
	AuthAttempts  *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		JobExecutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_executions_total",
			Help:      "Cron job executions by result.",
		}, []string{"result"}),
		JobDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Time spent running a cron job action.",
			Buckets:   prometheus.DefBuckets,
		}),
		ArmedJobs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "armed_jobs",
			Help:      "Jobs currently armed in the reactive scheduler.",
		}),
		Sweeps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweeps_total",
			Help:      "Poller sweeps by result.",
		}, []string{"result"}),
		AuthAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_attempts_total",
			Help:      "Signup and login attempts by outcome.",
		}, []string{"operation", "outcome"}),
	}
}

func (m *Metrics) ObserveJob(result types.JobResult) {
	if m == nil {
		return
	}
	outcome := "success"
	if !result.Succeeded() {
		outcome = "failure"
	}
	m.JobExecutions.WithLabelValues(outcome).Inc()
	m.JobDuration.Observe(result.Duration.Seconds())
}

func (m *Metrics) SetArmed(n int) {
	if m == nil {
		return
	}
	m.ArmedJobs.Set(float64(n))
}

func (m *Metrics) Sweep(outcome string) {
	if m == nil {
		return
	}
	m.Sweeps.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AuthAttempt(operation, outcome string) {
	if m == nil {
		return
	}
	m.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}
