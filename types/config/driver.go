package config

import (
	"fmt"
	"strings"
)

type StorageDriver int

const (
	Postgres StorageDriver = iota + 1
)

// String converts the StorageDriver enum to a human-readable string.
func (d StorageDriver) String() string {
	switch d {
	case Postgres:
		return "postgres"
	}
	return "unknown"
}

// SchedulerMode selects the single schedule engine of a deployment.
type SchedulerMode int

const (
	// Poller sweeps the store for due jobs on a fixed interval.
	Poller SchedulerMode = iota + 1
	// Reactive keeps one in-memory cron entry per job.
	Reactive
)

func (m SchedulerMode) String() string {
	switch m {
	case Poller:
		return "poller"
	case Reactive:
		return "reactive"
	default:
		return "unknown"
	}
}

func ParseSchedulerMode(s string) (SchedulerMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "poller":
		return Poller, nil
	case "reactive":
		return Reactive, nil
	default:
		return 0, fmt.Errorf("unknown scheduler mode %q", s)
	}
}

// NotifierDriver selects where fired reminders are delivered.
type NotifierDriver int

const (
	LogNotifier NotifierDriver = iota + 1
	RabbitMQ
	Redis
)

func (d NotifierDriver) String() string {
	switch d {
	case LogNotifier:
		return "log"
	case RabbitMQ:
		return "rabbitmq"
	case Redis:
		return "redis"
	default:
		return "unknown"
	}
}

func ParseNotifierDriver(s string) (NotifierDriver, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "log":
		return LogNotifier, nil
	case "rabbitmq":
		return RabbitMQ, nil
	case "redis":
		return Redis, nil
	default:
		return 0, fmt.Errorf("unknown notifier driver %q", s)
	}
}
