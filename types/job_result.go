package types

import (
	"time"
)

// JobResult describes one execution of a cron job action.
type JobResult struct {
	JobID    int64
	Err      error
	FiredAt  time.Time
	Duration time.Duration
}

// Succeeded reports whether the action completed without error.
func (r JobResult) Succeeded() bool {
	return r.Err == nil
}
