package types

import (
	"time"
)

// CronJob is a recurring reminder owned by a user.
// LastRun stays nil until the job fires for the first time.
type CronJob struct {
	ID        int64      `json:"id"`
	UserID    int64      `json:"user_id"`
	Message   string     `json:"message"`
	Schedule  string     `json:"schedule"`
	LastRun   *time.Time `json:"last_run"`
	CreatedAt time.Time  `json:"created_at"`
}

// Anchor returns the instant the next occurrence is computed from.
func (j CronJob) Anchor() time.Time {
	if j.LastRun != nil {
		return *j.LastRun
	}
	return j.CreatedAt
}
