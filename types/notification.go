package types

import "time"

// Notification is what a fired job emits to the configured notifier.
type Notification struct {
	JobID   int64     `json:"job_id"`
	UserID  int64     `json:"user_id"`
	Message string    `json:"message"`
	FiredAt time.Time `json:"fired_at"`
}

func NewNotification(job CronJob, firedAt time.Time) Notification {
	return Notification{
		JobID:   job.ID,
		UserID:  job.UserID,
		Message: job.Message,
		FiredAt: firedAt,
	}
}
