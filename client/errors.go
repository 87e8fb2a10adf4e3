package client

import "errors"

var (
	// ErrInvalidExpression is returned when a job's schedule cannot be armed.
	ErrInvalidExpression = errors.New("invalid cron expression")

	// ErrExecutionFailed wraps any failure of a job action, including timeouts.
	ErrExecutionFailed = errors.New("job execution failed")

	ErrAlreadyStarted = errors.New("schedule engine already started")
)
