package store

import "errors"

var (
	// ErrInvalidSchedule is returned when a job's schedule is not a valid cron expression.
	ErrInvalidSchedule = errors.New("invalid schedule expression")
	// ErrOwnerNotFound is returned when a job references a user that does not exist.
	ErrOwnerNotFound = errors.New("owner not found")
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a uniqueness constraint rejects a write.
	ErrConflict = errors.New("record already exists")
	// ErrStorage wraps any other persistence failure.
	ErrStorage = errors.New("storage failure")
)
