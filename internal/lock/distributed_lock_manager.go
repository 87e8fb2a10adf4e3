package lock

import "context"

// DistributedLockManager serializes work that must run on at most one instance at a time.
type DistributedLockManager interface {
	Acquire(ctx context.Context, lockID int) error
	Release(lockID int) error
}
