package mocks

import (
	"context"
	"time"

	"github.com/RezaEskandarii/cronfire/types"
)

// MockCronJobStore is a mock implementation of store.CronJobStore for testing.
type MockCronJobStore struct {
	CreateFunc      func(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error)
	ListByOwnerFunc func(ctx context.Context, ownerID int64) ([]types.CronJob, error)
	ListAllFunc     func(ctx context.Context) ([]types.CronJob, error)
	ListDueFunc     func(ctx context.Context, asOf time.Time) ([]types.CronJob, error)
	MarkRunFunc     func(ctx context.Context, jobID int64, runAt time.Time) error
	CloseFunc       func() error
}

func (m *MockCronJobStore) Create(ctx context.Context, ownerID int64, message, schedule string) (*types.CronJob, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, message, schedule)
	}
	return &types.CronJob{ID: 1, UserID: ownerID, Message: message, Schedule: schedule, CreatedAt: time.Now()}, nil
}

func (m *MockCronJobStore) ListByOwner(ctx context.Context, ownerID int64) ([]types.CronJob, error) {
	if m.ListByOwnerFunc != nil {
		return m.ListByOwnerFunc(ctx, ownerID)
	}
	return []types.CronJob{}, nil
}

func (m *MockCronJobStore) ListAll(ctx context.Context) ([]types.CronJob, error) {
	if m.ListAllFunc != nil {
		return m.ListAllFunc(ctx)
	}
	return []types.CronJob{}, nil
}

func (m *MockCronJobStore) ListDue(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
	if m.ListDueFunc != nil {
		return m.ListDueFunc(ctx, asOf)
	}
	return []types.CronJob{}, nil
}

func (m *MockCronJobStore) MarkRun(ctx context.Context, jobID int64, runAt time.Time) error {
	if m.MarkRunFunc != nil {
		return m.MarkRunFunc(ctx, jobID, runAt)
	}
	return nil
}

func (m *MockCronJobStore) Close() error {
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}
