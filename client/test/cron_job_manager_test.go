package test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/RezaEskandarii/cronfire/client"
	"github.com/RezaEskandarii/cronfire/client/test/mocks"
	"github.com/RezaEskandarii/cronfire/internal/constants"
	"github.com/RezaEskandarii/cronfire/internal/metrics"
	"github.com/RezaEskandarii/cronfire/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type lockRecorder struct {
	mu       sync.Mutex
	acquired []int
	released []int
}

func (r *lockRecorder) manager() *mocks.MockDistributedLockManager {
	return &mocks.MockDistributedLockManager{
		AcquireFunc: func(ctx context.Context, lockID int) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.acquired = append(r.acquired, lockID)
			return nil
		},
		ReleaseFunc: func(lockID int) error {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.released = append(r.released, lockID)
			return nil
		},
	}
}

func fixedClock(t time.Time) client.EngineOption {
	return client.WithClock(func() time.Time { return t })
}

func TestCronJobManager_RunOnce_ExecutesDueJobs(t *testing.T) {
	// The clock runs in a non-UTC zone; sweeps must still evaluate in UTC.
	now := firedAt.In(time.FixedZone("UTC+2", 2*60*60))
	cronStore := &mocks.MockCronJobStore{}
	marks := newMarkRecorder(cronStore)

	var asOfSeen time.Time
	cronStore.ListDueFunc = func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
		asOfSeen = asOf
		return []types.CronJob{sampleJob(1), sampleJob(2), sampleJob(3)}, nil
	}

	locks := &lockRecorder{}
	n := &mocks.MockNotifier{}
	executor := client.NewExecutor(cronStore, n, time.Second)
	cm := client.NewCronJobManager(cronStore, locks.manager(), executor, time.Minute, 2, fixedClock(now))

	executed, err := cm.RunOnce(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 3, executed)
	assert.Equal(t, time.UTC, asOfSeen.Location())
	assert.True(t, asOfSeen.Equal(firedAt))
	assert.Len(t, n.Sent(), 3)
	for _, id := range []int64{1, 2, 3} {
		at, ok := marks.get(id)
		require.True(t, ok, "job %d was not stamped", id)
		assert.True(t, at.Equal(firedAt))
	}
	assert.Equal(t, []int{constants.CronJobLock}, locks.acquired)
	assert.Equal(t, []int{constants.CronJobLock}, locks.released)
}

func TestCronJobManager_RunOnce_BoundsConcurrency(t *testing.T) {
	cronStore := &mocks.MockCronJobStore{
		ListDueFunc: func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
			jobs := make([]types.CronJob, 6)
			for i := range jobs {
				jobs[i] = sampleJob(int64(i + 1))
			}
			return jobs, nil
		},
	}

	var inFlight, maxInFlight int32
	n := &mocks.MockNotifier{NotifyFunc: func(ctx context.Context, _ types.Notification) error {
		cur := atomic.AddInt32(&inFlight, 1)
		for {
			prev := atomic.LoadInt32(&maxInFlight)
			if cur <= prev || atomic.CompareAndSwapInt32(&maxInFlight, prev, cur) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&inFlight, -1)
		return nil
	}}

	executor := client.NewExecutor(cronStore, n, time.Second)
	cm := client.NewCronJobManager(cronStore, &mocks.MockDistributedLockManager{}, executor, time.Minute, 2)

	executed, err := cm.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, executed)
	assert.LessOrEqual(t, atomic.LoadInt32(&maxInFlight), int32(2))
	assert.Len(t, n.Sent(), 6)
}

func TestCronJobManager_RunOnce_FailingJobDoesNotStopSweep(t *testing.T) {
	cronStore := &mocks.MockCronJobStore{
		ListDueFunc: func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
			return []types.CronJob{sampleJob(1), sampleJob(2)}, nil
		},
	}
	marks := newMarkRecorder(cronStore)
	n := &mocks.MockNotifier{NotifyFunc: func(ctx context.Context, msg types.Notification) error {
		if msg.JobID == 1 {
			return errors.New("smtp down")
		}
		return nil
	}}
	executor := client.NewExecutor(cronStore, n, time.Second)
	cm := client.NewCronJobManager(cronStore, &mocks.MockDistributedLockManager{}, executor, time.Minute, 1)

	executed, err := cm.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, executed)
	assert.Equal(t, 2, marks.count())
}

func TestCronJobManager_RunOnce_LockError(t *testing.T) {
	listCalled := false
	cronStore := &mocks.MockCronJobStore{
		ListDueFunc: func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
			listCalled = true
			return nil, nil
		},
	}
	lockMgr := &mocks.MockDistributedLockManager{
		AcquireFunc: func(ctx context.Context, lockID int) error { return errors.New("lock timeout") },
	}
	m := metrics.New(prometheus.NewRegistry())
	executor := client.NewExecutor(cronStore, &mocks.MockNotifier{}, time.Second)
	cm := client.NewCronJobManager(cronStore, lockMgr, executor, time.Minute, 1, client.WithMetrics(m))

	_, err := cm.RunOnce(context.Background())
	assert.EqualError(t, err, "lock timeout")
	assert.False(t, listCalled)
	assert.Equal(t, float64(1), testutil.ToFloat64(m.Sweeps.WithLabelValues("lock_error")))
}

func TestCronJobManager_RunOnce_ListDueErrorReleasesLock(t *testing.T) {
	cronStore := &mocks.MockCronJobStore{
		ListDueFunc: func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
			return nil, errors.New("query failed")
		},
	}
	locks := &lockRecorder{}
	executor := client.NewExecutor(cronStore, &mocks.MockNotifier{}, time.Second)
	cm := client.NewCronJobManager(cronStore, locks.manager(), executor, time.Minute, 1)

	_, err := cm.RunOnce(context.Background())
	assert.EqualError(t, err, "query failed")
	assert.Equal(t, []int{constants.CronJobLock}, locks.released)
}

func TestCronJobManager_StartSweepsAndStops(t *testing.T) {
	sweeps := make(chan struct{}, 10)
	cronStore := &mocks.MockCronJobStore{
		ListDueFunc: func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
			sweeps <- struct{}{}
			return []types.CronJob{}, nil
		},
	}
	executor := client.NewExecutor(cronStore, &mocks.MockNotifier{}, time.Second)
	cm := client.NewCronJobManager(cronStore, &mocks.MockDistributedLockManager{}, executor, time.Hour, 1)

	require.NoError(t, cm.Start(context.Background()))
	assert.ErrorIs(t, cm.Start(context.Background()), client.ErrAlreadyStarted)

	select {
	case <-sweeps:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate sweep on start")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, cm.Stop(ctx))
	assert.NoError(t, cm.Stop(ctx))
}

func TestCronJobManager_StopWaitsForInFlightJobs(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	cronStore := &mocks.MockCronJobStore{
		ListDueFunc: func(ctx context.Context, asOf time.Time) ([]types.CronJob, error) {
			return []types.CronJob{sampleJob(1)}, nil
		},
	}
	marks := newMarkRecorder(cronStore)
	var once sync.Once
	n := &mocks.MockNotifier{NotifyFunc: func(ctx context.Context, _ types.Notification) error {
		once.Do(func() { close(started) })
		<-release
		return nil
	}}
	executor := client.NewExecutor(cronStore, n, time.Second)
	cm := client.NewCronJobManager(cronStore, &mocks.MockDistributedLockManager{}, executor, time.Hour, 1)

	require.NoError(t, cm.Start(context.Background()))
	<-started

	stopped := make(chan error, 1)
	go func() { stopped <- cm.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while a job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.NoError(t, <-stopped)
	_, ok := marks.get(1)
	assert.True(t, ok)
}

func TestCronJobManager_Arm(t *testing.T) {
	executor := client.NewExecutor(&mocks.MockCronJobStore{}, &mocks.MockNotifier{}, time.Second)
	cm := client.NewCronJobManager(&mocks.MockCronJobStore{}, &mocks.MockDistributedLockManager{}, executor, time.Minute, 1)

	assert.NoError(t, cm.Arm(sampleJob(1)))

	bad := sampleJob(2)
	bad.Schedule = "every tuesday"
	assert.ErrorIs(t, cm.Arm(bad), client.ErrInvalidExpression)

	cm.Cancel(1)
}

func TestScheduleEngineImplementations(t *testing.T) {
	var _ client.ScheduleEngine = (*client.CronJobManager)(nil)
	var _ client.ScheduleEngine = (*client.ReactiveScheduler)(nil)
}
