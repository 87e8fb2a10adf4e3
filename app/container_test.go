package app

import (
	"context"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/RezaEskandarii/cronfire/client"
	"github.com/RezaEskandarii/cronfire/internal/notifier"
	"github.com/RezaEskandarii/cronfire/types/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, opts ...config.Option) *config.CronfireConfig {
	t.Helper()
	opts = append([]config.Option{config.WithSecretKey("container-test-secret")}, opts...)
	cfg, err := config.NewCronfireConfig("test", opts...)
	require.NoError(t, err)
	return cfg
}

func newTestContainer(t *testing.T, cfg *config.CronfireConfig, opts ...ContainerOption) (*Container, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	opts = append([]ContainerOption{
		WithDB(db),
		WithLogger(zerolog.Nop()),
		WithRegistry(prometheus.NewRegistry()),
	}, opts...)
	c, err := NewContainer(context.Background(), cfg, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mock
}

func TestNewContainer_PollerByDefault(t *testing.T) {
	c, _ := newTestContainer(t, testConfig(t))

	assert.IsType(t, &client.CronJobManager{}, c.Engine)
	assert.IsType(t, &notifier.LogNotifier{}, c.Notifier)
	assert.Nil(t, c.Redis)
	assert.NotNil(t, c.Router)
	assert.NotNil(t, c.JobManager)
}

func TestNewContainer_ReactiveMode(t *testing.T) {
	c, _ := newTestContainer(t, testConfig(t, config.WithSchedulerMode(config.Reactive)))

	assert.IsType(t, &client.ReactiveScheduler{}, c.Engine)
}

func TestNewContainer_RedisNotifierUsesInjectedClient(t *testing.T) {
	rc := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rc.Close()

	cfg := testConfig(t, config.WithRedisConfig(config.RedisConfig{Address: "127.0.0.1:0"}))
	c, _ := newTestContainer(t, cfg, WithRedis(rc))

	assert.Same(t, rc, c.Redis)
	assert.IsType(t, &notifier.RedisNotifier{}, c.Notifier)
}

func TestNewContainer_InjectedNotifierWins(t *testing.T) {
	n := notifier.NewLogNotifier(zerolog.Nop())
	cfg := testConfig(t, config.WithRedisConfig(config.RedisConfig{Address: "127.0.0.1:0"}))
	c, _ := newTestContainer(t, cfg, WithNotifier(n))

	assert.Same(t, n, c.Notifier)
	assert.Nil(t, c.Redis)
}

func TestNewContainer_MissingPostgresURL(t *testing.T) {
	_, err := NewContainer(context.Background(), testConfig(t), WithLogger(zerolog.Nop()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres connection URL")
}

func TestContainer_Migrate(t *testing.T) {
	c, mock := newTestContainer(t, testConfig(t))

	mock.ExpectExec("SELECT pg_advisory_lock").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS users").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS cron_jobs").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("SELECT pg_advisory_unlock").WithArgs(1).WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, c.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainer_ServeReactive(t *testing.T) {
	c, mock := newTestContainer(t, testConfig(t, config.WithSchedulerMode(config.Reactive)))

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	mock.ExpectQuery("SELECT id, user_id, message, schedule, last_run, created_at FROM cron_jobs ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "message", "schedule", "last_run", "created_at"}).
			AddRow(int64(1), int64(7), "new year", "0 0 1 1 *", nil, created))

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Serve(ctx, listener) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + listener.Addr().String() + "/healthz")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	assert.Equal(t, float64(1), testutil.ToFloat64(c.Metrics.ArmedJobs))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContainer_ServeStartError(t *testing.T) {
	c, mock := newTestContainer(t, testConfig(t, config.WithSchedulerMode(config.Reactive)))
	mock.ExpectQuery("FROM cron_jobs").WillReturnError(assert.AnError)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	err = c.Serve(context.Background(), listener)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "start scheduler")
}

func TestContainer_CloseLeavesInjectedDBOpen(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	c, err := NewContainer(context.Background(), testConfig(t),
		WithDB(db),
		WithLogger(zerolog.Nop()),
		WithRegistry(prometheus.NewRegistry()),
	)
	require.NoError(t, err)
	assert.Empty(t, c.closers)

	require.NoError(t, c.Close())
	assert.NoError(t, db.PingContext(context.Background()))
}
