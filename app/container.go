package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"

	"github.com/RezaEskandarii/cronfire/client"
	"github.com/RezaEskandarii/cronfire/internal/auth"
	"github.com/RezaEskandarii/cronfire/internal/db"
	"github.com/RezaEskandarii/cronfire/internal/lock"
	"github.com/RezaEskandarii/cronfire/internal/logging"
	"github.com/RezaEskandarii/cronfire/internal/metrics"
	"github.com/RezaEskandarii/cronfire/internal/notifier"
	"github.com/RezaEskandarii/cronfire/internal/store"
	"github.com/RezaEskandarii/cronfire/internal/store/postgres"
	"github.com/RezaEskandarii/cronfire/types/config"
	"github.com/RezaEskandarii/cronfire/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Container holds all application dependencies. It is the single source of truth
// for dependency injection and ensures connections and services are created once.
type Container struct {
	Config *config.CronfireConfig
	Logger zerolog.Logger

	// Storage connections (created once, shared by all stores)
	DB    *sql.DB
	Redis *redis.Client

	Registry *prometheus.Registry
	Metrics  *metrics.Metrics

	// Stores (implement interfaces for testability)
	CronJobStore store.CronJobStore
	UserStore    store.UserStore

	// Infrastructure
	LockManager lock.DistributedLockManager
	Notifier    notifier.Notifier

	Tokens        *auth.TokenAuthority
	Authenticator *auth.Authenticator

	// The single schedule engine of this process and the facade in front of it
	Engine     client.ScheduleEngine
	JobManager *client.JobManager

	Router http.Handler

	closers []func() error
}

// NewContainer creates and wires all dependencies. Single entry point for DI.
// Call this once per application lifecycle.
// Pass optional WithDB, WithRedis to inject connections for testing.
func NewContainer(ctx context.Context, cfg *config.CronfireConfig, opts ...ContainerOption) (*Container, error) {
	opt := &containerConfig{}
	for _, o := range opts {
		o(opt)
	}

	c := &Container{Config: cfg}
	if opt.logger != nil {
		c.Logger = *opt.logger
	} else {
		c.Logger = logging.New(logging.Config{Level: cfg.Log.Level, Console: cfg.Log.Console, Instance: cfg.Instance}, nil)
	}

	if err := c.initStorageConnections(ctx, opt); err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	c.Registry = opt.registry
	if c.Registry == nil {
		c.Registry = prometheus.NewRegistry()
		c.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	c.Metrics = metrics.New(c.Registry)

	c.CronJobStore = postgres.NewPostgresCronJobStore(c.DB, c.Logger)
	if opt.db == nil {
		// the job store owns the pool opened above
		c.closers = append(c.closers, c.CronJobStore.Close)
	}
	c.UserStore = postgres.NewPostgresUserStore(c.DB)
	c.LockManager = lock.NewPostgresDistributedLockManager(c.DB)

	n, err := c.createNotifier(opt)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("init notifier: %w", err)
	}
	c.Notifier = n

	c.Tokens, err = auth.NewTokenAuthority(cfg.SecretKey)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Authenticator, err = auth.NewAuthenticator(c.UserStore, c.Tokens,
		auth.WithBcryptCost(cfg.BcryptCost),
		auth.WithLogger(c.Logger),
		auth.WithMetrics(c.Metrics),
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Engine = c.createEngine()
	c.JobManager = client.NewJobManager(c.CronJobStore, c.Engine, c.Logger)

	c.Router = web.NewRouteHandler(c.Authenticator, c.Tokens, c.JobManager, web.RouteConfig{
		CookieSecure:       cfg.Server.CookieSecure,
		LoginRatePerMinute: cfg.Server.LoginRatePerMinute,
		LoginBurst:         cfg.Server.LoginBurst,
		Gatherer:           c.Registry,
		Health:             c.DB.PingContext,
		Logger:             c.Logger,
	}).Router()

	return c, nil
}

// initStorageConnections creates database connections based on config.
func (c *Container) initStorageConnections(ctx context.Context, opt *containerConfig) error {
	if opt.db != nil {
		c.DB = opt.db
	} else {
		switch c.Config.StorageDriver {
		case config.Postgres:
			if c.Config.PostgresConfig.ConnectionUrl == "" {
				return errors.New("postgres connection URL is not configured")
			}
			conn, err := db.Open(ctx, c.Config.PostgresConfig.ConnectionUrl)
			if err != nil {
				return err
			}
			c.DB = conn
		default:
			return fmt.Errorf("unsupported storage driver: %v", c.Config.StorageDriver)
		}
	}

	if c.Config.Notifier != config.Redis || opt.notifier != nil {
		return nil
	}
	if opt.redis != nil {
		c.Redis = opt.redis
		return nil
	}
	rc := redis.NewClient(&redis.Options{
		Addr:     c.Config.RedisConfig.Address,
		Password: c.Config.RedisConfig.Password,
		DB:       c.Config.RedisConfig.DB,
	})
	if err := rc.Ping(ctx).Err(); err != nil {
		_ = rc.Close()
		if opt.db == nil {
			_ = c.DB.Close()
		}
		return fmt.Errorf("ping redis: %w", err)
	}
	c.Redis = rc
	c.closers = append(c.closers, rc.Close)
	return nil
}

func (c *Container) createNotifier(opt *containerConfig) (notifier.Notifier, error) {
	if opt.notifier != nil {
		return opt.notifier, nil
	}
	switch c.Config.Notifier {
	case config.RabbitMQ:
		mq := c.Config.RabbitMQConfig
		n, err := notifier.NewRabbitMQNotifier(mq.URL, mq.Exchange, mq.Queue, mq.RoutingKey)
		if err != nil {
			return nil, err
		}
		c.closers = append(c.closers, n.Close)
		return n, nil
	case config.Redis:
		return notifier.NewRedisNotifier(c.Redis, c.Config.RedisConfig.Channel), nil
	default:
		return notifier.NewLogNotifier(c.Logger), nil
	}
}

func (c *Container) createEngine() client.ScheduleEngine {
	engineOpts := []client.EngineOption{
		client.WithLogger(c.Logger),
		client.WithMetrics(c.Metrics),
	}
	executor := client.NewExecutor(c.CronJobStore, c.Notifier, c.Config.Scheduler.JobTimeout, engineOpts...)

	if c.Config.Scheduler.Mode == config.Reactive {
		return client.NewReactiveScheduler(c.CronJobStore, executor, engineOpts...)
	}
	return client.NewCronJobManager(c.CronJobStore, c.LockManager, executor,
		c.Config.Scheduler.Interval, c.Config.Scheduler.Workers, engineOpts...)
}

// Migrate applies the embedded schema under the migration advisory lock.
func (c *Container) Migrate(ctx context.Context) error {
	return db.Init(ctx, c.DB, c.LockManager, c.Logger)
}

// Close releases the connections the container opened itself, newest first.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}
