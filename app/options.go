package app

import (
	"database/sql"

	"github.com/RezaEskandarii/cronfire/internal/notifier"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// ContainerOption configures Container creation. Used for testing and customization.
type ContainerOption func(*containerConfig)

type containerConfig struct {
	// Optional: inject custom connections instead of creating them from config.
	// Injected connections are not closed by Container.Close.
	db       *sql.DB
	redis    *redis.Client
	notifier notifier.Notifier
	logger   *zerolog.Logger
	registry *prometheus.Registry
}

// WithDB injects a custom database connection. Useful for testing.
func WithDB(db *sql.DB) ContainerOption {
	return func(c *containerConfig) {
		c.db = db
	}
}

// WithRedis injects a custom Redis client. Useful for testing.
func WithRedis(redis *redis.Client) ContainerOption {
	return func(c *containerConfig) {
		c.redis = redis
	}
}

// WithNotifier replaces the notifier selected by the configuration.
func WithNotifier(n notifier.Notifier) ContainerOption {
	return func(c *containerConfig) {
		c.notifier = n
	}
}

func WithLogger(logger zerolog.Logger) ContainerOption {
	return func(c *containerConfig) {
		c.logger = &logger
	}
}

// WithRegistry sets the Prometheus registry metrics are registered on.
func WithRegistry(reg *prometheus.Registry) ContainerOption {
	return func(c *containerConfig) {
		c.registry = reg
	}
}
