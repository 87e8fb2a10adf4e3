package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "CRONFIRE"

// SetDefaults registers the default value of every configuration key.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("instance", "")
	v.SetDefault("storage.driver", DefaultStorageDriver.String())
	v.SetDefault("auth.bcrypt_cost", DefaultBcryptCost)

	v.SetDefault("scheduler.mode", DefaultSchedulerMode.String())
	v.SetDefault("scheduler.interval", DefaultSweepInterval)
	v.SetDefault("scheduler.workers", DefaultWorkerCount)
	v.SetDefault("scheduler.job_timeout", DefaultJobTimeout)

	v.SetDefault("notifier.driver", DefaultNotifierDriver.String())
	v.SetDefault("rabbitmq.exchange", "cronfire")
	v.SetDefault("rabbitmq.queue", "cronfire.reminders")
	v.SetDefault("rabbitmq.routing_key", "reminders")
	v.SetDefault("redis.address", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", DefaultRedisChannel)

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.cookie_secure", false)
	v.SetDefault("server.login_rate_per_minute", DefaultLoginRate)
	v.SetDefault("server.login_burst", DefaultLoginBurst)
	v.SetDefault("server.shutdown_timeout", DefaultShutdownTimeout)

	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.console", false)
}

// BindSensitiveEnvVars binds secrets that have no default, so AutomaticEnv alone would miss them in Unmarshal-style lookups.
func BindSensitiveEnvVars(v *viper.Viper) {
	_ = v.BindEnv("auth.secret_key", envPrefix+"_AUTH_SECRET_KEY")
	_ = v.BindEnv("postgres.url", envPrefix+"_POSTGRES_URL")
	_ = v.BindEnv("rabbitmq.url", envPrefix+"_RABBITMQ_URL")
}

// NewViper returns a viper instance with defaults and CRONFIRE_* environment
// variables applied. When path is not empty the file is read as well.
func NewViper(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	BindSensitiveEnvVars(v)
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}
	return v, nil
}

// Load reads the configuration file at path (optional) plus the environment and validates the result.
func Load(path string) (*CronfireConfig, error) {
	v, err := NewViper(path)
	if err != nil {
		return nil, err
	}
	return LoadWithViper(v)
}

// LoadWithViper converts viper settings into a validated CronfireConfig.
func LoadWithViper(v *viper.Viper) (*CronfireConfig, error) {
	mode, err := ParseSchedulerMode(v.GetString("scheduler.mode"))
	if err != nil {
		return nil, err
	}
	driver, err := ParseNotifierDriver(v.GetString("notifier.driver"))
	if err != nil {
		return nil, err
	}
	if storage := v.GetString("storage.driver"); storage != Postgres.String() {
		return nil, fmt.Errorf("unsupported storage driver %q", storage)
	}

	opts := []Option{
		WithSecretKey(v.GetString("auth.secret_key")),
		WithBcryptCost(v.GetInt("auth.bcrypt_cost")),
		WithSchedulerMode(mode),
		WithSweepInterval(v.GetDuration("scheduler.interval")),
		WithWorkerCount(v.GetInt("scheduler.workers")),
		WithJobTimeout(v.GetDuration("scheduler.job_timeout")),
		WithServerConfig(ServerConfig{
			Port:               v.GetUint("server.port"),
			CookieSecure:       v.GetBool("server.cookie_secure"),
			LoginRatePerMinute: v.GetInt("server.login_rate_per_minute"),
			LoginBurst:         v.GetInt("server.login_burst"),
			ShutdownTimeout:    v.GetDuration("server.shutdown_timeout"),
		}),
		WithLogConfig(LogConfig{
			Level:   v.GetString("log.level"),
			Console: v.GetBool("log.console"),
		}),
	}
	if url := v.GetString("postgres.url"); url != "" {
		opts = append(opts, WithPostgresConfig(PostgresConfig{ConnectionUrl: url}))
	}

	switch driver {
	case RabbitMQ:
		opts = append(opts, WithRabbitMQConfig(RabbitMQConfig{
			URL:        v.GetString("rabbitmq.url"),
			Exchange:   v.GetString("rabbitmq.exchange"),
			Queue:      v.GetString("rabbitmq.queue"),
			RoutingKey: v.GetString("rabbitmq.routing_key"),
		}))
	case Redis:
		opts = append(opts, WithRedisConfig(RedisConfig{
			Address:  v.GetString("redis.address"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
			Channel:  v.GetString("redis.channel"),
		}))
	}

	return NewCronfireConfig(v.GetString("instance"), opts...)
}
