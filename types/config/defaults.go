package config

import "time"

const (
	DefaultSchedulerMode   = Poller
	DefaultSweepInterval   = 30 * time.Second
	DefaultWorkerCount     = 4
	DefaultJobTimeout      = 10 * time.Second
	DefaultNotifierDriver  = LogNotifier
	DefaultBcryptCost      = 10
	DefaultServerPort      = 8080
	DefaultLoginRate       = 10 // attempts per minute per client
	DefaultLoginBurst      = 5
	DefaultShutdownTimeout = 15 * time.Second
	DefaultLogLevel        = "info"
	DefaultRedisChannel    = "cronfire:reminders"
	DefaultStorageDriver   = Postgres
)
