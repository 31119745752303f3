package scheduler

import (
	"os"
	"strconv"
	"time"
)

// Config holds scheduler configuration
type Config struct {
	// Enabled controls whether the scheduler runs
	Enabled bool

	// RosterReconcileInterval is how often members_count is reconciled with
	// the actual membership rows.
	RosterReconcileInterval time.Duration

	// RosterReconcileSchedule is a cron override; empty means use the
	// interval. Standard cron format: "minute hour day-of-month month
	// day-of-week".
	RosterReconcileSchedule string
}

// NewConfig creates a new Config from environment variables
func NewConfig() *Config {
	return &Config{
		Enabled:                 getEnvBool("SCHEDULER_ENABLED", true),
		RosterReconcileInterval: getEnvDuration("ROSTER_RECONCILE_INTERVAL_MS", 10*time.Minute),
		RosterReconcileSchedule: os.Getenv("ROSTER_RECONCILE_SCHEDULE"),
	}
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if ms, err := strconv.Atoi(val); err == nil {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return defaultVal
}
