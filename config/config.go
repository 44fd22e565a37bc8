package config

import "os"

// AppName is used as the Postgres schema name and as the prefix for
// message-queue topics and queues, so several tripkit deployments can share
// the same infrastructure without colliding.
const AppName = "tripkit"

// GetEnv returns the value of the environment variable named by key,
// or fallback when the variable is unset or empty.
func GetEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
