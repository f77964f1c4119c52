package app

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	DatabaseFile         string        // Path to SQLite database file (default: ./vault.db)
	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	SweepInterval        time.Duration // Reminder sweep interval (default: 24h)
	DeliveryTimeout      time.Duration // Per-reminder delivery timeout (default: 10s)
	SessionTTL           time.Duration // Generate-flow session lifetime (default: 5m)
	SessionPruneInterval time.Duration // Expired-session pruning interval (default: 1m)
	AuthAttempts         int           // Master-password attempts per window (default: 5)
	AuthWindow           time.Duration // Attempt limiter window (default: 1m)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile:         getEnvOrDefault("VAULT_DATABASE_FILE", "vault.db"),
		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		SweepInterval:        getEnvDurationOrDefault("REMINDER_SWEEP_INTERVAL", 24*time.Hour),
		DeliveryTimeout:      getEnvDurationOrDefault("REMINDER_DELIVERY_TIMEOUT", 10*time.Second),
		SessionTTL:           getEnvDurationOrDefault("SESSION_TTL", 5*time.Minute),
		SessionPruneInterval: getEnvDurationOrDefault("SESSION_PRUNE_INTERVAL", time.Minute),
		AuthAttempts:         getEnvIntOrDefault("AUTH_ATTEMPTS", 5),
		AuthWindow:           getEnvDurationOrDefault("AUTH_WINDOW", time.Minute),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}
	return defaultValue
}
