package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Environment string
	LogLevel    slog.Level

	// EmulatorURL is the websocket endpoint of the emulation host.
	EmulatorURL string
	RedisURL    string

	// RunID resumes a persisted run when set; empty starts fresh.
	RunID string

	// RefreshTimeout bounds one snapshot pull from the emulation host.
	RefreshTimeout time.Duration
	// CycleInterval is the pause between decision cycles.
	CycleInterval time.Duration
	// FailureThreshold is the number of consecutive refresh failures
	// before the degraded-connectivity signal is raised.
	FailureThreshold int
}

func Load() *Config {
	return &Config{
		Environment:      getEnv("ENVIRONMENT", "development"),
		LogLevel:         parseLogLevel(getEnv("LOG_LEVEL", "info")),
		EmulatorURL:      getEnv("EMULATOR_URL", "ws://localhost:8000/ws"),
		RedisURL:         getEnv("REDIS_URL", "localhost:6379"),
		RunID:            getEnv("RUN_ID", ""),
		RefreshTimeout:   getDuration("REFRESH_TIMEOUT", 3*time.Second),
		CycleInterval:    getDuration("CYCLE_INTERVAL", 500*time.Millisecond),
		FailureThreshold: getInt("FAILURE_THRESHOLD", 3),
	}
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
