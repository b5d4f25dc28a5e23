package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds runtime configuration for the analytics worker.
type Config struct {
	DBURL         string
	RedisURL      string
	RedisQueue    string
	WorkerCount   int
	JobBufferSize int
	LogLevel      string

	TextGenAPIKey   string
	TextGenBaseURL  string
	TextGenModel    string
	TextGenTimeout  time.Duration
	TextGenCacheTTL time.Duration

	// ProfileRefreshCron is a five-field cron spec; empty disables the
	// scheduled champion-profile refresh.
	ProfileRefreshCron string
	ProfileStrategy    string
	SnapshotWindow     int
	CarryPressureRows  int
}

// Load builds a Config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		DBURL:          os.Getenv("DB_URL"),
		RedisURL:       os.Getenv("REDIS_URL"),
		RedisQueue:     os.Getenv("REDIS_QUEUE"),
		LogLevel:       os.Getenv("LOG_LEVEL"),
		TextGenAPIKey:  os.Getenv("TEXTGEN_API_KEY"),
		TextGenBaseURL: os.Getenv("TEXTGEN_BASE_URL"),
		TextGenModel:   os.Getenv("TEXTGEN_MODEL"),
	}

	if cfg.DBURL == "" {
		return nil, fmt.Errorf("DB_URL is required")
	}

	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}

	if cfg.RedisQueue == "" {
		cfg.RedisQueue = "analytics_jobs"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.TextGenBaseURL == "" {
		cfg.TextGenBaseURL = "https://api.openai.com/v1"
	}
	if cfg.TextGenModel == "" {
		cfg.TextGenModel = "gpt-4o-mini"
	}

	var err error
	if cfg.WorkerCount, err = envInt("WORKER_COUNT", 1); err != nil {
		return nil, err
	}
	if cfg.JobBufferSize, err = envInt("JOB_BUFFER_SIZE", 16); err != nil {
		return nil, err
	}
	if cfg.SnapshotWindow, err = envInt("SNAPSHOT_WINDOW", 20); err != nil {
		return nil, err
	}
	if cfg.CarryPressureRows, err = envInt("CARRY_PRESSURE_ROWS", 25); err != nil {
		return nil, err
	}
	if cfg.TextGenTimeout, err = envDuration("TEXTGEN_TIMEOUT", 30*time.Second); err != nil {
		return nil, err
	}
	if cfg.TextGenCacheTTL, err = envDuration("TEXTGEN_CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if spec, ok := os.LookupEnv("PROFILE_REFRESH_CRON"); ok {
		cfg.ProfileRefreshCron = spec
	} else {
		cfg.ProfileRefreshCron = "0 */6 * * *"
	}

	cfg.ProfileStrategy = os.Getenv("PROFILE_STRATEGY")
	switch cfg.ProfileStrategy {
	case "":
		cfg.ProfileStrategy = "historical"
	case "historical", "static":
	default:
		return nil, fmt.Errorf("PROFILE_STRATEGY must be historical or static, got %q", cfg.ProfileStrategy)
	}

	return cfg, nil
}

func envInt(name string, def int) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return 0, fmt.Errorf("%s must be a positive integer, got %q", name, raw)
	}
	return v, nil
}

func envDuration(name string, def time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", name, raw)
	}
	return v, nil
}
