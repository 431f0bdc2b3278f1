package config

import (
	"os"
	"strconv"
	"time"
)

// LoadFromEnv loads configuration from environment variables
// Environment variables override default and file values
func LoadFromEnv(cfg *Config) {
	// Display configuration
	if display := os.Getenv("AUTORANDR_LAUNCHER_DISPLAY"); display != "" {
		cfg.Display.Name = display
	}

	// Daemon configuration
	if pidFile := os.Getenv("AUTORANDR_LAUNCHER_PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if grace := os.Getenv("AUTORANDR_LAUNCHER_SHUTDOWN_GRACE"); grace != "" {
		if d, err := time.ParseDuration(grace); err == nil && d >= 0 {
			cfg.Daemon.ShutdownGrace = d
		}
	}

	// Log configuration
	if logFile := os.Getenv("AUTORANDR_LAUNCHER_LOG_FILE"); logFile != "" {
		cfg.Log.File = logFile
	}

	// History configuration
	if enabled := os.Getenv("AUTORANDR_LAUNCHER_HISTORY"); enabled != "" {
		if val, err := strconv.ParseBool(enabled); err == nil {
			cfg.History.Enabled = val
		}
	}

	if dbPath := os.Getenv("AUTORANDR_LAUNCHER_HISTORY_DB"); dbPath != "" {
		cfg.History.Path = dbPath
	}

	if retention := os.Getenv("AUTORANDR_LAUNCHER_HISTORY_RETENTION"); retention != "" {
		if d, err := time.ParseDuration(retention); err == nil && d >= 0 {
			cfg.History.Retention = d
		}
	}
}

// New creates a new Config from defaults, the config file at path
// (or the default location when path is empty) and the environment
func New(path string) (*Config, error) {
	cfg := Default()
	if err := LoadFile(cfg, path); err != nil {
		return nil, err
	}
	LoadFromEnv(cfg)
	return cfg, nil
}
