package config

import (
	"fmt"
	"os"
	"time"
)

// Config holds all application configuration
type Config struct {
	// Display connection configuration
	Display DisplayConfig `toml:"display"`

	// Daemon process configuration
	Daemon DaemonConfig `toml:"daemon"`

	// Logging configuration
	Log LogConfig `toml:"log"`

	// Launch history configuration
	History HistoryConfig `toml:"history"`
}

// DisplayConfig holds display server connection configuration
type DisplayConfig struct {
	Name string `toml:"name"` // X display to watch, $DISPLAY when empty
}

// DaemonConfig holds process lifecycle configuration
type DaemonConfig struct {
	Daemonize     bool          `toml:"daemonize"`      // Detach from the terminal
	PIDFile       string        `toml:"pid_file"`       // Single-instance lock, disabled when empty
	ShutdownGrace time.Duration `toml:"shutdown_grace"` // Forced exit deadline after a termination signal
}

// LogConfig holds logging configuration
type LogConfig struct {
	Verbose bool   `toml:"verbose"` // Debug output on stdout, never daemonizes
	File    string `toml:"file"`    // Log file used by the detached process
}

// HistoryConfig holds launch journal configuration
type HistoryConfig struct {
	Enabled   bool          `toml:"enabled"`   // Record launches in a sqlite database
	Path      string        `toml:"path"`      // Empty means use the default state directory
	Retention time.Duration `toml:"retention"` // Entries older than this are pruned at startup, 0 keeps all
}

// Default returns a Config with sensible default values
func Default() *Config {
	return &Config{
		Daemon: DaemonConfig{
			ShutdownGrace: 5 * time.Second,
		},
		Log: LogConfig{
			File: fmt.Sprintf("/tmp/autorandr-launcher-%d.log", os.Getuid()),
		},
		History: HistoryConfig{
			Retention: 30 * 24 * time.Hour,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Daemon.ShutdownGrace < 0 {
		return fmt.Errorf("shutdown grace cannot be negative, got %v", c.Daemon.ShutdownGrace)
	}

	if c.History.Retention < 0 {
		return fmt.Errorf("history retention cannot be negative, got %v", c.History.Retention)
	}

	if c.Daemon.Daemonize && c.Log.File == "" {
		return fmt.Errorf("log file cannot be empty when daemonizing")
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	display := c.Display.Name
	if display == "" {
		display = "$DISPLAY"
	}
	pidFile := c.Daemon.PIDFile
	if pidFile == "" {
		pidFile = "(none)"
	}

	return fmt.Sprintf(`Configuration:
  Display:
    Name: %s
  Daemon:
    Daemonize: %v
    PID File: %s
    Shutdown Grace: %v
  Log:
    Verbose: %v
    File: %s
  History:
    Enabled: %v
    Path: %s
    Retention: %v`,
		display,
		c.Daemon.Daemonize,
		pidFile,
		c.Daemon.ShutdownGrace,
		c.Log.Verbose,
		c.Log.File,
		c.History.Enabled,
		c.History.Path,
		c.History.Retention,
	)
}
