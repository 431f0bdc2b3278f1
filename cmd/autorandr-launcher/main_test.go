package main

import (
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/autorandr/autorandr-launcher/internal/config"
	"github.com/autorandr/autorandr-launcher/internal/daemon"
	"github.com/autorandr/autorandr-launcher/internal/database"
	"github.com/autorandr/autorandr-launcher/internal/models"
	"github.com/autorandr/autorandr-launcher/pkg/display"
)

func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv(daemon.ChildEnv, "")
	for _, key := range []string{
		"AUTORANDR_LAUNCHER_DISPLAY",
		"AUTORANDR_LAUNCHER_PID_FILE",
		"AUTORANDR_LAUNCHER_HISTORY",
		"AUTORANDR_LAUNCHER_HISTORY_DB",
	} {
		t.Setenv(key, "")
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want options
	}{
		{"none", nil, options{limit: 20}},
		{"short daemonize", []string{"-d"}, options{daemonize: true, limit: 20}},
		{"long flags", []string{"--daemonize", "--verbose"}, options{daemonize: true, verbose: true, limit: 20}},
		{"help", []string{"-h"}, options{help: true, limit: 20}},
		{"version", []string{"--version"}, options{version: true, limit: 20}},
		{"unknown flags accepted", []string{"--frobnicate", "-x", "--verbose"}, options{verbose: true, limit: 20}},
		{"positional ignored", []string{"extra", "-d"}, options{daemonize: true, limit: 20}},
		{"history", []string{"--history", "--json", "--limit", "5"}, options{history: true, json: true, limit: 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFlags(tt.args)
			if *got != tt.want {
				t.Errorf("parseFlags(%v) = %+v, want %+v", tt.args, *got, tt.want)
			}
		})
	}
}

func TestVerboseKeepsForeground(t *testing.T) {
	opts := parseFlags([]string{"-d", "--verbose"})
	if daemon.ShouldDaemonize(opts.daemonize, opts.verbose) {
		t.Error("--verbose must suppress daemonization")
	}
}

func TestNewLoggerLevels(t *testing.T) {
	isolateEnv(t)

	cfg := config.Default()
	log, closeLog := newLogger(cfg)
	closeLog()
	if log.GetLevel() != logrus.WarnLevel {
		t.Errorf("foreground level = %v, want warning", log.GetLevel())
	}

	cfg.Log.Verbose = true
	log, closeLog = newLogger(cfg)
	closeLog()
	if log.GetLevel() != logrus.DebugLevel {
		t.Errorf("verbose level = %v, want debug", log.GetLevel())
	}
}

func TestRunHelpAndVersion(t *testing.T) {
	isolateEnv(t)

	if code := run([]string{"--help"}); code != 0 {
		t.Errorf("run(--help) = %d, want 0", code)
	}
	if code := run([]string{"--version"}); code != 0 {
		t.Errorf("run(--version) = %d, want 0", code)
	}
}

func TestRunConnectionFailure(t *testing.T) {
	isolateEnv(t)
	t.Setenv("AUTORANDR_LAUNCHER_DISPLAY", "nonsense")

	if code := run(nil); code != display.ConnClosedParseErr {
		t.Errorf("run() = %d, want %d", code, display.ConnClosedParseErr)
	}
}

func TestRunInvalidConfig(t *testing.T) {
	isolateEnv(t)

	if code := run([]string{"--config", filepath.Join(t.TempDir(), "missing.toml")}); code != 1 {
		t.Errorf("run() with missing config = %d, want 1", code)
	}
}

func TestRunHistory(t *testing.T) {
	isolateEnv(t)
	dbPath := filepath.Join(t.TempDir(), "history.db")
	t.Setenv("AUTORANDR_LAUNCHER_HISTORY_DB", dbPath)

	db, err := database.Connect(dbPath)
	if err != nil {
		t.Fatalf("Connect() error: %v", err)
	}
	if err := db.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}
	if err := database.NewRepository(db).RecordLaunch(&models.LaunchEvent{ServerTimestamp: 7, DisplayServer: "x11"}); err != nil {
		t.Fatalf("RecordLaunch() error: %v", err)
	}
	db.Close()

	if code := run([]string{"--history"}); code != 0 {
		t.Errorf("run(--history) = %d, want 0", code)
	}
	if code := run([]string{"--history", "--json"}); code != 0 {
		t.Errorf("run(--history --json) = %d, want 0", code)
	}
}
