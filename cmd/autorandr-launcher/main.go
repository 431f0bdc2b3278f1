package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"github.com/autorandr/autorandr-launcher/internal/config"
	"github.com/autorandr/autorandr-launcher/internal/daemon"
	"github.com/autorandr/autorandr-launcher/internal/database"
	"github.com/autorandr/autorandr-launcher/internal/debounce"
	"github.com/autorandr/autorandr-launcher/internal/launcher"
	"github.com/autorandr/autorandr-launcher/internal/monitor"
	"github.com/autorandr/autorandr-launcher/internal/reporter"
	"github.com/autorandr/autorandr-launcher/pkg/detector"
	"github.com/autorandr/autorandr-launcher/pkg/display"
	"github.com/autorandr/autorandr-launcher/version"
)

const appName = "autorandr-launcher"

type options struct {
	help       bool
	daemonize  bool
	verbose    bool
	version    bool
	configPath string
	history    bool
	json       bool
	limit      int
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func parseFlags(args []string) *options {
	opts := &options{}

	flags := flag.NewFlagSet(appName, flag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Usage = printUsage

	flags.BoolVarP(&opts.help, "help", "h", false, "Show this help message")
	flags.BoolVarP(&opts.daemonize, "daemonize", "d", false, "Run in the background")
	flags.BoolVar(&opts.verbose, "verbose", false, "Log diagnostics to stdout, implies foreground")
	flags.BoolVar(&opts.version, "version", false, "Show version information")
	flags.StringVar(&opts.configPath, "config", "", "Path to a TOML config file")
	flags.BoolVar(&opts.history, "history", false, "Print recorded launches and exit")
	flags.BoolVar(&opts.json, "json", false, "Print --history as JSON")
	flags.IntVar(&opts.limit, "limit", reporter.DefaultLimit, "Number of launches shown by --history")

	// Unknown options are ignored; anything else the parser rejects is reported but not fatal.
	if err := flags.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
	}

	return opts
}

func run(args []string) int {
	started := time.Now()
	opts := parseFlags(args)

	if opts.help {
		printUsage()
		return 0
	}
	if opts.version {
		fmt.Println(version.String())
		return 0
	}

	cfg, err := config.New(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}
	cfg.Daemon.Daemonize = cfg.Daemon.Daemonize || opts.daemonize
	cfg.Log.Verbose = cfg.Log.Verbose || opts.verbose
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		return 1
	}

	if opts.history {
		return showHistory(cfg, opts.limit, opts.json)
	}

	log, closeLog := newLogger(cfg)
	defer closeLog()

	ctl := daemon.NewController(log, cfg.Daemon.ShutdownGrace)
	ctx := ctl.Install(context.Background())
	defer ctl.Stop()

	if cfg.Daemon.Daemonize && cfg.Log.Verbose {
		log.Debug("Verbose mode requested, staying in the foreground")
	}
	if daemon.ShouldDaemonize(cfg.Daemon.Daemonize, cfg.Log.Verbose) && !daemon.IsChild() {
		pid, err := daemon.Detach()
		if err != nil {
			log.Errorf("%v", err)
			return 1
		}
		fmt.Printf("Daemon started successfully (PID: %d)\n", pid)
		fmt.Printf("Logs: %s\n", cfg.Log.File)
		return 0
	}

	log.Debugf("%s", cfg.String())

	if cfg.Daemon.PIDFile != "" {
		dm := daemon.New(cfg.Daemon.PIDFile)
		if err := dm.Acquire(); err != nil {
			log.Errorf("Cannot start: %v", err)
			return 1
		}
		defer dm.Release()
	}

	var recorder monitor.Recorder
	if cfg.History.Enabled {
		repo, closeDB, err := openHistory(cfg, log)
		if err != nil {
			log.Warnf("Launch history disabled: %v", err)
		} else {
			defer closeDB()
			recorder = repo
		}
	}

	connect := func() (display.Source, error) {
		return detector.New(cfg.Display.Name)
	}

	svc := monitor.NewService(connect, debounce.NewFilter(started), launcher.New(log), recorder, log)
	ctl.OnShutdown(svc.Close)

	if err := svc.Run(ctx); err != nil {
		var connErr *display.ConnectError
		if errors.As(err, &connErr) {
			log.Errorf("%v", connErr)
			return connErr.ExitCode()
		}
		log.Errorf("%v", err)
		return 1
	}

	log.Debugf("Event loop finished after %d launches", svc.Launches())
	return ctl.ExitCode()
}

func newLogger(cfg *config.Config) (*logrus.Logger, func()) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	switch {
	case cfg.Log.Verbose:
		log.SetOutput(os.Stdout)
		log.SetLevel(logrus.DebugLevel)
	case daemon.IsChild():
		log.SetLevel(logrus.InfoLevel)
		logFile, err := os.OpenFile(cfg.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			log.SetOutput(logFile)
			return log, func() { logFile.Close() }
		}
	default:
		// Foreground runs stay quiet unless something goes wrong
		log.SetOutput(os.Stderr)
		log.SetLevel(logrus.WarnLevel)
	}

	return log, func() {}
}

func openHistory(cfg *config.Config, log logrus.FieldLogger) (*database.Repository, func(), error) {
	db, err := database.Connect(cfg.History.Path)
	if err != nil {
		return nil, nil, err
	}
	if err := db.Initialize(); err != nil {
		db.Close()
		return nil, nil, err
	}

	repo := database.NewRepository(db)
	if cfg.History.Retention > 0 {
		deleted, err := repo.DeleteOlderThan(time.Now().Add(-cfg.History.Retention))
		if err != nil {
			log.Warnf("Failed to prune launch history: %v", err)
		} else if deleted > 0 {
			log.Debugf("Pruned %d old history entries", deleted)
		}
	}

	return repo, func() { db.Close() }, nil
}

func showHistory(cfg *config.Config, limit int, jsonOutput bool) int {
	db, err := database.Connect(cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open launch history: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := db.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open launch history: %v\n", err)
		return 1
	}

	rep := reporter.New(database.NewRepository(db))
	report, err := rep.GenerateReport(limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to generate report: %v\n", err)
		return 1
	}

	if jsonOutput {
		out, err := rep.FormatReportJSON(report)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to format JSON: %v\n", err)
			return 1
		}
		fmt.Println(out)
		return 0
	}

	fmt.Print(rep.FormatReportText(report))
	return 0
}

func printUsage() {
	fmt.Printf(`%s - Launch autorandr when the monitor setup changes

Usage:
  %s [options]

Options:
  -h, --help         Show this help message
  -d, --daemonize    Run in the background
      --verbose      Log diagnostics to stdout (never daemonizes)
      --version      Show version information
      --config PATH  Read settings from a TOML file
      --history      Print recorded launches and exit
      --json         Print --history as JSON
      --limit N      Number of launches shown by --history (default %d)

On every debounced RandR screen change the launcher runs:
  %s --change --default default

Environment Variables:
  AUTORANDR_LAUNCHER_DISPLAY            X display to watch (default $DISPLAY)
  AUTORANDR_LAUNCHER_PID_FILE           Single-instance PID file
  AUTORANDR_LAUNCHER_SHUTDOWN_GRACE     Forced exit deadline after SIGINT/SIGTERM/SIGQUIT
  AUTORANDR_LAUNCHER_LOG_FILE           Log file of the background process
  AUTORANDR_LAUNCHER_HISTORY            Record launches (true/false)
  AUTORANDR_LAUNCHER_HISTORY_DB         Launch history database path
  AUTORANDR_LAUNCHER_HISTORY_RETENTION  Prune history older than this (e.g. 720h)

Version: %s
`, appName, appName, reporter.DefaultLimit, launcher.ToolPath, version.Version)
}
