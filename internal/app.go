// Package internal provides the App struct that wires all components of
// TaskTalk together and initializes the CLI layer.
package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"

	"github.com/valter-silva-au/tasktalk/internal/cli"
	"github.com/valter-silva-au/tasktalk/internal/config"
	"github.com/valter-silva-au/tasktalk/internal/dispatch"
	"github.com/valter-silva-au/tasktalk/internal/nlp"
	"github.com/valter-silva-au/tasktalk/internal/observability"
	"github.com/valter-silva-au/tasktalk/internal/parser"
	"github.com/valter-silva-au/tasktalk/internal/sched"
	"github.com/valter-silva-au/tasktalk/internal/store"
)

// App holds all service dependencies for TaskTalk.
type App struct {
	BasePath string

	Cfg    *config.Config
	Logger *log.Logger

	// Storage layer
	Store *store.TaskStore

	// Language interpretation
	Gemini   *nlp.GeminiClient
	Pipeline *nlp.Pipeline

	// Scheduling
	Conflicts  sched.ConflictDetector
	Recurrence sched.RecurrenceEngine
	Checker    *sched.ReminderChecker

	// Observability
	EventLog observability.EventLog
	Notifier observability.Notifier

	Dispatcher *dispatch.Dispatcher
}

// NewApp creates and wires all components. basePath is the directory holding
// .tasktalk.yaml and the persisted task snapshot (typically ~/.tasktalk).
func NewApp(basePath string) (*App, error) {
	app := &App{BasePath: basePath}

	// --- Configuration ---
	cfg, err := config.NewManager(basePath).Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}
	app.Cfg = cfg

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(cfg.LogLevel); err == nil {
		logger.SetLevel(level)
	}
	app.Logger = logger

	// --- Storage layer ---
	app.Store = store.New(store.NewFileKV(cfg.DataDir))
	if err := app.Store.Load(); err != nil {
		return nil, fmt.Errorf("loading task store: %w", err)
	}

	// --- Language interpretation ---
	// Missing API key degrades to the local heuristic tier.
	app.Gemini, err = nlp.NewGeminiClient(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel, cfg.RemoteTimeout, logger)
	if err != nil {
		logger.Warn("remote language service unavailable, running locally", "err", err)
		app.Gemini = nil
	}
	app.Pipeline = nlp.NewPipeline(app.Gemini, logger)

	// --- Observability ---
	app.EventLog, err = observability.NewJSONLEventLog(cfg.EventLogPath)
	if err != nil {
		// Non-fatal: disable the event log if the file can't be created.
		logger.Warn("event log disabled", "err", err)
		app.EventLog = nil
	}
	if cfg.WebhookURL != "" {
		app.Notifier = observability.NewWebhookNotifier(cfg.WebhookURL)
	} else {
		app.Notifier = observability.NewLogNotifier(logger)
	}

	// --- Scheduling ---
	defaultDuration := time.Duration(cfg.DefaultDurationMinutes) * time.Minute
	app.Conflicts = sched.NewConflictDetector(defaultDuration)
	app.Recurrence = sched.NewRecurrenceEngine()
	app.Checker = sched.NewReminderChecker(app.Store, app.Notifier, app.EventLog, logger, cfg.ReminderMinGap)

	// --- Dispatcher ---
	app.Dispatcher = dispatch.New(
		app.Store,
		parser.New(),
		app.Pipeline,
		app.Conflicts,
		app.Recurrence,
		app.EventLog,
		logger,
	)

	// --- Wire CLI package-level variables ---
	cli.BasePath = basePath
	cli.Cfg = app.Cfg
	cli.Store = app.Store
	cli.Dispatcher = app.Dispatcher
	cli.Checker = app.Checker
	cli.EventLog = app.EventLog
	cli.Logger = logger

	return app, nil
}

// Close releases resources held by the App, such as the event log file handle
// and the remote client connection. Safe to call with nil members.
func (a *App) Close() error {
	if a.Gemini != nil {
		a.Gemini.Close()
	}
	if a.EventLog != nil {
		return a.EventLog.Close()
	}
	return nil
}

// ResolveBasePath determines the base path for the TaskTalk data directory.
// It checks the TASKTALK_HOME env var, then walks up from the current
// directory looking for .tasktalk.yaml, and falls back to ~/.tasktalk.
func ResolveBasePath() string {
	if home := os.Getenv("TASKTALK_HOME"); home != "" {
		return home
	}

	if dir, err := os.Getwd(); err == nil {
		for {
			if _, err := os.Stat(filepath.Join(dir, ".tasktalk.yaml")); err == nil {
				return dir
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break
			}
			dir = parent
		}
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".tasktalk")
}
