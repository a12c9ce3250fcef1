// Package config loads application settings from the .tasktalk.yaml file and
// the environment. Missing files fall back to defaults so the application
// always starts.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config holds the resolved application settings.
type Config struct {
	// Remote language service.
	GeminiAPIKey  string
	GeminiModel   string
	RemoteTimeout time.Duration

	// Scheduling.
	DefaultDurationMinutes int
	ReminderPollInterval   time.Duration
	ReminderMinGap         time.Duration

	// Notification delivery. Empty URL means log-only notifications.
	WebhookURL string

	// Paths.
	DataDir      string
	EventLogPath string

	LogLevel string
}

// Manager loads configuration relative to a base path.
type Manager interface {
	Load() (*Config, error)
}

// viperManager implements Manager using Viper for the YAML file plus
// environment overrides for secrets.
type viperManager struct {
	basePath string
}

// NewManager creates a Manager reading .tasktalk.yaml from basePath.
func NewManager(basePath string) Manager {
	return &viperManager{basePath: basePath}
}

func defaults(basePath string) *Config {
	return &Config{
		GeminiModel:            "gemini-1.5-flash",
		RemoteTimeout:          15 * time.Second,
		DefaultDurationMinutes: 60,
		ReminderPollInterval:   60 * time.Second,
		ReminderMinGap:         30 * time.Second,
		DataDir:                basePath,
		EventLogPath:           basePath + "/.tasktalk_events.jsonl",
		LogLevel:               "info",
	}
}

// Load reads .tasktalk.yaml, returning defaults when the file is absent.
// The Gemini API key comes from the GEMINI_API_KEY environment variable only,
// never from the file.
func (m *viperManager) Load() (*Config, error) {
	cfg := defaults(m.basePath)

	v := viper.New()
	v.SetConfigName(".tasktalk")
	v.SetConfigType("yaml")
	v.AddConfigPath(m.basePath)

	v.SetDefault("gemini.model", cfg.GeminiModel)
	v.SetDefault("gemini.timeout_seconds", int(cfg.RemoteTimeout.Seconds()))
	v.SetDefault("schedule.default_duration_minutes", cfg.DefaultDurationMinutes)
	v.SetDefault("reminders.poll_seconds", int(cfg.ReminderPollInterval.Seconds()))
	v.SetDefault("reminders.min_gap_seconds", int(cfg.ReminderMinGap.Seconds()))
	v.SetDefault("notifications.webhook_url", cfg.WebhookURL)
	v.SetDefault("data_dir", cfg.DataDir)
	v.SetDefault("event_log", cfg.EventLogPath)
	v.SetDefault("log_level", cfg.LogLevel)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading .tasktalk.yaml: %w", err)
		}
	}

	cfg.GeminiModel = v.GetString("gemini.model")
	cfg.RemoteTimeout = time.Duration(v.GetInt("gemini.timeout_seconds")) * time.Second
	cfg.DefaultDurationMinutes = v.GetInt("schedule.default_duration_minutes")
	cfg.ReminderPollInterval = time.Duration(v.GetInt("reminders.poll_seconds")) * time.Second
	cfg.ReminderMinGap = time.Duration(v.GetInt("reminders.min_gap_seconds")) * time.Second
	cfg.WebhookURL = v.GetString("notifications.webhook_url")
	cfg.DataDir = v.GetString("data_dir")
	cfg.EventLogPath = v.GetString("event_log")
	cfg.LogLevel = v.GetString("log_level")

	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	return cfg, nil
}
