package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config keeps runtime settings for the dashboard.
type Config struct {
	TelegramToken  string
	DatabaseURL    string
	LocalStoreURL  string
	JWTSecret      string
	SessionTTL     time.Duration
	SendgridAPIKey string
	MailFrom       string
	NatsURL        string
	NatsSubject    string
	ReportInterval time.Duration
	ReportTime     string // optional HH:MM daily slot, overrides ReportInterval
	LogLevel       string
}

// Load reads configuration from an optional .env file and the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from environment variables with sane defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		TelegramToken:  env("TELEGRAM_TOKEN"),
		DatabaseURL:    env("DATABASE_URL"),
		LocalStoreURL:  env("LOCAL_STORE_URL"),
		JWTSecret:      env("JWT_SECRET"),
		SessionTTL:     parseDuration(env("SESSION_TTL")),
		SendgridAPIKey: env("SENDGRID_API_KEY"),
		MailFrom:       env("MAIL_FROM"),
		NatsURL:        env("NATS_URL"),
		NatsSubject:    env("NATS_SUBJECT"),
		ReportInterval: parseInterval(env("REPORT_INTERVAL_HOURS")),
		ReportTime:     env("REPORT_TIME"),
		LogLevel:       strings.ToLower(env("LOG_LEVEL")),
	}

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = "task_dashboard.db"
	}
	if cfg.LocalStoreURL == "" {
		cfg.LocalStoreURL = "task_dashboard_local.db"
	}
	if cfg.SessionTTL == 0 {
		cfg.SessionTTL = 7 * 24 * time.Hour
	}
	if cfg.MailFrom == "" {
		cfg.MailFrom = "no-reply@task-dashboard.local"
	}
	if cfg.NatsSubject == "" {
		cfg.NatsSubject = "taskdash"
	}
	if cfg.ReportInterval == 0 {
		cfg.ReportInterval = 24 * time.Hour
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}

	if cfg.TelegramToken == "" {
		return cfg, fmt.Errorf("TELEGRAM_TOKEN is required")
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func parseInterval(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	hours, err := time.ParseDuration(raw + "h")
	if err != nil || hours <= 0 {
		return 0
	}
	return hours
}

func parseDuration(raw string) time.Duration {
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return 0
	}
	return d
}
