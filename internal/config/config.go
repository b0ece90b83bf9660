// Package config loads docket settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/alexanderramin/docket/internal/domain"
)

// NotifierKind selects the notification backend.
type NotifierKind string

const (
	NotifierLog     NotifierKind = "log"
	NotifierWebhook NotifierKind = "webhook"
	NotifierNATS    NotifierKind = "nats"
)

type Config struct {
	DBPath    string
	LogLevel  string
	LogFormat string // console or json

	WarnWindowDays int
	// NotifyChannels are used for escalation and reminder sends that do not
	// choose channels themselves.
	NotifyChannels []domain.Channel

	Notifier          NotifierKind
	WebhookURL        string
	WebhookTimeoutMs  int
	WebhookMaxRetries int
	NATSURL           string
	NATSSubjectPrefix string

	SweepInterval time.Duration
	HTTPAddr      string
}

// DefaultConfig returns settings for a local single-user install.
func DefaultConfig() Config {
	dbPath := filepath.Join(".docket", "docket.db")
	if home, err := os.UserHomeDir(); err == nil {
		dbPath = filepath.Join(home, ".docket", "docket.db")
	}
	return Config{
		DBPath:            dbPath,
		LogLevel:          "info",
		LogFormat:         "console",
		WarnWindowDays:    domain.DefaultWarnWindowDays,
		NotifyChannels:    []domain.Channel{domain.ChannelEmail},
		Notifier:          NotifierLog,
		WebhookTimeoutMs:  5000,
		WebhookMaxRetries: 2,
		NATSURL:           "nats://127.0.0.1:4222",
		NATSSubjectPrefix: "docket.notifications",
		SweepInterval:     15 * time.Minute,
		HTTPAddr:          ":8080",
	}
}

// LoadDotEnv loads the first existing file among paths into the process
// environment without overriding variables that are already set. A missing
// file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		err := godotenv.Load(p)
		if err == nil {
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// Load reads DOCKET_* variables over the defaults. Malformed numbers and
// durations are ignored; an unknown notifier or channel is an error.
func Load() (Config, error) {
	cfg := DefaultConfig()

	if v := os.Getenv("DOCKET_DB"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv("DOCKET_LOG_LEVEL"); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v := os.Getenv("DOCKET_LOG_FORMAT"); v != "" {
		cfg.LogFormat = strings.ToLower(v)
	}
	if v := os.Getenv("DOCKET_WARN_WINDOW_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WarnWindowDays = n
		}
	}
	if v := os.Getenv("DOCKET_NOTIFY_CHANNELS"); v != "" {
		channels, err := ParseChannels(v)
		if err != nil {
			return Config{}, fmt.Errorf("DOCKET_NOTIFY_CHANNELS: %w", err)
		}
		cfg.NotifyChannels = channels
	}
	if v := os.Getenv("DOCKET_NOTIFIER"); v != "" {
		switch k := NotifierKind(strings.ToLower(v)); k {
		case NotifierLog, NotifierWebhook, NotifierNATS:
			cfg.Notifier = k
		default:
			return Config{}, fmt.Errorf("DOCKET_NOTIFIER: unknown notifier %q", v)
		}
	}
	if v := os.Getenv("DOCKET_WEBHOOK_URL"); v != "" {
		cfg.WebhookURL = v
	}
	if v := os.Getenv("DOCKET_WEBHOOK_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.WebhookTimeoutMs = n
		}
	}
	if v := os.Getenv("DOCKET_WEBHOOK_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.WebhookMaxRetries = n
		}
	}
	if v := os.Getenv("DOCKET_NATS_URL"); v != "" {
		cfg.NATSURL = v
	}
	if v := os.Getenv("DOCKET_NATS_SUBJECT_PREFIX"); v != "" {
		cfg.NATSSubjectPrefix = v
	}
	if v := os.Getenv("DOCKET_SWEEP_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.SweepInterval = d
		}
	}
	if v := os.Getenv("DOCKET_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	return cfg, nil
}

// ParseChannels parses a comma-separated channel list such as "email,sms".
func ParseChannels(s string) ([]domain.Channel, error) {
	var out []domain.Channel
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part == "" {
			continue
		}
		out = append(out, domain.Channel(part))
	}
	if err := domain.ValidateChannels(out); err != nil {
		return nil, err
	}
	return out, nil
}
