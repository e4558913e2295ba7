package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Match modes for task reminders.
const (
	MatchExact  = "exact"
	MatchWindow = "window"
)

// Config keeps runtime settings for the planner.
type Config struct {
	TelegramToken  string
	TelegramChatID int64
	DatabaseURL    string
	PollInterval   time.Duration
	LedgerCapacity int
	ReminderMatch  string
	Location       *time.Location
	LogDevelopment bool
	AudioCue       bool
}

// Load reads configuration from environment variables with sane defaults.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	cfg := Config{
		TelegramToken:  strings.TrimSpace(os.Getenv("TELEGRAM_TOKEN")),
		DatabaseURL:    getEnv("DATABASE_URL", "lifeflow.db"),
		PollInterval:   getEnvDuration("POLL_INTERVAL", 30*time.Second),
		LedgerCapacity: getEnvInt("LEDGER_CAPACITY", 100),
		ReminderMatch:  strings.ToLower(getEnv("REMINDER_MATCH", MatchExact)),
		LogDevelopment: getEnvBool("LOG_DEVELOPMENT", false),
		AudioCue:       getEnvBool("AUDIO_CUE", true),
		Location:       time.Local,
	}

	if raw := strings.TrimSpace(os.Getenv("TELEGRAM_CHAT_ID")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("TELEGRAM_CHAT_ID %q: %w", raw, err)
		}
		cfg.TelegramChatID = id
	}

	if tz := strings.TrimSpace(os.Getenv("TIMEZONE")); tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return cfg, fmt.Errorf("TIMEZONE %q: %w", tz, err)
		}
		cfg.Location = loc
	}

	return cfg, cfg.Validate()
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string

	if c.DatabaseURL == "" {
		problems = append(problems, "DATABASE_URL cannot be empty")
	}
	if c.PollInterval < time.Second {
		problems = append(problems, fmt.Sprintf("POLL_INTERVAL %v: must be at least 1s", c.PollInterval))
	} else if c.PollInterval > time.Hour {
		problems = append(problems, fmt.Sprintf("POLL_INTERVAL %v: must be at most 1h", c.PollInterval))
	}
	if c.LedgerCapacity < 1 {
		problems = append(problems, fmt.Sprintf("LEDGER_CAPACITY %d: must be positive", c.LedgerCapacity))
	}
	if c.ReminderMatch != MatchExact && c.ReminderMatch != MatchWindow {
		problems = append(problems, fmt.Sprintf("REMINDER_MATCH %q: must be %q or %q", c.ReminderMatch, MatchExact, MatchWindow))
	}
	if c.TelegramChatID != 0 && c.TelegramToken == "" {
		problems = append(problems, "TELEGRAM_CHAT_ID requires TELEGRAM_TOKEN")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(strings.TrimSpace(value)); err == nil {
			return d
		}
	}
	return defaultValue
}
