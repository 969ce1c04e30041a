package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds service configuration loaded from environment variables.
// A local .env file is honored when present.
type Config struct {
	HTTPAddr    string `envconfig:"HTTP_ADDR" default:":8080"`
	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error

	CORSAllowedOrigins   string `envconfig:"CORS_ALLOWED_ORIGINS" default:""`
	CORSAllowCredentials bool   `envconfig:"CORS_ALLOW_CREDENTIALS" default:"false"`

	// Reminder timing. Snooze is how long "remind me later" defers a dose,
	// grace is how long an unanswered reminder waits before it counts as missed.
	SnoozeMinutes int `envconfig:"SNOOZE_MINUTES" default:"10"`
	GraceMinutes  int `envconfig:"GRACE_MINUTES" default:"30"`

	// Delayed-job worker poll interval.
	WorkerPollMS int `envconfig:"WORKER_POLL_MS" default:"800"`

	// Optional Telegram delivery. Empty token means log-only notifications.
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" default:""`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// CORSOrigins returns the configured allowed origins as a cleaned slice.
func (c Config) CORSOrigins() []string {
	var out []string
	for _, o := range strings.Split(c.CORSAllowedOrigins, ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
