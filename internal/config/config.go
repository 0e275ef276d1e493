package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var ErrMissing = errors.New("config: required variable not set")

type Config struct {
	Env      string
	Port     int
	LogLevel string
	Storage  string // postgres | memory

	DatabaseURL string

	LocalOffset    time.Duration
	CompletedLimit int

	Telegram Telegram
	Gemini   Gemini
	SMTP     SMTP

	JWTSecret       string
	ShutdownTimeout time.Duration
}

type Telegram struct {
	Token         string
	Mode          string // polling | webhook
	PollTimeout   time.Duration
	WebhookURL    string
	WebhookSecret string
	AllowedChats  []int64
}

type Gemini struct {
	APIKey string
	Model  string
	// PlanProfile overrides the default person description used by the weekly plans.
	PlanProfile string
}

// SMTP is optional; Enabled reports whether evaluation reports are mailed.
type SMTP struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
}

func (s SMTP) Enabled() bool {
	return s.Host != "" && s.To != ""
}

func (c Config) Production() bool {
	return c.Env == "production"
}

func getenv(key, def string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	return v
}

func getdur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

func getint(key string, def int) int {
	i, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return def
	}
	return i
}

// Load reads .env when present and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the config from the process environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Env:             getenv("APP_ENV", "development"),
		Port:            getint("PORT", 8080),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		Storage:         getenv("STORAGE", "postgres"),
		CompletedLimit:  getint("COMPLETED_LIMIT", 5),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		ShutdownTimeout: getdur("SHUTDOWN_TIMEOUT", 5*time.Second),
		Telegram: Telegram{
			Token:         os.Getenv("TELEGRAM_BOT_TOKEN"),
			Mode:          getenv("TELEGRAM_MODE", "polling"),
			PollTimeout:   getdur("TELEGRAM_POLL_TIMEOUT", 30*time.Second),
			WebhookURL:    os.Getenv("TELEGRAM_WEBHOOK_URL"),
			WebhookSecret: os.Getenv("TELEGRAM_WEBHOOK_SECRET"),
		},
		Gemini: Gemini{
			APIKey:      os.Getenv("GEMINI_API_KEY"),
			Model:       getenv("GEMINI_MODEL", "gemini-1.5-flash"),
			PlanProfile: os.Getenv("GEMINI_PLAN_PROFILE"),
		},
		SMTP: SMTP{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getint("SMTP_PORT", 587),
			Username: os.Getenv("SMTP_USER"),
			Password: os.Getenv("SMTP_PASS"),
			From:     getenv("SMTP_FROM", os.Getenv("SMTP_USER")),
			To:       os.Getenv("REPORT_EMAIL"),
		},
	}

	var missing []string
	if cfg.Telegram.Token == "" {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if cfg.Gemini.APIKey == "" {
		missing = append(missing, "GEMINI_API_KEY")
	}
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("%w: %s", ErrMissing, strings.Join(missing, ", "))
	}

	offset, err := ParseOffset(getenv("LOCAL_UTC_OFFSET", "-03:00"))
	if err != nil {
		return Config{}, err
	}
	cfg.LocalOffset = offset

	chats, err := parseChatIDs(os.Getenv("ALLOWED_CHAT_IDS"))
	if err != nil {
		return Config{}, err
	}
	cfg.Telegram.AllowedChats = chats

	switch cfg.Storage {
	case "memory":
	case "postgres":
		cfg.DatabaseURL = databaseURL()
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("%w: DATABASE_URL or BLUEPRINT_DB_HOST", ErrMissing)
		}
	default:
		return Config{}, fmt.Errorf("config: unknown STORAGE %q", cfg.Storage)
	}

	switch cfg.Telegram.Mode {
	case "polling":
	case "webhook":
		if cfg.Telegram.WebhookURL == "" {
			return Config{}, fmt.Errorf("%w: TELEGRAM_WEBHOOK_URL", ErrMissing)
		}
		if cfg.Telegram.WebhookSecret == "" {
			return Config{}, fmt.Errorf("%w: TELEGRAM_WEBHOOK_SECRET", ErrMissing)
		}
	default:
		return Config{}, fmt.Errorf("config: unknown TELEGRAM_MODE %q", cfg.Telegram.Mode)
	}
	return cfg, nil
}

// databaseURL prefers DATABASE_URL and falls back to the BLUEPRINT_DB_* variables.
func databaseURL() string {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		return v
	}
	host := os.Getenv("BLUEPRINT_DB_HOST")
	if host == "" {
		return ""
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(os.Getenv("BLUEPRINT_DB_USERNAME"), os.Getenv("BLUEPRINT_DB_PASSWORD")),
		Host:   host + ":" + getenv("BLUEPRINT_DB_PORT", "5432"),
		Path:   "/" + os.Getenv("BLUEPRINT_DB_DATABASE"),
	}
	q := url.Values{}
	q.Set("sslmode", "disable")
	if schema := os.Getenv("BLUEPRINT_DB_SCHEMA"); schema != "" {
		q.Set("search_path", schema)
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// ParseOffset parses "-03:00", "+05:30" or "-3".
func ParseOffset(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("config: empty utc offset")
	}
	sign := time.Duration(1)
	switch s[0] {
	case '-':
		sign, s = -1, s[1:]
	case '+':
		s = s[1:]
	}
	hh, mm, hasMin := strings.Cut(s, ":")
	h, err := strconv.Atoi(hh)
	if err != nil || h > 14 || h < 0 {
		return 0, fmt.Errorf("config: invalid utc offset %q", s)
	}
	m := 0
	if hasMin {
		m, err = strconv.Atoi(mm)
		if err != nil || m < 0 || m > 59 {
			return 0, fmt.Errorf("config: invalid utc offset %q", s)
		}
	}
	return sign * (time.Duration(h)*time.Hour + time.Duration(m)*time.Minute), nil
}

func parseChatIDs(s string) ([]int64, error) {
	var ids []int64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: invalid chat id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}
