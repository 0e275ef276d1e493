package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "123:abc")
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("STORAGE", "memory")
}

func TestFromEnvMissingRequired(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "")
	t.Setenv("GEMINI_API_KEY", "")

	_, err := FromEnv()
	require.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "TELEGRAM_BOT_TOKEN")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}

func TestFromEnvDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("LOCAL_UTC_OFFSET", "")
	t.Setenv("GEMINI_MODEL", "")
	t.Setenv("TELEGRAM_MODE", "")
	t.Setenv("COMPLETED_LIMIT", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, -3*time.Hour, cfg.LocalOffset)
	assert.Equal(t, "gemini-1.5-flash", cfg.Gemini.Model)
	assert.Equal(t, "polling", cfg.Telegram.Mode)
	assert.Equal(t, 5, cfg.CompletedLimit)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestFromEnvPostgresFromBlueprint(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE", "postgres")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BLUEPRINT_DB_HOST", "db")
	t.Setenv("BLUEPRINT_DB_PORT", "5433")
	t.Setenv("BLUEPRINT_DB_DATABASE", "vitabot")
	t.Setenv("BLUEPRINT_DB_USERNAME", "bot")
	t.Setenv("BLUEPRINT_DB_PASSWORD", "s3cret")
	t.Setenv("BLUEPRINT_DB_SCHEMA", "public")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://bot:s3cret@db:5433/vitabot?search_path=public&sslmode=disable", cfg.DatabaseURL)
}

func TestFromEnvWebhookNeedsURL(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_MODE", "webhook")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "")

	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrMissing)
}

func TestFromEnvWebhookNeedsSecret(t *testing.T) {
	setRequired(t)
	t.Setenv("TELEGRAM_MODE", "webhook")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.example.com/telegram/webhook")
	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "")

	_, err := FromEnv()
	require.ErrorIs(t, err, ErrMissing)
	assert.Contains(t, err.Error(), "TELEGRAM_WEBHOOK_SECRET")

	t.Setenv("TELEGRAM_WEBHOOK_SECRET", "hook")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "hook", cfg.Telegram.WebhookSecret)
}

func TestFromEnvAllowedChats(t *testing.T) {
	setRequired(t)
	t.Setenv("ALLOWED_CHAT_IDS", "42, -100200")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, []int64{42, -100200}, cfg.Telegram.AllowedChats)

	t.Setenv("ALLOWED_CHAT_IDS", "42,abc")
	_, err = FromEnv()
	assert.Error(t, err)
}

func TestParseOffset(t *testing.T) {
	cases := map[string]time.Duration{
		"-03:00": -3 * time.Hour,
		"+05:30": 5*time.Hour + 30*time.Minute,
		"-3":     -3 * time.Hour,
		"00:00":  0,
	}
	for in, want := range cases {
		got, err := ParseOffset(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "abc", "+25:00", "-03:75"} {
		_, err := ParseOffset(bad)
		assert.Error(t, err, bad)
	}
}
