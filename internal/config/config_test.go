package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "mysql", cfg.Database.Driver)
	assert.Equal(t, 30, cfg.PeriodDays)
	assert.True(t, cfg.Reminder.Enabled)
	assert.Equal(t, time.Hour, cfg.Reminder.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.Window)
	assert.False(t, cfg.SMTP.Enabled())
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	t.Setenv("REMINDER_INTERVAL", "15m")
	t.Setenv("REMINDER_SCHEDULE", "0 30 * * * *")
	t.Setenv("REMINDER_EMAIL_TIMEOUT", "3")
	t.Setenv("REMINDER_MAX_CONCURRENT_SENDS", "8")
	t.Setenv("REMINDERS_ENABLED", "false")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("REDIS_HOST", "cache")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, 15*time.Minute, cfg.Reminder.Interval)
	assert.Equal(t, "0 30 * * * *", cfg.Reminder.Schedule)
	assert.Equal(t, 3*time.Second, cfg.Reminder.EmailTimeout)
	assert.Equal(t, 8, cfg.Reminder.MaxConcurrentSends)
	assert.False(t, cfg.Reminder.Enabled)
	assert.True(t, cfg.SMTP.Enabled())
	assert.Equal(t, "cache:6379", cfg.Redis.Addr())
}

func TestLoad_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("REMINDER_WINDOW", "soon")

	cfg := Load()

	assert.Equal(t, 0, cfg.Redis.DB)
	assert.Equal(t, 24*time.Hour, cfg.Reminder.Window)
}

func TestLocation(t *testing.T) {
	cfg := &Config{}
	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	cfg.TimeZone = "UTC"
	loc, err = cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())

	cfg.TimeZone = "Mars/Olympus"
	_, err = cfg.Location()
	assert.Error(t, err)
}
