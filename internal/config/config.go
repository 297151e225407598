package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/yukikurage/task-analytics-api/internal/constants"
)

type Config struct {
	Port          string
	GinMode       string
	SessionSecret string
	AppBaseURL    string
	TimeZone      string
	PeriodDays    int

	// AdminInviteToken grants the admin role at signup when it matches.
	AdminInviteToken string

	Database DatabaseConfig
	Redis    RedisConfig
	Logger   LoggerConfig
	Reminder ReminderConfig
	SMTP     SMTPConfig
}

type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return r.Host + ":" + r.Port
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

type ReminderConfig struct {
	Enabled            bool
	Interval           time.Duration
	Schedule           string
	StartupDelay       time.Duration
	Window             time.Duration
	EmailTimeout       time.Duration
	MaxConcurrentSends int
	LockTTL            time.Duration
	UseRedisLock       bool
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	FromName string
}

// Enabled reports whether an SMTP relay is configured.
func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

// Load reads configuration from the environment, after loading .env when present.
func Load() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		Port:          getEnv("PORT", "8080"),
		GinMode:       getEnv("GIN_MODE", "debug"),
		SessionSecret: getEnv("SESSION_SECRET", "default-secret-key-change-me"),
		AppBaseURL:    getEnv("APP_BASE_URL", "http://localhost:5173"),
		TimeZone:      getEnv("TZ_NAME", ""),
		PeriodDays:    getInt("ANALYTICS_PERIOD_DAYS", constants.DefaultPeriodDays),

		AdminInviteToken: getEnv("ADMIN_INVITE_TOKEN", ""),

		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", "mysql"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "3306"),
			User:     getEnv("DB_USER", "taskuser"),
			Password: getEnv("DB_PASSWORD", "taskpassword"),
			Name:     getEnv("DB_NAME", "task_management"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
		},
		Logger: LoggerConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
		Reminder: ReminderConfig{
			Enabled:            getBool("REMINDERS_ENABLED", true),
			Interval:           getDuration("REMINDER_INTERVAL", constants.DefaultReminderInterval),
			Schedule:           getEnv("REMINDER_SCHEDULE", ""),
			StartupDelay:       getDuration("REMINDER_STARTUP_DELAY", constants.DefaultReminderStartupDelay),
			Window:             getDuration("REMINDER_WINDOW", constants.DefaultReminderWindow),
			EmailTimeout:       getDuration("REMINDER_EMAIL_TIMEOUT", constants.DefaultEmailTimeout),
			MaxConcurrentSends: getInt("REMINDER_MAX_CONCURRENT_SENDS", constants.DefaultMaxConcurrentSends),
			LockTTL:            getDuration("REMINDER_LOCK_TTL", 10*time.Minute),
			UseRedisLock:       getBool("REMINDER_REDIS_LOCK", true),
		},
		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnv("SMTP_PORT", "587"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("SMTP_FROM", "no-reply@localhost"),
			FromName: getEnv("SMTP_FROM_NAME", "Task Manager"),
		},
	}
}

// Location resolves TimeZone, falling back to time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid TZ_NAME %q: %w", c.TimeZone, err)
	}
	return loc, nil
}

// Address returns the HTTP listen address.
func (c *Config) Address() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
		if seconds, err := strconv.Atoi(value); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultValue
}
