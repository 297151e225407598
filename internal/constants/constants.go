package constants

import "time"

// Session and context keys
const (
	SessionCookieName = "task_session"
	ContextKeyUserID  = "user_id"
	ContextKeyUser    = "user"
	ContextKeyTask    = "task"
)

// Validation limits
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Analytics
const (
	// StreakMaxDays caps the backward walk of the streak calculation.
	StreakMaxDays = 365

	DefaultPeriodDays = 30
	MaxPeriodDays     = 365
	TrendBucketDays   = 7
)

// Reminders
const (
	DefaultReminderWindow       = 24 * time.Hour
	DefaultReminderInterval     = time.Hour
	DefaultReminderStartupDelay = 10 * time.Second
	DefaultEmailTimeout         = 10 * time.Second
	DefaultMaxConcurrentSends   = 4
	ReminderLockKey             = "reminders:scan:lock"
)

// PublicEmailDomains are consumer mail providers. Users on these domains do
// not form an organization with each other
var PublicEmailDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"outlook.com":    {},
	"hotmail.com":    {},
	"live.com":       {},
	"icloud.com":     {},
	"me.com":         {},
	"aol.com":        {},
	"proton.me":      {},
	"protonmail.com": {},
	"gmx.com":        {},
	"yandex.com":     {},
	"mail.com":       {},
}
