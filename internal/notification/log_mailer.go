package notification

import (
	"context"

	"go.uber.org/zap"
)

// LogMailer writes reminders to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogMailer{logger: logger}
}

// SendDueDateReminder implements Mailer.
func (m *LogMailer) SendDueDateReminder(ctx context.Context, r DueDateReminder) error {
	if r.Email == "" {
		return ErrNoRecipient
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.logger.Info("due date reminder (smtp disabled)",
		zap.String("to", r.Email),
		zap.String("subject", r.Subject()),
		zap.String("task_url", r.TaskURL))
	return nil
}
