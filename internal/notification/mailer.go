package notification

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/models"
)

// DueDateReminder is the content of one due-date reminder email.
type DueDateReminder struct {
	Email     string
	Name      string
	TaskTitle string
	DueDate   time.Time
	Priority  models.TaskPriority
	TaskURL   string
}

// Mailer delivers reminder emails. Each call is a single attempt.
type Mailer interface {
	SendDueDateReminder(ctx context.Context, r DueDateReminder) error
}

const dueDateLayout = "Mon, 02 Jan 2006 15:04 MST"

// Subject returns the email subject line.
func (r DueDateReminder) Subject() string {
	return fmt.Sprintf("Reminder: %q is due %s", r.TaskTitle, r.DueDate.Format(dueDateLayout))
}

// Body returns the plain-text email body.
func (r DueDateReminder) Body() string {
	var b strings.Builder
	name := r.Name
	if name == "" {
		name = r.Email
	}
	fmt.Fprintf(&b, "Hi %s,\r\n\r\n", name)
	fmt.Fprintf(&b, "This is a reminder that the following task is due within the next day.\r\n\r\n")
	fmt.Fprintf(&b, "Task:     %s\r\n", r.TaskTitle)
	fmt.Fprintf(&b, "Due:      %s\r\n", r.DueDate.Format(dueDateLayout))
	fmt.Fprintf(&b, "Priority: %s\r\n", r.Priority)
	if r.TaskURL != "" {
		fmt.Fprintf(&b, "\r\nOpen the task: %s\r\n", r.TaskURL)
	}
	return b.String()
}
