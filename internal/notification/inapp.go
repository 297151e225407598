package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/repository"
)

// InApp stores notifications shown in a user's inbox.
type InApp struct {
	repo repository.NotificationRepository
}

func NewInApp(repo repository.NotificationRepository) *InApp {
	return &InApp{repo: repo}
}

// DueDateReminder records a due-date reminder for user.
func (n *InApp) DueDateReminder(ctx context.Context, user models.User, task models.Task) error {
	msg := fmt.Sprintf("Task %q is due soon.", task.Title)
	if task.DueDate != nil {
		msg = fmt.Sprintf("Task %q is due on %s.", task.Title, task.DueDate.Format(time.RFC1123))
	}
	return n.create(ctx, user.ID, models.NotificationDueDateReminder, "Task due soon", msg, task.ID)
}

// TaskAssigned records that user was assigned to task.
func (n *InApp) TaskAssigned(ctx context.Context, user models.User, task models.Task) error {
	msg := fmt.Sprintf("You have been assigned to %q.", task.Title)
	return n.create(ctx, user.ID, models.NotificationTaskAssigned, "New task assigned", msg, task.ID)
}

func (n *InApp) create(ctx context.Context, userID uint64, typ models.NotificationType, title, message string, taskID uint64) error {
	notification := &models.Notification{
		UserID:  userID,
		Type:    typ,
		Title:   title,
		Message: message,
		TaskID:  &taskID,
	}
	if err := n.repo.Create(ctx, notification); err != nil {
		return fmt.Errorf("failed to create %s notification: %w", typ, err)
	}
	return nil
}
