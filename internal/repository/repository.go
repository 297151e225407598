package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/utils"
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID with assignees and creator loaded
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// Update saves all task fields except the reminder guard
	Update(ctx context.Context, task *models.Task) error

	// FindByAssignee returns every task assigned to the user
	FindByAssignee(ctx context.Context, userID uint64) ([]models.Task, error)

	// FindByAssigneeInDomain returns the user's tasks that belong to an organization domain
	FindByAssigneeInDomain(ctx context.Context, userID uint64, domain string) ([]models.Task, error)

	// FindByAssigneeAndCreator returns the user's tasks created by creatorID
	FindByAssigneeAndCreator(ctx context.Context, userID, creatorID uint64) ([]models.Task, error)

	// FindDueWithinWindow returns non-completed, not-yet-reminded tasks with
	// notBefore < due_date <= notAfter, assignees preloaded
	FindDueWithinWindow(ctx context.Context, notBefore, notAfter time.Time) ([]models.Task, error)

	// MarkReminderSent sets the reminder guard only if it is still unset.
	// It reports false without error when another writer set it first.
	MarkReminderSent(ctx context.Context, taskID uint64, sentAt time.Time) (bool, error)

	// ResetReminder clears the reminder guard
	ResetReminder(ctx context.Context, taskID uint64) error

	// AssignUsers assigns multiple users to a task
	AssignUsers(ctx context.Context, taskID uint64, userIDs []uint64) error
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// FindByIDs returns the users with the given IDs, ordered by ID
	FindByIDs(ctx context.Context, ids []uint64) ([]models.User, error)

	// ListByDomain lists users whose email domain matches, ordered by ID
	ListByDomain(ctx context.Context, domain string) ([]models.User, error)

	// ListAssigneesOfCreator lists users assigned to tasks created by creatorID, ordered by ID
	ListAssigneesOfCreator(ctx context.Context, creatorID uint64) ([]models.User, error)
}

// NotificationRepository defines the interface for in-app notification storage
type NotificationRepository interface {
	// Create stores a notification
	Create(ctx context.Context, n *models.Notification) error

	// ListByUser returns a page of the user's notifications, newest first, with the total count
	ListByUser(ctx context.Context, userID uint64, params utils.PaginationParams) ([]models.Notification, int64, error)

	// CountUnread counts the user's unread notifications
	CountUnread(ctx context.Context, userID uint64) (int64, error)

	// MarkRead marks one of the user's notifications read; false when it does not exist
	MarkRead(ctx context.Context, userID, id uint64) (bool, error)

	// MarkAllRead marks all of the user's notifications read and returns how many changed
	MarkAllRead(ctx context.Context, userID uint64) (int64, error)
}
