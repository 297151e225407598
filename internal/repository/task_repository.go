package repository

import (
	"context"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/database"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID with assignees and creator loaded
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).
		Preload("Creator").
		Preload("Assignments").
		Preload("Assignments.User").
		First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update saves all task fields except the reminder guard, which only
// MarkReminderSent and ResetReminder write
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).
		Omit(clause.Associations, "reminder_sent", "reminder_sent_at").
		Save(task).Error
}

// FindByAssignee returns every task assigned to the user
func (r *GormTaskRepository) FindByAssignee(ctx context.Context, userID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.AssignedTo(userID)).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByAssigneeInDomain returns the user's tasks that belong to an organization domain
func (r *GormTaskRepository) FindByAssigneeInDomain(ctx context.Context, userID uint64, domain string) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.AssignedTo(userID)).
		Where("tasks.organization_domain = ?", domain).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindByAssigneeAndCreator returns the user's tasks created by creatorID
func (r *GormTaskRepository) FindByAssigneeAndCreator(ctx context.Context, userID, creatorID uint64) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Scopes(database.AssignedTo(userID)).
		Where("tasks.creator_id = ?", creatorID).
		Order("tasks.id ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// FindDueWithinWindow returns reminder candidates due in (notBefore, notAfter]
func (r *GormTaskRepository) FindDueWithinWindow(ctx context.Context, notBefore, notAfter time.Time) ([]models.Task, error) {
	var tasks []models.Task
	if err := r.db.WithContext(ctx).
		Preload("Assignments").
		Preload("Assignments.User").
		Where("tasks.status <> ?", models.TaskStatusCompleted).
		Where("tasks.reminder_sent = ?", false).
		Where("tasks.due_date IS NOT NULL").
		Where("tasks.due_date > ? AND tasks.due_date <= ?", notBefore, notAfter).
		Order("tasks.due_date ASC").
		Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// MarkReminderSent sets reminder_sent only when it is still false
func (r *GormTaskRepository) MarkReminderSent(ctx context.Context, taskID uint64, sentAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ? AND reminder_sent = ?", taskID, false).
		UpdateColumns(map[string]interface{}{
			"reminder_sent":    true,
			"reminder_sent_at": sentAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ResetReminder clears the reminder guard
func (r *GormTaskRepository) ResetReminder(ctx context.Context, taskID uint64) error {
	return r.db.WithContext(ctx).
		Model(&models.Task{}).
		Where("id = ?", taskID).
		UpdateColumns(map[string]interface{}{
			"reminder_sent":    false,
			"reminder_sent_at": nil,
		}).Error
}

// AssignUsers assigns multiple users to a task
func (r *GormTaskRepository) AssignUsers(ctx context.Context, taskID uint64, userIDs []uint64) error {
	if len(userIDs) == 0 {
		return nil
	}

	assignments := make([]models.TaskAssignment, len(userIDs))
	for i, userID := range userIDs {
		assignments[i] = models.TaskAssignment{
			TaskID: taskID,
			UserID: userID,
		}
	}

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "task_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"deleted_at": gorm.Expr("NULL")}),
		}).
		Create(&assignments).Error
}
