package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound         = errors.New("task not found")
	ErrAdminRequired        = errors.New("only admins can perform this action")
	ErrTaskPermissionDenied = errors.New("user does not have permission to modify this task")
	ErrNoUserIDsProvided    = errors.New("at least one user ID is required")
	ErrTitleRequired        = errors.New("title is required")
	ErrTitleEmpty           = errors.New("title cannot be empty")
	ErrInvalidStatus        = errors.New("invalid task status")
	ErrInvalidPriority      = errors.New("invalid task priority")
	ErrInvalidTaskAssignee  = errors.New("one or more users do not exist or are not members of the organization")
)

// TaskNotifier is told about new assignments
type TaskNotifier interface {
	TaskAssigned(ctx context.Context, user models.User, task models.Task) error
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	userRepo   repository.UserRepository
	orgService *OrganizationService
	notifier   TaskNotifier
	logger     *zap.Logger
}

// NewTaskService creates a new TaskService
func NewTaskService(
	taskRepo repository.TaskRepository,
	userRepo repository.UserRepository,
	orgService *OrganizationService,
	notifier TaskNotifier,
	logger *zap.Logger,
) *TaskService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskService{
		taskRepo:   taskRepo,
		userRepo:   userRepo,
		orgService: orgService,
		notifier:   notifier,
		logger:     logger,
	}
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title         string
	Description   string
	Status        models.TaskStatus
	Priority      models.TaskPriority
	DueDate       *time.Time
	TodoChecklist []models.ChecklistItem
	AssigneeIDs   []uint64
	Creator       models.User
}

// UpdateTaskInput represents input for updating a task. Assignees may only
// change Status and TodoChecklist
type UpdateTaskInput struct {
	Title         *string
	Description   *string
	Status        *models.TaskStatus
	Priority      *models.TaskPriority
	DueDate       *time.Time
	ClearDueDate  bool
	TodoChecklist *[]models.ChecklistItem
}

func (in UpdateTaskInput) touchesManagedFields() bool {
	return in.Title != nil || in.Description != nil || in.Priority != nil || in.DueDate != nil || in.ClearDueDate
}

// AssignUsersInput represents input for assigning users to a task
type AssignUsersInput struct {
	TaskID  uint64
	Actor   models.User
	UserIDs []uint64
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask creates a task in the creator's organization and assigns the
// requested users
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	if !input.Creator.IsAdmin() {
		return nil, ErrAdminRequired
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, ErrTitleRequired
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	assignees, err := s.resolveAssignees(ctx, input.Creator, input.AssigneeIDs)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:              strings.TrimSpace(input.Title),
		Description:        input.Description,
		Status:             input.Status,
		Priority:           input.Priority,
		DueDate:            input.DueDate,
		TodoChecklist:      input.TodoChecklist,
		CreatorID:          input.Creator.ID,
		OrganizationDomain: input.Creator.Domain,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	if len(assignees) > 0 {
		if err := s.assign(ctx, task, assignees); err != nil {
			return nil, err
		}
	}

	return s.GetTask(ctx, task.ID)
}

// UpdateTask updates an existing task. Changing the due date clears the
// reminder flag so the new date gets its own reminder
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, actor models.User, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return nil, err
	}

	canManage := s.orgService.CanManageTask(actor, *task)
	if !canManage && (input.touchesManagedFields() || !isAssignee(*task, actor.ID)) {
		return nil, ErrTaskPermissionDenied
	}

	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, ErrTitleEmpty
		}
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.TodoChecklist != nil {
		task.TodoChecklist = *input.TodoChecklist
	}

	dueChanged := false
	if input.ClearDueDate {
		dueChanged = task.DueDate != nil
		task.DueDate = nil
	} else if input.DueDate != nil {
		dueChanged = task.DueDate == nil || !task.DueDate.Equal(*input.DueDate)
		task.DueDate = input.DueDate
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	if dueChanged {
		if err := s.taskRepo.ResetReminder(ctx, task.ID); err != nil {
			return nil, fmt.Errorf("failed to reset reminder: %w", err)
		}
	}

	return s.GetTask(ctx, task.ID)
}

// AssignUsers assigns multiple users to a task with validation. Newly
// assigned users receive an in-app notification
func (s *TaskService) AssignUsers(ctx context.Context, input AssignUsersInput) (*models.Task, error) {
	if len(input.UserIDs) == 0 {
		return nil, ErrNoUserIDsProvided
	}

	task, err := s.GetTask(ctx, input.TaskID)
	if err != nil {
		return nil, err
	}

	if !s.orgService.CanManageTask(input.Actor, *task) {
		return nil, ErrTaskPermissionDenied
	}

	assignees, err := s.resolveAssignees(ctx, input.Actor, input.UserIDs)
	if err != nil {
		return nil, err
	}

	if err := s.assign(ctx, task, assignees); err != nil {
		return nil, err
	}

	return s.GetTask(ctx, task.ID)
}

func (s *TaskService) assign(ctx context.Context, task *models.Task, users []models.User) error {
	ids := make([]uint64, len(users))
	for i, u := range users {
		ids[i] = u.ID
	}

	if err := s.taskRepo.AssignUsers(ctx, task.ID, ids); err != nil {
		return fmt.Errorf("failed to assign users: %w", err)
	}

	if s.notifier == nil {
		return nil
	}
	for _, u := range users {
		if isAssignee(*task, u.ID) {
			continue
		}
		if err := s.notifier.TaskAssigned(ctx, u, *task); err != nil {
			s.logger.Warn("failed to notify assignee",
				zap.Uint64("task_id", task.ID),
				zap.Uint64("user_id", u.ID),
				zap.Error(err))
		}
	}
	return nil
}

// resolveAssignees loads the users and checks that actor may assign them.
// Within an organization only its members can be assigned
func (s *TaskService) resolveAssignees(ctx context.Context, actor models.User, userIDs []uint64) ([]models.User, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	ids := uniqueUint64(userIDs)
	users, err := s.userRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to verify users: %w", err)
	}
	if len(users) != len(ids) {
		return nil, ErrInvalidTaskAssignee
	}

	if s.orgService.HasOrganization(actor) {
		for _, u := range users {
			if !s.orgService.SameOrganization(actor, u) {
				return nil, ErrInvalidTaskAssignee
			}
		}
	}

	return users, nil
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
