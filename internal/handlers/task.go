package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-analytics-api/internal/dto"
	apierrors "github.com/yukikurage/task-analytics-api/internal/errors"
	"github.com/yukikurage/task-analytics-api/internal/middleware"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/reminder"
	"github.com/yukikurage/task-analytics-api/internal/services"
)

// TaskReminderSender sends an immediate reminder for one task
type TaskReminderSender interface {
	SendReminderForTask(ctx context.Context, taskID uint64) (int, error)
}

type TaskHandler struct {
	taskService *services.TaskService
	reminders   TaskReminderSender
}

func NewTaskHandler(taskService *services.TaskService, reminders TaskReminderSender) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
		reminders:   reminders,
	}
}

// GetTask returns a specific task by ID
// Task is already loaded with relations by RequireTaskAccess middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(task))
}

// CreateTask creates a new task in the admin's organization
func (h *TaskHandler) CreateTask(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	var req struct {
		Title         string                 `json:"title" binding:"required,max=255"`
		Description   string                 `json:"description"`
		Status        models.TaskStatus      `json:"status"`
		Priority      models.TaskPriority    `json:"priority"`
		DueDate       *time.Time             `json:"due_date"`
		TodoChecklist []models.ChecklistItem `json:"todo_checklist"`
		AssignedTo    []uint64               `json:"assigned_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		TodoChecklist: req.TodoChecklist,
		AssigneeIDs:   req.AssignedTo,
		Creator:       user,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.ToTaskDTO(*task))
}

// UpdateTask updates a task. Assignees may change status and checklist
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req struct {
		Title         *string                 `json:"title"`
		Description   *string                 `json:"description"`
		Status        *models.TaskStatus      `json:"status"`
		Priority      *models.TaskPriority    `json:"priority"`
		DueDate       *time.Time              `json:"due_date"`
		ClearDueDate  bool                    `json:"clear_due_date"`
		TodoChecklist *[]models.ChecklistItem `json:"todo_checklist"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task.ID, user, services.UpdateTaskInput{
		Title:         req.Title,
		Description:   req.Description,
		Status:        req.Status,
		Priority:      req.Priority,
		DueDate:       req.DueDate,
		ClearDueDate:  req.ClearDueDate,
		TodoChecklist: req.TodoChecklist,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// AssignTask assigns users to a task
func (h *TaskHandler) AssignTask(c *gin.Context) {
	user, _ := middleware.GetUser(c)
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	var req struct {
		UserIDs []uint64 `json:"user_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	updated, err := h.taskService.AssignUsers(c.Request.Context(), services.AssignUsersInput{
		TaskID:  task.ID,
		Actor:   user,
		UserIDs: req.UserIDs,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTaskDTO(*updated))
}

// SendReminder emails every assignee of the task now, regardless of
// whether the scheduled reminder already went out
func (h *TaskHandler) SendReminder(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "Task not found in context")
		return
	}

	sent, err := h.reminders.SendReminderForTask(c.Request.Context(), task.ID)
	if err != nil {
		switch {
		case errors.Is(err, reminder.ErrTaskNotFound):
			apierrors.NotFound(c, "Task not found")
		case errors.Is(err, reminder.ErrTaskNoDueDate):
			apierrors.BadRequest(c, "Task has no due date")
		default:
			apierrors.InternalError(c, "Failed to send reminder")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"sent_count": sent})
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrAdminRequired):
		apierrors.AdminRequired(c)
	case errors.Is(err, services.ErrTaskPermissionDenied):
		apierrors.Forbidden(c, err.Error())
	case errors.Is(err, services.ErrTitleRequired),
		errors.Is(err, services.ErrTitleEmpty),
		errors.Is(err, services.ErrInvalidStatus),
		errors.Is(err, services.ErrInvalidPriority),
		errors.Is(err, services.ErrNoUserIDsProvided),
		errors.Is(err, services.ErrInvalidTaskAssignee):
		apierrors.BadRequest(c, err.Error())
	default:
		apierrors.InternalError(c, "")
	}
}
