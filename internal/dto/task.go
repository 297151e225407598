package dto

import (
	"time"

	"github.com/yukikurage/task-analytics-api/internal/models"
)

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                 uint64                 `json:"id"`
	Title              string                 `json:"title"`
	Description        string                 `json:"description"`
	Status             models.TaskStatus      `json:"status"`
	Priority           models.TaskPriority    `json:"priority"`
	DueDate            *time.Time             `json:"due_date"`
	CreatorID          uint64                 `json:"creator_id"`
	OrganizationDomain string                 `json:"organization_domain"`
	TodoChecklist      []models.ChecklistItem `json:"todo_checklist"`
	Progress           int                    `json:"progress"`
	ReminderSent       bool                   `json:"reminder_sent"`
	ReminderSentAt     *time.Time             `json:"reminder_sent_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Creator            *UserDTO               `json:"creator,omitempty"`
	Assignees          []UserDTO              `json:"assignees"`
}

// ToTaskDTO converts a Task model to TaskDTO
func ToTaskDTO(task models.Task) TaskDTO {
	dto := TaskDTO{
		ID:                 task.ID,
		Title:              task.Title,
		Description:        task.Description,
		Status:             task.Status,
		Priority:           task.Priority,
		DueDate:            task.DueDate,
		CreatorID:          task.CreatorID,
		OrganizationDomain: task.OrganizationDomain,
		TodoChecklist:      task.TodoChecklist,
		Progress:           checklistProgress(task.TodoChecklist),
		ReminderSent:       task.ReminderSent,
		ReminderSentAt:     task.ReminderSentAt,
		CreatedAt:          task.CreatedAt,
		UpdatedAt:          task.UpdatedAt,
		Assignees:          []UserDTO{},
	}
	if dto.TodoChecklist == nil {
		dto.TodoChecklist = []models.ChecklistItem{}
	}

	// Include creator if preloaded
	if task.Creator.ID != 0 {
		creator := ToUserSummaryDTO(task.Creator)
		dto.Creator = &creator
	}

	for _, user := range task.Assignees() {
		dto.Assignees = append(dto.Assignees, ToUserSummaryDTO(user))
	}

	return dto
}

// checklistProgress is the percentage of completed checklist items
func checklistProgress(items []models.ChecklistItem) int {
	if len(items) == 0 {
		return 0
	}
	done := 0
	for _, item := range items {
		if item.Completed {
			done++
		}
	}
	return done * 100 / len(items)
}
