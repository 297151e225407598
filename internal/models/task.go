package models

import (
	"time"

	"gorm.io/gorm"
)

type TaskStatus string

const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted:
		return true
	}
	return false
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "low"
	TaskPriorityMedium TaskPriority = "medium"
	TaskPriorityHigh   TaskPriority = "high"
)

// Valid reports whether p is one of the known priorities.
func (p TaskPriority) Valid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	}
	return false
}

// ChecklistItem is one entry of a task's todo checklist.
type ChecklistItem struct {
	Text      string `json:"text"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID                 uint64          `gorm:"primarykey" json:"id"`
	Title              string          `gorm:"not null" json:"title"`
	Description        string          `gorm:"type:text" json:"description"`
	Status             TaskStatus      `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`
	Priority           TaskPriority    `gorm:"type:varchar(20);not null;default:'medium'" json:"priority"`
	DueDate            *time.Time      `json:"due_date"`
	CreatorID          uint64          `gorm:"not null" json:"creator_id"`
	OrganizationDomain string          `gorm:"type:varchar(255);index;not null" json:"organization_domain"`
	TodoChecklist      []ChecklistItem `gorm:"serializer:json;type:text" json:"todo_checklist"`
	ReminderSent       bool            `gorm:"not null;default:false" json:"reminder_sent"`
	ReminderSentAt     *time.Time      `json:"reminder_sent_at"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
	DeletedAt          gorm.DeletedAt  `gorm:"index" json:"-"`

	// Relations
	Creator     User             `gorm:"foreignKey:CreatorID" json:"creator,omitempty"`
	Assignments []TaskAssignment `gorm:"foreignKey:TaskID" json:"assignments,omitempty"`
}

// IsCompleted reports whether the task is in the completed state.
func (t Task) IsCompleted() bool {
	return t.Status == TaskStatusCompleted
}

// Assignees returns the preloaded assigned users.
func (t Task) Assignees() []User {
	users := make([]User, 0, len(t.Assignments))
	for _, a := range t.Assignments {
		if a.User.ID == 0 {
			continue
		}
		users = append(users, a.User)
	}
	return users
}
