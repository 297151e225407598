package models

import "time"

type NotificationType string

const (
	NotificationDueDateReminder NotificationType = "due_date_reminder"
	NotificationTaskAssigned    NotificationType = "task_assigned"
	NotificationMention         NotificationType = "mention"
)

type Notification struct {
	ID        uint64           `gorm:"primarykey" json:"id"`
	UserID    uint64           `gorm:"not null;index" json:"user_id"`
	Type      NotificationType `gorm:"type:varchar(40);not null" json:"type"`
	Title     string           `gorm:"type:varchar(255);not null" json:"title"`
	Message   string           `gorm:"type:text" json:"message"`
	TaskID    *uint64          `gorm:"index" json:"task_id,omitempty"`
	Read      bool             `gorm:"column:is_read;not null;default:false" json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}
