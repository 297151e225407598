package dto

import (
	"time"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/utils"
)

// NotificationDTO represents an in-app notification in API responses
type NotificationDTO struct {
	ID        uint64                  `json:"id"`
	Type      models.NotificationType `json:"type"`
	Title     string                  `json:"title"`
	Message   string                  `json:"message"`
	TaskID    *uint64                 `json:"task_id,omitempty"`
	Read      bool                    `json:"read"`
	CreatedAt time.Time               `json:"created_at"`
}

// NotificationListResponse represents a page of notifications
type NotificationListResponse struct {
	Notifications []NotificationDTO        `json:"notifications"`
	UnreadCount   int64                    `json:"unread_count"`
	Pagination    utils.PaginationResponse `json:"pagination"`
}

// ToNotificationDTO converts a Notification model to NotificationDTO
func ToNotificationDTO(n models.Notification) NotificationDTO {
	return NotificationDTO{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		TaskID:    n.TaskID,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}

// ToNotificationListResponse converts a page of notifications
func ToNotificationListResponse(items []models.Notification, unread int64, pagination utils.PaginationResponse) NotificationListResponse {
	dtos := make([]NotificationDTO, len(items))
	for i, n := range items {
		dtos[i] = ToNotificationDTO(n)
	}
	return NotificationListResponse{
		Notifications: dtos,
		UnreadCount:   unread,
		Pagination:    pagination,
	}
}
