package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/repository"
	"github.com/yukikurage/task-analytics-api/internal/utils"
)

var ErrNotificationNotFound = errors.New("notification not found")

// NotificationService manages a user's in-app inbox
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

// Inbox is one page of notifications plus the unread count
type Inbox struct {
	Notifications []models.Notification
	Total         int64
	Unread        int64
}

// List returns a page of the user's notifications, newest first
func (s *NotificationService) List(ctx context.Context, userID uint64, params utils.PaginationParams) (*Inbox, error) {
	items, total, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	unread, err := s.repo.CountUnread(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return &Inbox{Notifications: items, Total: total, Unread: unread}, nil
}

// MarkRead marks one notification read
func (s *NotificationService) MarkRead(ctx context.Context, userID, id uint64) error {
	ok, err := s.repo.MarkRead(ctx, userID, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	if !ok {
		return ErrNotificationNotFound
	}
	return nil
}

// MarkAllRead marks every unread notification read and returns how many changed
func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return n, nil
}
