package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-analytics-api/internal/dto"
	apierrors "github.com/yukikurage/task-analytics-api/internal/errors"
	"github.com/yukikurage/task-analytics-api/internal/middleware"
	"github.com/yukikurage/task-analytics-api/internal/services"
	"github.com/yukikurage/task-analytics-api/internal/utils"
)

type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListNotifications returns a page of the current user's notifications
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	params := utils.GetPaginationParams(c)
	inbox, err := h.notifications.List(c.Request.Context(), userID, params)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch notifications")
		return
	}

	c.JSON(http.StatusOK, dto.ToNotificationListResponse(
		inbox.Notifications,
		inbox.Unread,
		utils.NewPaginationResponse(params, inbox.Total),
	))
}

// MarkRead marks one notification read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid notification ID")
		return
	}

	if err := h.notifications.MarkRead(c.Request.Context(), userID, id); err != nil {
		if errors.Is(err, services.ErrNotificationNotFound) {
			apierrors.NotFound(c, "Notification not found")
			return
		}
		apierrors.InternalError(c, "Failed to update notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}

// MarkAllRead marks all of the current user's notifications read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	n, err := h.notifications.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		apierrors.InternalError(c, "Failed to update notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"updated": n})
}
