package middleware

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/task-analytics-api/internal/constants"
	apierrors "github.com/yukikurage/task-analytics-api/internal/errors"
	"github.com/yukikurage/task-analytics-api/internal/models"
	"github.com/yukikurage/task-analytics-api/internal/services"
)

// RequireTaskAccess loads the task named by the :id parameter. The user must
// be its creator, an assignee, or an admin of its organization
func RequireTaskAccess(tasks *services.TaskService, orgs *services.OrganizationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		taskID, err := strconv.ParseUint(c.Param("id"), 10, 64)
		if err != nil {
			apierrors.BadRequest(c, "Invalid task ID")
			return
		}

		user, ok := GetUser(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			return
		}

		task, err := tasks.GetTask(c.Request.Context(), taskID)
		if err != nil {
			if errors.Is(err, services.ErrTaskNotFound) {
				apierrors.NotFound(c, "Task not found")
				return
			}
			apierrors.InternalError(c, "")
			return
		}

		if !orgs.CanAccessTask(user, *task) {
			// Return 404 instead of 403 to avoid leaking task existence
			apierrors.NotFound(c, "Task not found")
			return
		}

		c.Set(constants.ContextKeyTask, *task)
		c.Next()
	}
}

// GetTask retrieves the task loaded by RequireTaskAccess
func GetTask(c *gin.Context) (models.Task, bool) {
	v, exists := c.Get(constants.ContextKeyTask)
	if !exists {
		return models.Task{}, false
	}
	task, ok := v.(models.Task)
	return task, ok
}
