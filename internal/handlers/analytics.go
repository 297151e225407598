package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-analytics-api/internal/errors"
	"github.com/yukikurage/task-analytics-api/internal/middleware"
	"github.com/yukikurage/task-analytics-api/internal/services"
)

// AnalyticsHandler serves productivity statistics
type AnalyticsHandler struct {
	analytics *services.AnalyticsService
}

func NewAnalyticsHandler(analytics *services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GetMyStats returns the current user's productivity snapshot
func (h *AnalyticsHandler) GetMyStats(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	period, ok := periodDays(c)
	if !ok {
		return
	}

	stats, err := h.analytics.GetProductivityStats(c.Request.Context(), userID, period)
	if err != nil {
		apierrors.InternalError(c, "Failed to compute productivity stats")
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetTeamStats returns the ranked productivity of the admin's team
func (h *AnalyticsHandler) GetTeamStats(c *gin.Context) {
	user, ok := middleware.GetUser(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}
	period, ok := periodDays(c)
	if !ok {
		return
	}

	report, err := h.analytics.GetTeamProductivityStats(c.Request.Context(), user, period)
	if err != nil {
		if errors.Is(err, services.ErrAdminRequired) {
			apierrors.AdminRequired(c)
			return
		}
		apierrors.InternalError(c, "Failed to compute team stats")
		return
	}

	c.JSON(http.StatusOK, report)
}

// periodDays reads the optional period_days query parameter; zero means the
// configured default
func periodDays(c *gin.Context) (int, bool) {
	raw := c.Query("period_days")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		apierrors.BadRequest(c, "period_days must be a non-negative integer")
		return 0, false
	}
	return n, true
}
