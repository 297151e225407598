package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	apierrors "github.com/yukikurage/task-analytics-api/internal/errors"
	"github.com/yukikurage/task-analytics-api/internal/reminder"
	"github.com/yukikurage/task-analytics-api/pkg/logger"
	"go.uber.org/zap"
)

// ReminderTrigger runs a reminder scan on demand
type ReminderTrigger interface {
	TriggerOnce(ctx context.Context) (reminder.ScanResult, error)
}

type ReminderHandler struct {
	scanner ReminderTrigger
	logger  *zap.Logger
}

func NewReminderHandler(scanner ReminderTrigger, log *zap.Logger) *ReminderHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReminderHandler{scanner: scanner, logger: log}
}

// TriggerScan runs one reminder scan and reports how many tasks were reminded
func (h *ReminderHandler) TriggerScan(c *gin.Context) {
	result, err := h.scanner.TriggerOnce(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context(), h.logger).Error("manual reminder scan failed", zap.Error(err))
		apierrors.InternalError(c, "Reminder scan failed")
		return
	}

	c.JSON(http.StatusOK, result)
}
