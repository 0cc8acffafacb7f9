package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/scheduler"
)

// ReminderRunner is the part of the scheduler exposed over HTTP.
type ReminderRunner interface {
	Scan(ctx context.Context) scheduler.Report
	Running() bool
}

type ReminderHandler struct {
	runner ReminderRunner
	logger *slog.Logger
}

func NewReminderHandler(runner ReminderRunner, logger *slog.Logger) *ReminderHandler {
	return &ReminderHandler{runner: runner, logger: logger}
}

// @Summary      Run a reminder scan now (admin)
// @Tags         Reminders
// @Produce      json
// @Success      200  {object}  scheduler.Report
// @Router       /reminders/run [post]
func (h *ReminderHandler) Run(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	h.logger.Info("[reminders][run] manual scan", "by", userID)
	report := h.runner.Scan(context.WithoutCancel(c.Request.Context()))
	c.JSON(http.StatusOK, report)
}

func (h *ReminderHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"running": h.runner.Running()})
}
