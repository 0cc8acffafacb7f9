package handlers

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tasktracker/internal/realtime"
	"tasktracker/internal/services"
)

type NotificationHandler struct {
	service  services.NotificationService
	registry *realtime.Registry
	logger   *slog.Logger
}

func NewNotificationHandler(service services.NotificationService, registry *realtime.Registry, logger *slog.Logger) *NotificationHandler {
	return &NotificationHandler{service: service, registry: registry, logger: logger}
}

// @Summary      My notifications
// @Tags         Notifications
// @Produce      json
// @Param        unread  query  bool  false  "Only unread"
// @Param        limit   query  int   false  "Max rows (default 50)"
// @Success      200  {array}  NotificationResponse
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	limit, _ := strconv.Atoi(c.Query("limit"))
	unread := c.Query("unread") == "true"

	items, err := h.service.List(c.Request.Context(), userID, unread, limit)
	if err != nil {
		respondError(c, h.logger, "[notification][list]", err)
		return
	}
	resp, err := toNotificationResponses(items)
	if err != nil {
		respondError(c, h.logger, "[notification][list]", err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), id, userID); err != nil {
		respondError(c, h.logger, "[notification][read]", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	n, err := h.service.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "[notification][read-all]", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

// @Summary      Live notification stream
// @Description  WebSocket. The token may be passed as ?token= because browsers cannot set headers on the handshake.
// @Tags         Notifications
// @Success      101
// @Router       /notifications/stream [get]
func (h *NotificationHandler) Stream(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	conn, err := realtime.Upgrade(c.Writer, c.Request)
	if err != nil {
		h.logger.Info("[notification][stream][400]", "user_id", userID, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	if prev := h.registry.Register(userID, conn); prev != nil {
		if closer, ok := prev.(io.Closer); ok {
			_ = closer.Close()
		}
		h.logger.Info("[notification][stream] replaced previous connection", "user_id", userID)
	}
	h.logger.Info("[notification][stream] connected", "user_id", userID, "live", h.registry.Count())

	defer func() {
		h.registry.Unregister(userID, conn)
		_ = conn.Close()
		h.logger.Info("[notification][stream] disconnected", "user_id", userID)
	}()

	// the client only sends pings and the close frame
	for {
		if _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
