package delivery

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"remindkit/internal/notification"
	"remindkit/internal/session"
)

// NotificationHandler routes fired-notification interactions back into the
// task logic and readout controller.
type NotificationHandler struct {
	service *notification.Service
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(service *notification.Service) *NotificationHandler {
	return &NotificationHandler{
		service: service,
	}
}

// HandleAction processes a user interaction with a fired notification
// POST /api/notifications/action
func (h *NotificationHandler) HandleAction(c *gin.Context) {
	sess := session.FromContext(c)

	var payload notification.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if payload.TaskID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "taskId is required"})
		return
	}

	if err := h.service.HandleAction(sess, payload); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"handled": true})
}
