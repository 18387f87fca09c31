package handlers

import (
	"context"
	"net/http"

	"disputeshield_back_end/internal/models"
	"disputeshield_back_end/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type NotificationManager interface {
	Notify(ctx context.Context, req services.NotificationRequest) (*models.Notification, error)
	List(ctx context.Context, userID string) ([]models.Notification, error)
	MarkRead(ctx context.Context, userID string, id gocql.UUID) error
}

type NotificationHandler struct {
	notifications NotificationManager
}

func NewNotificationHandler(notifications NotificationManager) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Send : POST /api/notifications/send
func (h *NotificationHandler) Send(c *gin.Context) {
	var req services.NotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	// un utilisateur ne peut notifier que lui-même
	if req.UserID == "" {
		req.UserID = currentUser(c)
	}
	if req.UserID != currentUser(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Cannot notify another user"})
		return
	}

	if _, err := h.notifications.Notify(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Notification sent"})
}

// List : GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	list, err := h.notifications.List(c.Request.Context(), currentUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": list, "count": len(list)})
}

// MarkRead : POST /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	id, ok := uuidParam(c, "id")
	if !ok {
		return
	}
	if err := h.notifications.MarkRead(c.Request.Context(), currentUser(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
