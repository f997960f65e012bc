package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatlink-service/internal/repositories"
)

// NotificationHandler manages the notification center endpoints.
type NotificationHandler struct {
	notificationRepo repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(notificationRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notificationRepo: notificationRepo}
}

// ListNotifications returns the caller's notifications newest first.
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID := c.GetInt64("userID")
	notifications, err := h.notificationRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// DeleteNotification removes one of the caller's notifications.
func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.notificationRepo.DeleteNotification(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, repositories.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// ClearNotifications removes every notification the caller has.
func (h *NotificationHandler) ClearNotifications(c *gin.Context) {
	userID := c.GetInt64("userID")
	if err := h.notificationRepo.ClearForUser(c.Request.Context(), userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to clear notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "notifications cleared"})
}
