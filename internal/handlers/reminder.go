package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatlink-service/internal/repositories"
)

// ReminderHandler manages reminder endpoints.
type ReminderHandler struct {
	reminderRepo repositories.ReminderRepository
}

// NewReminderHandler builds a ReminderHandler.
func NewReminderHandler(reminderRepo repositories.ReminderRepository) *ReminderHandler {
	return &ReminderHandler{reminderRepo: reminderRepo}
}

type reminderRequest struct {
	Text         string    `json:"text" binding:"required"`
	ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
}

// CreateReminder stores a reminder for the caller.
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")
	reminder, err := h.reminderRepo.CreateReminder(c.Request.Context(), userID, req.Text, req.ScheduledFor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create reminder"})
		return
	}

	c.JSON(http.StatusCreated, reminder)
}

// ListReminders returns the caller's reminders.
func (h *ReminderHandler) ListReminders(c *gin.Context) {
	userID := c.GetInt64("userID")
	reminders, err := h.reminderRepo.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load reminders"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reminders": reminders})
}

// UpdateReminder edits a reminder. The sent flag resets so a
// rescheduled reminder fires again.
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")
	reminder, err := h.reminderRepo.UpdateReminder(c.Request.Context(), id, userID, req.Text, req.ScheduledFor)
	if err != nil {
		if errors.Is(err, repositories.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update reminder"})
		return
	}

	c.JSON(http.StatusOK, reminder)
}

// DeleteReminder removes a reminder owned by the caller.
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reminder id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.reminderRepo.DeleteReminder(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, repositories.ErrReminderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "reminder not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete reminder"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "reminder deleted"})
}
