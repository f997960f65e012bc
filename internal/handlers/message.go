package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"chatlink-service/internal/fanout"
	"chatlink-service/internal/media"
	"chatlink-service/internal/repositories"
)

// MessageHandler manages message endpoints.
type MessageHandler struct {
	messageRepo  repositories.MessageRepository
	groupRepo    repositories.GroupRepository
	scheduleRepo repositories.ScheduleRepository
	mediaStore   media.Store
	fanout       *fanout.Fanout
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(
	messageRepo repositories.MessageRepository,
	groupRepo repositories.GroupRepository,
	scheduleRepo repositories.ScheduleRepository,
	mediaStore media.Store,
	fan *fanout.Fanout,
) *MessageHandler {
	return &MessageHandler{
		messageRepo:  messageRepo,
		groupRepo:    groupRepo,
		scheduleRepo: scheduleRepo,
		mediaStore:   mediaStore,
		fanout:       fan,
	}
}

// GetMessages returns history for a direct conversation (id = other
// user) or a group (?group=true). Both shapes exclude messages the
// caller soft-deleted.
func (h *MessageHandler) GetMessages(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	userID := c.GetInt64("userID")

	if c.Query("group") == "true" {
		member, err := h.groupRepo.IsMember(c.Request.Context(), id, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
			return
		}
		if !member {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
			return
		}
		msgs, err := h.messageRepo.GetGroupHistory(c.Request.Context(), id, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"messages": msgs})
		return
	}

	msgs, err := h.messageRepo.GetDirectHistory(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

type sendMessageRequest struct {
	Text  string `json:"text"`
	Image string `json:"image"`
}

func (r sendMessageRequest) empty() bool {
	return r.Text == "" && r.Image == ""
}

// SendDirectMessage stores a one-to-one message and routes it to the
// receiver.
func (h *MessageHandler) SendDirectMessage(c *gin.Context) {
	receiverID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid receiver id"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text or image required"})
		return
	}

	imageURL, ok := h.uploadImage(c, req.Image)
	if !ok {
		return
	}

	userID := c.GetInt64("userID")
	msg, err := h.messageRepo.CreateDirectMessage(c.Request.Context(), userID, receiverID, req.Text, imageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.fanout.MessageSent(c.Request.Context(), msg)
	c.JSON(http.StatusCreated, msg)
}

// SendGroupMessage stores a group message and routes it to every
// member except the sender.
func (h *MessageHandler) SendGroupMessage(c *gin.Context) {
	groupID, err := strconv.ParseInt(c.Param("group_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return
	}

	userID := c.GetInt64("userID")
	member, err := h.groupRepo.IsMember(c.Request.Context(), groupID, userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to verify membership"})
		return
	}
	if !member {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a group member"})
		return
	}

	var req sendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.empty() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text or image required"})
		return
	}

	imageURL, ok := h.uploadImage(c, req.Image)
	if !ok {
		return
	}

	msg, err := h.messageRepo.CreateGroupMessage(c.Request.Context(), userID, groupID, req.Text, imageURL)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store message"})
		return
	}

	h.fanout.MessageSent(c.Request.Context(), msg)
	c.JSON(http.StatusCreated, msg)
}

// ScheduleMessage stores a message for later dispatch.
func (h *MessageHandler) ScheduleMessage(c *gin.Context) {
	var req struct {
		ReceiverID   int64     `json:"receiver_id" binding:"required"`
		Text         string    `json:"text"`
		Image        string    `json:"image"`
		ScheduledFor time.Time `json:"scheduled_for" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := c.GetInt64("userID")
	scheduled, err := h.scheduleRepo.CreateScheduledMessage(c.Request.Context(), userID, req.ReceiverID, req.Text, req.Image, req.ScheduledFor)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to schedule message"})
		return
	}

	c.JSON(http.StatusCreated, scheduled)
}

// DeleteMessageForAll removes a message for everyone. Only the sender
// may do this.
func (h *MessageHandler) DeleteMessageForAll(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt64("userID")
	msg, err := h.messageRepo.GetMessage(c.Request.Context(), messageID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}
	if msg.SenderID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only sender can delete for all"})
		return
	}

	if err := h.messageRepo.DeleteMessage(c.Request.Context(), messageID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "could not delete message"})
		return
	}

	h.fanout.MessageHardDeleted(c.Request.Context(), msg, userID)
	c.JSON(http.StatusOK, gin.H{"message": "message deleted for everyone", "message_id": messageID})
}

// DeleteMessageForMe soft-deletes a message for the caller only.
// Repeating the call is a no-op.
func (h *MessageHandler) DeleteMessageForMe(c *gin.Context) {
	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	userID := c.GetInt64("userID")
	if _, err := h.messageRepo.GetMessage(c.Request.Context(), messageID); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrMessageNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "message not found"})
		return
	}

	if err := h.messageRepo.MarkDeletedForUser(c.Request.Context(), messageID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	h.fanout.MessageSoftDeleted(userID, messageID)
	c.JSON(http.StatusOK, gin.H{"message": "message deleted for you"})
}

// uploadImage pushes media to the object store and returns the stable
// URL. Empty input is passed through.
func (h *MessageHandler) uploadImage(c *gin.Context, image string) (string, bool) {
	if image == "" {
		return "", true
	}
	url, err := h.mediaStore.Upload(c.Request.Context(), image, "image")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
		return "", false
	}
	return url, true
}
