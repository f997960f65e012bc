package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatlink-service/internal/media"
	"chatlink-service/internal/repositories"
)

// StatusHandler manages status-post endpoints.
type StatusHandler struct {
	statusRepo repositories.StatusRepository
	mediaStore media.Store
}

// NewStatusHandler builds a StatusHandler.
func NewStatusHandler(statusRepo repositories.StatusRepository, mediaStore media.Store) *StatusHandler {
	return &StatusHandler{statusRepo: statusRepo, mediaStore: mediaStore}
}

// CreateStatus uploads the media and stores the status.
func (h *StatusHandler) CreateStatus(c *gin.Context) {
	var req struct {
		File      string `json:"file" binding:"required"`
		MediaType string `json:"media_type" binding:"required,oneof=image video"`
		Caption   string `json:"caption"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mediaURL, err := h.mediaStore.Upload(c.Request.Context(), req.File, req.MediaType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload media"})
		return
	}

	userID := c.GetInt64("userID")
	status, err := h.statusRepo.CreateStatus(c.Request.Context(), userID, mediaURL, req.MediaType, req.Caption)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create status"})
		return
	}

	c.JSON(http.StatusCreated, status)
}

// ListStatuses returns all statuses newest first.
func (h *StatusHandler) ListStatuses(c *gin.Context) {
	statuses, err := h.statusRepo.ListStatuses(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statuses"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"statuses": statuses})
}

// MarkViewed records the caller as a viewer; repeated views are
// no-ops.
func (h *StatusHandler) MarkViewed(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.statusRepo.MarkViewed(c.Request.Context(), id, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to mark viewed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "viewed"})
}

// DeleteStatus removes a status owned by the caller.
func (h *StatusHandler) DeleteStatus(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status id"})
		return
	}

	userID := c.GetInt64("userID")
	if err := h.statusRepo.DeleteStatus(c.Request.Context(), id, userID); err != nil {
		if errors.Is(err, repositories.ErrStatusNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "status not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete status"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "status deleted"})
}
