package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"chatlink-service/internal/cache"
	"chatlink-service/internal/media"
	"chatlink-service/internal/models"
	"chatlink-service/internal/repositories"
	"chatlink-service/internal/telemetry"
)

// GroupHandler manages group endpoints. Every mutation is admin-only;
// the admin is a member at all times.
type GroupHandler struct {
	groupRepo  repositories.GroupRepository
	members    *cache.GroupMembers
	mediaStore media.Store
	audit      *telemetry.AuditEmitter
}

// NewGroupHandler builds a GroupHandler.
func NewGroupHandler(groupRepo repositories.GroupRepository, members *cache.GroupMembers, mediaStore media.Store, audit *telemetry.AuditEmitter) *GroupHandler {
	return &GroupHandler{groupRepo: groupRepo, members: members, mediaStore: mediaStore, audit: audit}
}

// CreateGroup creates a group with the caller as admin.
func (h *GroupHandler) CreateGroup(c *gin.Context) {
	var req struct {
		Name      string  `json:"name" binding:"required"`
		Image     string  `json:"image"`
		MemberIDs []int64 `json:"member_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "group name and members required"})
		return
	}

	imageURL := req.Image
	if imageURL != "" {
		url, err := h.mediaStore.Upload(c.Request.Context(), imageURL, "image")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
			return
		}
		imageURL = url
	}

	userID := c.GetInt64("userID")
	group, err := h.groupRepo.CreateGroup(c.Request.Context(), userID, req.Name, imageURL, req.MemberIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create group"})
		return
	}

	c.JSON(http.StatusCreated, group)
}

// ListGroups returns groups that include the caller.
func (h *GroupHandler) ListGroups(c *gin.Context) {
	userID := c.GetInt64("userID")
	groups, err := h.groupRepo.ListGroupsForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load groups"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

// UpdateGroupInfo updates name and/or image (admin only).
func (h *GroupHandler) UpdateGroupInfo(c *gin.Context) {
	group, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req struct {
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imageURL := req.Image
	if imageURL != "" {
		url, err := h.mediaStore.Upload(c.Request.Context(), imageURL, "image")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
			return
		}
		imageURL = url
	}

	if err := h.groupRepo.UpdateInfo(c.Request.Context(), group.ID, req.Name, imageURL); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update group"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group updated"})
}

// UpdateGroupPhoto replaces only the group image (admin only).
func (h *GroupHandler) UpdateGroupPhoto(c *gin.Context) {
	group, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req struct {
		Image string `json:"image" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	url, err := h.mediaStore.Upload(c.Request.Context(), req.Image, "image")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to upload image"})
		return
	}

	if err := h.groupRepo.UpdateInfo(c.Request.Context(), group.ID, "", url); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update group photo"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "group photo updated"})
}

// AddMembers adds members to the group (admin only); ids already in
// the group are ignored.
func (h *GroupHandler) AddMembers(c *gin.Context) {
	group, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req struct {
		MemberIDs []int64 `json:"member_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groupRepo.AddMembers(c.Request.Context(), group.ID, req.MemberIDs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add members"})
		return
	}

	h.members.Invalidate(c.Request.Context(), group.ID)
	c.JSON(http.StatusOK, gin.H{"message": "members added"})
}

// RemoveMember removes one member (admin only). Removing the admin is
// rejected: the admin is a member at all times.
func (h *GroupHandler) RemoveMember(c *gin.Context) {
	group, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	memberID, err := strconv.ParseInt(c.Param("member_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid member id"})
		return
	}
	if memberID == group.AdminID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "admin cannot be removed"})
		return
	}

	if err := h.groupRepo.RemoveMember(c.Request.Context(), group.ID, memberID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove member"})
		return
	}

	h.members.Invalidate(c.Request.Context(), group.ID)
	c.JSON(http.StatusOK, gin.H{"message": "member removed"})
}

// ChangeAdmin transfers the admin role to an existing member (admin
// only).
func (h *GroupHandler) ChangeAdmin(c *gin.Context) {
	group, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	var req struct {
		NewAdminID int64 `json:"new_admin_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.groupRepo.SetAdmin(c.Request.Context(), group.ID, req.NewAdminID); err != nil {
		if errors.Is(err, repositories.ErrNotAMember) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "new admin must be a group member"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to change admin"})
		return
	}

	userID := c.GetInt64("userID")
	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("group %d admin transferred to %d", group.ID, req.NewAdminID),
		requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"message": "admin changed"})
}

// DeleteGroup removes the group entirely (admin only).
func (h *GroupHandler) DeleteGroup(c *gin.Context) {
	group, ok := h.requireAdmin(c)
	if !ok {
		return
	}

	if err := h.groupRepo.DeleteGroup(c.Request.Context(), group.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete group"})
		return
	}

	h.members.Invalidate(c.Request.Context(), group.ID)
	userID := c.GetInt64("userID")
	h.audit.Emit(c.Request.Context(), "info",
		fmt.Sprintf("group %d deleted", group.ID),
		requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"message": "group deleted"})
}

// requireAdmin loads the group and verifies the caller is its admin.
func (h *GroupHandler) requireAdmin(c *gin.Context) (models.Group, bool) {
	groupID, err := strconv.ParseInt(c.Param("group_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid group id"})
		return models.Group{}, false
	}

	g, err := h.groupRepo.GetGroup(c.Request.Context(), groupID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repositories.ErrGroupNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": "group not found"})
		return models.Group{}, false
	}

	userID := c.GetInt64("userID")
	if g.AdminID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only admin can modify the group"})
		return models.Group{}, false
	}

	return g, true
}
