package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// FollowUser creates a follow edge from the authenticated user to another
// POST /api/v1/users/:id/follow
func (h *Handlers) FollowUser(c *gin.Context) {
	targetID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	if targetID == userID {
		util.RespondBadRequest(c, "cannot follow yourself")
		return
	}

	var target models.User
	if err := database.DB.First(&target, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	follow := models.Follow{FollowerID: userID, FollowingID: targetID}
	if err := database.DB.Create(&follow).Error; err != nil {
		// Unique index on (follower_id, following_id) makes a repeat a conflict
		util.RespondConflict(c, "follow")
		return
	}

	// Counter updates are best effort; the follows table is the source of truth
	if err := database.DB.Model(&models.User{}).Where("id = ?", targetID).
		UpdateColumn("follower_count", gorm.Expr("follower_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment follower count for user "+targetID, err)
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("following_count", gorm.Expr("following_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment following count for user "+userID, err)
	}

	h.notify(targetID, userID, models.NotificationFollow, "user", userID, "started following you")

	c.JSON(http.StatusCreated, gin.H{"following": true})
}

// UnfollowUser removes a follow edge
// DELETE /api/v1/users/:id/follow
func (h *Handlers) UnfollowUser(c *gin.Context) {
	targetID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Where("follower_id = ? AND following_id = ?", userID, targetID).
		Delete(&models.Follow{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to unfollow")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "follow")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", targetID).
		UpdateColumn("follower_count", gorm.Expr("follower_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement follower count for user "+targetID, err)
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("following_count", gorm.Expr("following_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement following count for user "+userID, err)
	}

	c.JSON(http.StatusOK, gin.H{"following": false})
}

// ListFollowers returns the users following the given user
// GET /api/v1/users/:id/followers
func (h *Handlers) ListFollowers(c *gin.Context) {
	targetID := c.Param("id")
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var follows []models.Follow
	if err := database.DB.Preload("Follower").
		Where("following_id = ?", targetID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&follows).Error; err != nil {
		util.RespondInternalError(c, "failed to list followers")
		return
	}

	users := make([]models.UserSummary, 0, len(follows))
	for i := range follows {
		users = append(users, follows[i].Follower.Summary())
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(users),
		},
	})
}

// ListFollowing returns the users the given user follows
// GET /api/v1/users/:id/following
func (h *Handlers) ListFollowing(c *gin.Context) {
	targetID := c.Param("id")
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var follows []models.Follow
	if err := database.DB.Preload("Following").
		Where("follower_id = ?", targetID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&follows).Error; err != nil {
		util.RespondInternalError(c, "failed to list following")
		return
	}

	users := make([]models.UserSummary, 0, len(follows))
	for i := range follows {
		users = append(users, follows[i].Following.Summary())
	}

	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(users),
		},
	})
}
