package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// notify writes an in-app notification. Failures are logged, never surfaced;
// a missed notification must not fail the action that caused it.
func (h *Handlers) notify(userID, actorID string, notifType models.NotificationType, targetType, targetID, message string) {
	notification := models.Notification{
		UserID:     userID,
		ActorID:    actorID,
		Type:       notifType,
		TargetType: targetType,
		TargetID:   targetID,
		Message:    message,
	}
	if err := database.DB.Create(&notification).Error; err != nil {
		logger.WarnWithFields("Failed to create notification for user "+userID, err)
	}
}

// ListNotifications returns the authenticated user's notifications
// GET /api/v1/notifications?unread=true&limit=20&offset=0
func (h *Handlers) ListNotifications(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Preload("Actor").Where("user_id = ?", userID)
	if c.Query("unread") == "true" {
		query = query.Where("read = ?", false)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&notifications).Error; err != nil {
		util.RespondInternalError(c, "failed to list notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": notifications,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(notifications),
		},
	})
}

// GetUnreadCount returns the number of unread notifications
// GET /api/v1/notifications/unread-count
func (h *Handlers) GetUnreadCount(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var count int64
	if err := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error; err != nil {
		util.RespondInternalError(c, "failed to count notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"unread_count": count})
}

// MarkNotificationRead marks a single notification as read
// POST /api/v1/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	notificationID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	result := database.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Updates(map[string]interface{}{"read": true, "read_at": &now})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to mark notification read")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"read": true})
}

// MarkAllNotificationsRead marks every unread notification as read
// POST /api/v1/notifications/read-all
func (h *Handlers) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	now := time.Now().UTC()
	result := database.DB.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Updates(map[string]interface{}{"read": true, "read_at": &now})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"marked_read": result.RowsAffected})
}
