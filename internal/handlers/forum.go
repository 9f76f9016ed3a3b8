package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// CreateThread opens a new discussion thread
// POST /api/v1/forum/threads
func (h *Handlers) CreateThread(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Title    string `json:"title" binding:"required,min=3,max=200"`
		Body     string `json:"body" binding:"required,min=1,max=20000"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	thread := models.ForumThread{
		AuthorID: userID,
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
	}
	if err := database.DB.Create(&thread).Error; err != nil {
		util.RespondInternalError(c, "failed to create thread")
		return
	}

	if err := database.DB.Preload("Author").First(&thread, "id = ?", thread.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload thread "+thread.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"thread": thread})
}

// GetThread returns a thread and bumps its view counter
// GET /api/v1/forum/threads/:id
func (h *Handlers) GetThread(c *gin.Context) {
	threadID := c.Param("id")
	userID := c.GetString("user_id")

	var thread models.ForumThread
	if err := database.DB.Preload("Author").First(&thread, "id = ?", threadID).Error; err != nil {
		util.RespondNotFound(c, "thread")
		return
	}

	if thread.AuthorID != userID {
		go func() {
			if err := database.DB.Model(&models.ForumThread{}).Where("id = ?", threadID).
				UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
				logger.WarnWithFields("Failed to increment view count for thread "+threadID, err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"thread": thread})
}

// ListThreads returns threads ordered by recent activity, pinned first
// GET /api/v1/forum/threads?category=clinical&limit=20&offset=0
func (h *Handlers) ListThreads(c *gin.Context) {
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Model(&models.ForumThread{}).Preload("Author")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}

	var threads []models.ForumThread
	if err := query.Order("is_pinned DESC, last_activity_at DESC").
		Limit(limit).Offset(offset).Find(&threads).Error; err != nil {
		util.RespondInternalError(c, "failed to list threads")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"threads": threads,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(threads),
		},
	})
}

// CreateReply posts a reply to a thread and bumps its activity timestamp
// POST /api/v1/forum/threads/:id/replies
func (h *Handlers) CreateReply(c *gin.Context) {
	threadID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Body     string  `json:"body" binding:"required,min=1,max=20000"`
		ParentID *string `json:"parent_id,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	var thread models.ForumThread
	if err := database.DB.First(&thread, "id = ?", threadID).Error; err != nil {
		util.RespondNotFound(c, "thread")
		return
	}
	if thread.IsLocked {
		util.RespondForbidden(c, "thread is locked")
		return
	}

	if req.ParentID != nil && *req.ParentID != "" {
		var parent models.ForumReply
		if err := database.DB.First(&parent, "id = ? AND thread_id = ?", *req.ParentID, threadID).Error; err != nil {
			util.RespondValidationError(c, "parent_id", "parent reply not found")
			return
		}
		// One level of nesting only
		if parent.ParentID != nil {
			req.ParentID = parent.ParentID
		}
	}

	reply := models.ForumReply{
		ThreadID: threadID,
		AuthorID: userID,
		Body:     req.Body,
		ParentID: req.ParentID,
	}
	if err := database.DB.Create(&reply).Error; err != nil {
		util.RespondInternalError(c, "failed to create reply")
		return
	}

	if err := database.DB.Model(&thread).Updates(map[string]interface{}{
		"replies_count":    gorm.Expr("replies_count + 1"),
		"last_activity_at": time.Now().UTC(),
	}).Error; err != nil {
		logger.WarnWithFields("Failed to bump activity for thread "+threadID, err)
	}

	if err := database.DB.Preload("Author").First(&reply, "id = ?", reply.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload reply "+reply.ID, err)
	}

	if thread.AuthorID != userID {
		h.notify(thread.AuthorID, userID, models.NotificationReply, "thread", threadID,
			"replied to your thread")
	}

	c.JSON(http.StatusCreated, gin.H{"reply": reply})
}

// ListReplies returns the replies of a thread, oldest first
// GET /api/v1/forum/threads/:id/replies
func (h *Handlers) ListReplies(c *gin.Context) {
	threadID := c.Param("id")
	limit := util.ParseInt(c.DefaultQuery("limit", "50"), 50)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var count int64
	if err := database.DB.Model(&models.ForumThread{}).Where("id = ?", threadID).
		Count(&count).Error; err != nil || count == 0 {
		util.RespondNotFound(c, "thread")
		return
	}

	var replies []models.ForumReply
	if err := database.DB.Preload("Author").
		Where("thread_id = ?", threadID).
		Order("created_at ASC").Limit(limit).Offset(offset).
		Find(&replies).Error; err != nil {
		util.RespondInternalError(c, "failed to list replies")
		return
	}

	// Soft-removed replies keep their slot but lose their content
	for i := range replies {
		if replies[i].IsDeleted {
			replies[i].Body = ""
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"replies": replies,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(replies),
		},
	})
}

// DeleteReply soft-removes a reply, keeping the thread structure intact.
// The author or an admin may delete.
// DELETE /api/v1/forum/replies/:id
func (h *Handlers) DeleteReply(c *gin.Context) {
	replyID := c.Param("id")
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var reply models.ForumReply
	if err := database.DB.First(&reply, "id = ?", replyID).Error; err != nil {
		util.RespondNotFound(c, "reply")
		return
	}
	if reply.AuthorID != user.ID && !user.IsAdmin {
		util.RespondForbidden(c, "only the author or an admin can delete a reply")
		return
	}

	if err := database.DB.Model(&reply).UpdateColumn("is_deleted", true).Error; err != nil {
		util.RespondInternalError(c, "failed to delete reply")
		return
	}

	if err := database.DB.Model(&models.ForumThread{}).Where("id = ?", reply.ThreadID).
		UpdateColumn("replies_count", gorm.Expr("replies_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement reply count for thread "+reply.ThreadID, err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
