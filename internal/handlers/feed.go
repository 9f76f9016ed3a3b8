package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/feed"
	"github.com/dentlink/backend/internal/middleware"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// GetFeed returns the aggregated home feed for the authenticated user.
// GET /api/v1/feed?filter=all&sort=latest&limit=20&offset=0
// Filter and sort fall back to the user's saved feed preferences when the
// query parameters are absent.
func (h *Handlers) GetFeed(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	filter := c.Query("filter")
	sort := c.Query("sort")
	if prefs := user.FeedPreferences; prefs != nil {
		if filter == "" {
			filter = prefs.DefaultFilter
		}
		if sort == "" {
			sort = prefs.DefaultSort
		}
	}
	if filter == "" {
		filter = string(feed.FilterAll)
	}
	if sort == "" {
		sort = string(feed.SortLatest)
	}

	limit, err := util.ParseIntParam(c.DefaultQuery("limit", "20"))
	if err != nil {
		util.RespondBadRequest(c, "limit must be an integer")
		return
	}
	offset, err := util.ParseIntParam(c.DefaultQuery("offset", "0"))
	if err != nil {
		util.RespondBadRequest(c, "offset must be an integer")
		return
	}

	startTime := time.Now()
	items, err := h.feed.GetFeedItems(c.Request.Context(), user.ID,
		feed.Filter(filter), feed.Sort(sort), limit, offset)
	if err != nil {
		util.RespondError(c, err)
		return
	}
	middleware.RecordFeedGeneration(filter, sort, time.Since(startTime), len(items))

	c.JSON(http.StatusOK, gin.H{
		"items": items,
		"meta": gin.H{
			"filter": filter,
			"sort":   sort,
			"limit":  limit,
			"offset": offset,
			"count":  len(items),
		},
	})
}

// GetFeedSidebar returns the discovery widgets shown beside the feed
// GET /api/v1/feed/sidebar
func (h *Handlers) GetFeedSidebar(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "5"), 5)
	sidebar := h.feed.GetSidebar(c.Request.Context(), userID, limit)

	c.JSON(http.StatusOK, sidebar)
}

// UpdateFeedPreferences stores the user's default feed filter and sort
// PUT /api/v1/feed/preferences
func (h *Handlers) UpdateFeedPreferences(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DefaultSort   string `json:"default_sort"`
		DefaultFilter string `json:"default_filter"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if req.DefaultSort != "" && !feed.ValidSort(feed.Sort(req.DefaultSort)) {
		util.RespondValidationError(c, "default_sort", "unknown sort")
		return
	}
	if req.DefaultFilter != "" && !feed.ValidFilter(feed.Filter(req.DefaultFilter)) {
		util.RespondValidationError(c, "default_filter", "unknown filter")
		return
	}

	prefs := &models.FeedPreferences{
		DefaultSort:   req.DefaultSort,
		DefaultFilter: req.DefaultFilter,
	}
	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Update("feed_preferences", prefs).Error; err != nil {
		util.RespondInternalError(c, "failed to update feed preferences")
		return
	}

	c.JSON(http.StatusOK, gin.H{"feed_preferences": prefs})
}
