package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lib/pq"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/search"
	"github.com/dentlink/backend/internal/util"
)

// GetUserProfile returns a practitioner's public profile
// GET /api/v1/users/:id
func (h *Handlers) GetUserProfile(c *gin.Context) {
	targetID := c.Param("id")

	var user models.User
	if err := database.DB.First(&user, "id = ?", targetID).Error; err != nil {
		util.RespondNotFound(c, "user")
		return
	}

	resp := gin.H{"user": user}

	// Tell the viewer whether they already follow this profile
	if viewerID := c.GetString("user_id"); viewerID != "" && viewerID != targetID {
		var count int64
		database.DB.Model(&models.Follow{}).
			Where("follower_id = ? AND following_id = ?", viewerID, targetID).
			Count(&count)
		resp["is_following"] = count > 0
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateProfile edits the authenticated user's own profile
// PUT /api/v1/me
func (h *Handlers) UpdateProfile(c *gin.Context) {
	user, ok := util.GetUserFromContext(c)
	if !ok {
		return
	}

	var req struct {
		DisplayName *string  `json:"display_name"`
		Bio         *string  `json:"bio"`
		Location    *string  `json:"location"`
		Headline    *string  `json:"headline"`
		Specialty   *string  `json:"specialty"`
		Credential  *string  `json:"credential"`
		Procedures  []string `json:"procedures"`
		AvatarURL   *string  `json:"avatar_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Bio != nil {
		updates["bio"] = *req.Bio
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Headline != nil {
		updates["headline"] = *req.Headline
	}
	if req.Specialty != nil {
		updates["specialty"] = *req.Specialty
	}
	if req.Credential != nil {
		updates["credential"] = *req.Credential
	}
	if req.Procedures != nil {
		updates["procedures"] = models.StringArray(req.Procedures)
	}
	if req.AvatarURL != nil {
		updates["avatar_url"] = *req.AvatarURL
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", user.ID).
		Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update profile")
		return
	}

	var updated models.User
	if err := database.DB.First(&updated, "id = ?", user.ID).Error; err != nil {
		util.RespondInternalError(c, "failed to reload profile")
		return
	}

	h.indexPractitioner(&updated)

	c.JSON(http.StatusOK, gin.H{"user": updated})
}

// SearchUsers finds practitioners by username, display name, or specialty
// GET /api/v1/users/search?q=...&specialty=...
func (h *Handlers) SearchUsers(c *gin.Context) {
	q := c.Query("q")
	specialty := c.Query("specialty")
	procedures := c.QueryArray("procedure")
	if q == "" && specialty == "" && len(procedures) == 0 {
		util.RespondBadRequest(c, "q, specialty, or procedure parameter required")
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)

	var users []models.User

	// Elasticsearch gives fuzzy relevance ranking; the SQL path below is the
	// fallback when no search cluster is configured or the query fails
	usingFallback := h.search == nil
	if h.search != nil {
		result, err := h.search.SearchPractitioners(c.Request.Context(), search.PractitionerSearchParams{
			Query:      q,
			Specialty:  specialty,
			Procedures: procedures,
			Limit:      limit,
		})
		if err != nil {
			logger.WarnWithFields("Search query failed, falling back to SQL", err)
			usingFallback = true
		} else {
			users = make([]models.User, 0, len(result.IDs))
			for _, id := range result.IDs {
				var user models.User
				if err := database.DB.First(&user, "id = ?", id).Error; err == nil {
					users = append(users, user)
				}
			}
		}
	}

	if usingFallback {
		query := database.DB.Model(&models.User{})
		if q != "" {
			pattern := "%" + q + "%"
			query = query.Where("LOWER(username) LIKE LOWER(?) OR LOWER(display_name) LIKE LOWER(?)", pattern, pattern)
		}
		if specialty != "" {
			query = query.Where("specialty = ?", specialty)
		}
		if len(procedures) > 0 {
			// text[] overlap, Postgres only
			query = query.Where("procedures && ?", pq.Array(procedures))
		}
		if err := query.Order("follower_count DESC").Limit(limit).Find(&users).Error; err != nil {
			util.RespondInternalError(c, "failed to search users")
			return
		}
	}

	summaries := make([]models.UserSummary, 0, len(users))
	for i := range users {
		summaries = append(summaries, users[i].Summary())
	}

	c.JSON(http.StatusOK, gin.H{
		"users": summaries,
		"meta":  gin.H{"count": len(summaries)},
	})
}

// indexPractitioner pushes a profile into the search index. Best effort;
// search results lag the database rather than block the request.
func (h *Handlers) indexPractitioner(user *models.User) {
	if h.search == nil {
		return
	}
	doc := search.PractitionerToSearchDoc(user)
	userID := user.ID
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.search.IndexPractitioner(ctx, userID, doc); err != nil {
			logger.WarnWithFields("Failed to index practitioner "+userID, err)
		}
	}()
}
