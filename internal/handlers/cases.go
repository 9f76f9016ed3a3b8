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

// CreateCase publishes a new clinical case
// POST /api/v1/cases
func (h *Handlers) CreateCase(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Title          string   `json:"title" binding:"required,min=3,max=200"`
		Description    string   `json:"description" binding:"max=10000"`
		ProcedureType  string   `json:"procedure_type" binding:"required"`
		ToothNotation  string   `json:"tooth_notation"`
		Materials      []string `json:"materials"`
		DurationWeeks  int      `json:"duration_weeks"`
		BeforeImageURL string   `json:"before_image_url"`
		AfterImageURL  string   `json:"after_image_url"`
		PatientConsent bool     `json:"patient_consent"`
		IsPublic       *bool    `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	clinicalCase := models.Case{
		AuthorID:       userID,
		Title:          req.Title,
		Description:    req.Description,
		ProcedureType:  req.ProcedureType,
		ToothNotation:  req.ToothNotation,
		Materials:      models.StringArray(req.Materials),
		DurationWeeks:  req.DurationWeeks,
		BeforeImageURL: req.BeforeImageURL,
		AfterImageURL:  req.AfterImageURL,
		PatientConsent: req.PatientConsent,
		IsPublic:       isPublic,
	}

	if err := database.DB.Create(&clinicalCase).Error; err != nil {
		util.RespondInternalError(c, "failed to create case")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("case_count", gorm.Expr("case_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment case count for user "+userID, err)
	}

	if err := database.DB.Preload("Author").First(&clinicalCase, "id = ?", clinicalCase.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload case "+clinicalCase.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"case": clinicalCase})
}

// GetCase returns a single case. Unconsented or private cases are only
// visible to their author.
// GET /api/v1/cases/:id
func (h *Handlers) GetCase(c *gin.Context) {
	caseID := c.Param("id")
	userID := c.GetString("user_id")

	var clinicalCase models.Case
	if err := database.DB.Preload("Author").Preload("Images").
		First(&clinicalCase, "id = ?", caseID).Error; err != nil {
		util.RespondNotFound(c, "case")
		return
	}

	if !clinicalCase.Visible() && clinicalCase.AuthorID != userID {
		util.RespondNotFound(c, "case")
		return
	}

	// View counting is best effort and must not delay the response
	if clinicalCase.AuthorID != userID {
		go func() {
			if err := database.DB.Model(&models.Case{}).Where("id = ?", caseID).
				UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error; err != nil {
				logger.WarnWithFields("Failed to increment view count for case "+caseID, err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"case": clinicalCase})
}

// ListCases returns visible cases, optionally filtered by author or procedure
// GET /api/v1/cases?author_id=...&procedure_type=...&limit=20&offset=0
func (h *Handlers) ListCases(c *gin.Context) {
	userID := c.GetString("user_id")
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Model(&models.Case{}).Preload("Author")

	if authorID := c.Query("author_id"); authorID != "" {
		query = query.Where("author_id = ?", authorID)
		if authorID != userID {
			query = query.Where("patient_consent = ? AND is_public = ?", true, true)
		}
	} else {
		query = query.Where("patient_consent = ? AND is_public = ?", true, true)
	}

	if procedureType := c.Query("procedure_type"); procedureType != "" {
		query = query.Where("procedure_type = ?", procedureType)
	}

	var cases []models.Case
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&cases).Error; err != nil {
		util.RespondInternalError(c, "failed to list cases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cases": cases,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(cases),
		},
	})
}

// UpdateCase edits a case. Only the author may update it.
// PUT /api/v1/cases/:id
func (h *Handlers) UpdateCase(c *gin.Context) {
	caseID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var clinicalCase models.Case
	if err := database.DB.First(&clinicalCase, "id = ?", caseID).Error; err != nil {
		util.RespondNotFound(c, "case")
		return
	}
	if clinicalCase.AuthorID != userID {
		util.RespondForbidden(c, "only the author can edit a case")
		return
	}

	var req struct {
		Title          *string  `json:"title"`
		Description    *string  `json:"description"`
		ProcedureType  *string  `json:"procedure_type"`
		ToothNotation  *string  `json:"tooth_notation"`
		Materials      []string `json:"materials"`
		DurationWeeks  *int     `json:"duration_weeks"`
		BeforeImageURL *string  `json:"before_image_url"`
		AfterImageURL  *string  `json:"after_image_url"`
		PatientConsent *bool    `json:"patient_consent"`
		IsPublic       *bool    `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Title != nil {
		updates["title"] = *req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.ProcedureType != nil {
		updates["procedure_type"] = *req.ProcedureType
	}
	if req.ToothNotation != nil {
		updates["tooth_notation"] = *req.ToothNotation
	}
	if req.Materials != nil {
		updates["materials"] = models.StringArray(req.Materials)
	}
	if req.DurationWeeks != nil {
		updates["duration_weeks"] = *req.DurationWeeks
	}
	if req.BeforeImageURL != nil {
		updates["before_image_url"] = *req.BeforeImageURL
	}
	if req.AfterImageURL != nil {
		updates["after_image_url"] = *req.AfterImageURL
	}
	if req.PatientConsent != nil {
		updates["patient_consent"] = *req.PatientConsent
	}
	if req.IsPublic != nil {
		updates["is_public"] = *req.IsPublic
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(&clinicalCase).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update case")
		return
	}

	if err := database.DB.Preload("Author").First(&clinicalCase, "id = ?", caseID).Error; err != nil {
		logger.WarnWithFields("Failed to reload case "+caseID, err)
	}

	c.JSON(http.StatusOK, gin.H{"case": clinicalCase})
}

// DeleteCase removes a case. Only the author may delete it.
// DELETE /api/v1/cases/:id
func (h *Handlers) DeleteCase(c *gin.Context) {
	caseID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var clinicalCase models.Case
	if err := database.DB.First(&clinicalCase, "id = ?", caseID).Error; err != nil {
		util.RespondNotFound(c, "case")
		return
	}
	if clinicalCase.AuthorID != userID {
		util.RespondForbidden(c, "only the author can delete a case")
		return
	}

	if err := database.DB.Delete(&clinicalCase).Error; err != nil {
		util.RespondInternalError(c, "failed to delete case")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("case_count", gorm.Expr("case_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement case count for user "+userID, err)
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

// SaveCase bookmarks a case for the authenticated user
// POST /api/v1/cases/:id/save
func (h *Handlers) SaveCase(c *gin.Context) {
	caseID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var clinicalCase models.Case
	if err := database.DB.First(&clinicalCase, "id = ?", caseID).Error; err != nil {
		util.RespondNotFound(c, "case")
		return
	}
	if !clinicalCase.Visible() && clinicalCase.AuthorID != userID {
		util.RespondNotFound(c, "case")
		return
	}

	saved := models.SavedCase{UserID: userID, CaseID: caseID}
	if err := database.DB.Create(&saved).Error; err != nil {
		// Unique index on (user_id, case_id) makes a double save a conflict
		util.RespondConflict(c, "saved case")
		return
	}

	if err := database.DB.Model(&clinicalCase).
		UpdateColumn("saves_count", gorm.Expr("saves_count + 1")).Error; err != nil {
		logger.WarnWithFields("Failed to increment save count for case "+caseID, err)
	}

	if clinicalCase.AuthorID != userID {
		h.notify(clinicalCase.AuthorID, userID, models.NotificationCaseSave, "case", caseID,
			"saved your case")
	}

	c.JSON(http.StatusCreated, gin.H{"saved": true})
}

// UnsaveCase removes a bookmark
// DELETE /api/v1/cases/:id/save
func (h *Handlers) UnsaveCase(c *gin.Context) {
	caseID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	result := database.DB.Where("user_id = ? AND case_id = ?", userID, caseID).
		Delete(&models.SavedCase{})
	if result.Error != nil {
		util.RespondInternalError(c, "failed to unsave case")
		return
	}
	if result.RowsAffected == 0 {
		util.RespondNotFound(c, "saved case")
		return
	}

	if err := database.DB.Model(&models.Case{}).Where("id = ?", caseID).
		UpdateColumn("saves_count", gorm.Expr("saves_count - 1")).Error; err != nil {
		logger.WarnWithFields("Failed to decrement save count for case "+caseID, err)
	}

	c.JSON(http.StatusOK, gin.H{"saved": false})
}

// ListSavedCases returns the authenticated user's bookmarked cases
// GET /api/v1/me/saved-cases
func (h *Handlers) ListSavedCases(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	var saved []models.SavedCase
	if err := database.DB.Preload("Case").Preload("Case.Author").
		Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&saved).Error; err != nil {
		util.RespondInternalError(c, "failed to list saved cases")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"saved_cases": saved,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(saved),
		},
	})
}

// AttachCaseImage adds an image to a case gallery. Only the author may
// attach images, and only URLs already uploaded through the uploads API
// are expected here.
// POST /api/v1/cases/:id/images
func (h *Handlers) AttachCaseImage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	caseID := c.Param("id")

	var clinicalCase models.Case
	if err := database.DB.First(&clinicalCase, "id = ?", caseID).Error; err != nil {
		util.RespondNotFound(c, "case")
		return
	}
	if clinicalCase.AuthorID != userID {
		util.RespondForbidden(c, "only the author can attach images")
		return
	}

	var req struct {
		URL      string `json:"url" binding:"required,url"`
		Caption  string `json:"caption" binding:"max=500"`
		Position int    `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	image := models.CaseImage{
		CaseID:   caseID,
		URL:      req.URL,
		Caption:  req.Caption,
		Position: req.Position,
	}
	if err := database.DB.Create(&image).Error; err != nil {
		util.RespondInternalError(c, "failed to attach image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"image": image})
}
