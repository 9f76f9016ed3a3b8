package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/logger"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// CreateClinic creates a practice page owned by the authenticated user
// POST /api/v1/clinics
func (h *Handlers) CreateClinic(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Name        string   `json:"name" binding:"required,min=2,max=200"`
		Description string   `json:"description" binding:"max=10000"`
		Location    string   `json:"location"`
		Address     string   `json:"address"`
		Services    []string `json:"services"`
		Website     string   `json:"website"`
		Phone       string   `json:"phone"`
		LogoURL     string   `json:"logo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	clinic := models.Clinic{
		OwnerID:     userID,
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Address:     req.Address,
		Services:    models.StringArray(req.Services),
		Website:     req.Website,
		Phone:       req.Phone,
		LogoURL:     req.LogoURL,
	}
	if err := database.DB.Create(&clinic).Error; err != nil {
		util.RespondInternalError(c, "failed to create clinic")
		return
	}

	if err := database.DB.Preload("Owner").First(&clinic, "id = ?", clinic.ID).Error; err != nil {
		logger.WarnWithFields("Failed to reload clinic "+clinic.ID, err)
	}

	c.JSON(http.StatusCreated, gin.H{"clinic": clinic})
}

// GetClinic returns a single clinic page
// GET /api/v1/clinics/:id
func (h *Handlers) GetClinic(c *gin.Context) {
	clinicID := c.Param("id")

	var clinic models.Clinic
	if err := database.DB.Preload("Owner").First(&clinic, "id = ?", clinicID).Error; err != nil {
		util.RespondNotFound(c, "clinic")
		return
	}

	c.JSON(http.StatusOK, gin.H{"clinic": clinic})
}

// ListClinics returns clinics, optionally filtered by location or owner
// GET /api/v1/clinics?location=...&owner_id=...&limit=20&offset=0
func (h *Handlers) ListClinics(c *gin.Context) {
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Model(&models.Clinic{}).Preload("Owner")
	if location := c.Query("location"); location != "" {
		query = query.Where("location = ?", location)
	}
	if ownerID := c.Query("owner_id"); ownerID != "" {
		query = query.Where("owner_id = ?", ownerID)
	}

	var clinics []models.Clinic
	if err := query.Order("updated_at DESC").Limit(limit).Offset(offset).
		Find(&clinics).Error; err != nil {
		util.RespondInternalError(c, "failed to list clinics")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"clinics": clinics,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(clinics),
		},
	})
}

// UpdateClinic edits a clinic page. Only the owner may update it.
// PUT /api/v1/clinics/:id
func (h *Handlers) UpdateClinic(c *gin.Context) {
	clinicID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var clinic models.Clinic
	if err := database.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		util.RespondNotFound(c, "clinic")
		return
	}
	if clinic.OwnerID != userID {
		util.RespondForbidden(c, "only the owner can edit a clinic")
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Location    *string  `json:"location"`
		Address     *string  `json:"address"`
		Services    []string `json:"services"`
		Website     *string  `json:"website"`
		Phone       *string  `json:"phone"`
		LogoURL     *string  `json:"logo_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Services != nil {
		updates["services"] = models.StringArray(req.Services)
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.LogoURL != nil {
		updates["logo_url"] = *req.LogoURL
	}
	if len(updates) == 0 {
		util.RespondBadRequest(c, "no fields to update")
		return
	}

	if err := database.DB.Model(&clinic).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to update clinic")
		return
	}

	if err := database.DB.Preload("Owner").First(&clinic, "id = ?", clinicID).Error; err != nil {
		logger.WarnWithFields("Failed to reload clinic "+clinicID, err)
	}

	c.JSON(http.StatusOK, gin.H{"clinic": clinic})
}

// DeleteClinic removes a clinic page. Only the owner may delete it.
// DELETE /api/v1/clinics/:id
func (h *Handlers) DeleteClinic(c *gin.Context) {
	clinicID := c.Param("id")
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var clinic models.Clinic
	if err := database.DB.First(&clinic, "id = ?", clinicID).Error; err != nil {
		util.RespondNotFound(c, "clinic")
		return
	}
	if clinic.OwnerID != userID {
		util.RespondForbidden(c, "only the owner can delete a clinic")
		return
	}

	if err := database.DB.Delete(&clinic).Error; err != nil {
		util.RespondInternalError(c, "failed to delete clinic")
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": true})
}
