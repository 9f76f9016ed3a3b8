package handlers

import (
	stderrors "errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// CreateReport files a moderation report against a piece of content
// POST /api/v1/reports
func (h *Handlers) CreateReport(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		TargetType  string `json:"target_type" binding:"required"`
		TargetID    string `json:"target_id" binding:"required"`
		Reason      string `json:"reason" binding:"required"`
		Description string `json:"description" binding:"max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	if !validReportReason(models.ReportReason(req.Reason)) {
		util.RespondValidationError(c, "reason", "unknown report reason")
		return
	}

	targetUserID, err := resolveReportTarget(models.ReportTargetType(req.TargetType), req.TargetID)
	if err != nil {
		util.RespondValidationError(c, "target_id", err.Error())
		return
	}

	report := models.Report{
		ReporterID:   userID,
		TargetType:   models.ReportTargetType(req.TargetType),
		TargetID:     req.TargetID,
		TargetUserID: targetUserID,
		Reason:       models.ReportReason(req.Reason),
		Description:  req.Description,
		Status:       models.ReportStatusPending,
	}
	if err := database.DB.Create(&report).Error; err != nil {
		util.RespondInternalError(c, "failed to create report")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"report": report})
}

// ListReports returns reports for moderators, newest first
// GET /api/v1/admin/reports?status=pending&limit=20&offset=0
func (h *Handlers) ListReports(c *gin.Context) {
	limit := util.ParseInt(c.DefaultQuery("limit", "20"), 20)
	offset := util.ParseInt(c.DefaultQuery("offset", "0"), 0)

	query := database.DB.Preload("Reporter")
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reports []models.Report
	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).
		Find(&reports).Error; err != nil {
		util.RespondInternalError(c, "failed to list reports")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"reports": reports,
		"meta": gin.H{
			"limit":  limit,
			"offset": offset,
			"count":  len(reports),
		},
	})
}

// ResolveReport records a moderation decision on a report
// PUT /api/v1/admin/reports/:id
func (h *Handlers) ResolveReport(c *gin.Context) {
	reportID := c.Param("id")
	moderatorID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}

	var req struct {
		Status      string `json:"status" binding:"required"`
		ActionTaken string `json:"action_taken"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.RespondBadRequest(c, err.Error())
		return
	}

	switch models.ReportStatus(req.Status) {
	case models.ReportStatusReviewing, models.ReportStatusResolved, models.ReportStatusDismissed:
	default:
		util.RespondValidationError(c, "status", "unknown report status")
		return
	}

	var report models.Report
	if err := database.DB.First(&report, "id = ?", reportID).Error; err != nil {
		util.RespondNotFound(c, "report")
		return
	}

	updates := map[string]interface{}{
		"status":       req.Status,
		"moderator_id": moderatorID,
	}
	if req.ActionTaken != "" {
		updates["action_taken"] = req.ActionTaken
	}
	if err := database.DB.Model(&report).Updates(updates).Error; err != nil {
		util.RespondInternalError(c, "failed to resolve report")
		return
	}

	// Let the reported user know when action was taken against their content
	if report.TargetUserID != nil &&
		models.ReportStatus(req.Status) == models.ReportStatusResolved && req.ActionTaken != "" {
		h.notify(*report.TargetUserID, moderatorID, models.NotificationModeration,
			string(report.TargetType), report.TargetID,
			"a moderator reviewed your content: "+req.ActionTaken)
	}

	if err := database.DB.Preload("Reporter").Preload("Moderator").
		First(&report, "id = ?", reportID).Error; err == nil {
		c.JSON(http.StatusOK, gin.H{"report": report})
		return
	}

	c.JSON(http.StatusOK, gin.H{"report": report})
}

func validReportReason(reason models.ReportReason) bool {
	for _, r := range models.ValidReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// resolveReportTarget verifies the reported content exists and returns the
// ID of the user who owns it.
func resolveReportTarget(targetType models.ReportTargetType, targetID string) (*string, error) {
	var ownerID string
	var err error

	switch targetType {
	case models.ReportTargetCase:
		var target models.Case
		err = database.DB.Select("author_id").First(&target, "id = ?", targetID).Error
		ownerID = target.AuthorID
	case models.ReportTargetThread:
		var target models.ForumThread
		err = database.DB.Select("author_id").First(&target, "id = ?", targetID).Error
		ownerID = target.AuthorID
	case models.ReportTargetReply:
		var target models.ForumReply
		err = database.DB.Select("author_id").First(&target, "id = ?", targetID).Error
		ownerID = target.AuthorID
	case models.ReportTargetClinic:
		var target models.Clinic
		err = database.DB.Select("owner_id").First(&target, "id = ?", targetID).Error
		ownerID = target.OwnerID
	case models.ReportTargetUser:
		var target models.User
		err = database.DB.Select("id").First(&target, "id = ?", targetID).Error
		ownerID = target.ID
	default:
		return nil, errUnknownTargetType
	}

	if err != nil {
		return nil, errTargetNotFound
	}
	return &ownerID, nil
}

var (
	errUnknownTargetType = stderrors.New("unknown target type")
	errTargetNotFound    = stderrors.New("target not found")
)
