package handlers

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/models"
	"github.com/dentlink/backend/internal/util"
)

// 10 MB per image upload
const maxImageSize = 10 << 20

// UploadCaseImage accepts a multipart image for a case gallery
// POST /api/v1/uploads/case-image
func (h *Handlers) UploadCaseImage(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		util.RespondInternalError(c, "uploads are not configured")
		return
	}

	data, filename, ok := readImageUpload(c)
	if !ok {
		return
	}

	result, err := h.uploader.UploadCaseImage(c.Request.Context(), data, userID, filename)
	if err != nil {
		util.RespondInternalError(c, "failed to upload image")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"upload": result})
}

// UploadAvatar accepts a multipart image, uploads it, and sets it as the
// authenticated user's avatar
// POST /api/v1/uploads/avatar
func (h *Handlers) UploadAvatar(c *gin.Context) {
	userID, ok := util.GetUserIDFromContext(c)
	if !ok {
		return
	}
	if h.uploader == nil {
		util.RespondInternalError(c, "uploads are not configured")
		return
	}

	data, filename, ok := readImageUpload(c)
	if !ok {
		return
	}

	result, err := h.uploader.UploadAvatar(c.Request.Context(), data, userID, filename)
	if err != nil {
		util.RespondInternalError(c, "failed to upload avatar")
		return
	}

	if err := database.DB.Model(&models.User{}).Where("id = ?", userID).
		UpdateColumn("avatar_url", result.URL).Error; err != nil {
		util.RespondInternalError(c, "failed to save avatar")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"upload": result})
}

// readImageUpload pulls the "image" field out of a multipart form and
// validates size and extension. Responds with an error and returns ok=false
// on failure.
func readImageUpload(c *gin.Context) ([]byte, string, bool) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		util.RespondBadRequest(c, "image field required")
		return nil, "", false
	}
	if fileHeader.Size > maxImageSize {
		util.RespondValidationError(c, "image", "image exceeds 10MB limit")
		return nil, "", false
	}
	if !isValidImageFile(fileHeader.Filename) {
		util.RespondValidationError(c, "image", "unsupported image format")
		return nil, "", false
	}

	file, err := fileHeader.Open()
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize+1))
	if err != nil {
		util.RespondInternalError(c, "failed to read upload")
		return nil, "", false
	}

	return data, fileHeader.Filename, true
}

func isValidImageFile(filename string) bool {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp", ".gif":
		return true
	}
	return false
}
