package search

import (
	"github.com/dentlink/backend/internal/models"
)

// PractitionerToSearchDoc converts a User model to a search document
func PractitionerToSearchDoc(user *models.User) map[string]interface{} {
	return map[string]interface{}{
		"id":             user.ID,
		"username":       user.Username,
		"display_name":   user.DisplayName,
		"bio":            user.Bio,
		"specialty":      user.Specialty,
		"procedures":     []string(user.Procedures),
		"follower_count": user.FollowerCount,
		"created_at":     user.CreatedAt,
	}
}
