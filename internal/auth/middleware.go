package auth

import (
	"net/http"
	"strings"

	"github.com/dentlink/backend/internal/database"
	"github.com/dentlink/backend/internal/models"
	"github.com/gin-gonic/gin"
)

// Middleware validates the Authorization header and loads the user into
// the Gin context under "user_id" and "user".
func (s *Service) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing_authorization_header"})
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		if tokenString == header {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_authorization_header"})
			c.Abort()
			return
		}

		userID, err := s.ValidateToken(tokenString)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_token"})
			c.Abort()
			return
		}

		var user models.User
		if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "user_not_found"})
			c.Abort()
			return
		}

		c.Set("user_id", user.ID)
		c.Set("user", &user)
		c.Next()
	}
}

// AdminMiddleware rejects non-admin users. Must run after Middleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := c.Get("user")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			c.Abort()
			return
		}
		u, ok := user.(*models.User)
		if !ok || !u.IsAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin_required"})
			c.Abort()
			return
		}
		c.Next()
	}
}
