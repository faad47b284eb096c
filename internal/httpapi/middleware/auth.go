package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/service"
)

// Context keys set by AuthRequired.
const (
	CtxUserID   = "userID"
	CtxUsername = "username"
	CtxRole     = "role"
)

// AuthRequired is a Gin middleware for JWT authentication of API requests.
// It checks for the presence and validity of a JWT token in the
// Authorization header and stores the caller's identity in the context.
func AuthRequired(auth service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			c.Abort()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		claims, err := auth.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxUsername, claims.Username)
		c.Set(CtxRole, claims.Role)

		c.Next()
	}
}

// RequireAdmin allows only administrators through. Must run after
// AuthRequired.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get(CtxRole)
		if !exists || !role.(models.Role).CanManageContent() {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentActor extracts the authenticated caller set by AuthRequired.
func CurrentActor(c *gin.Context) (service.Actor, bool) {
	id, okID := c.Get(CtxUserID)
	role, okRole := c.Get(CtxRole)
	if !okID || !okRole {
		return service.Actor{}, false
	}
	return service.Actor{ID: id.(string), Role: role.(models.Role)}, true
}
