package middleware

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin" // Gin web framework
)

// AdminOnlyMiddleware lets through only users for which isAdmin holds. It must run after JWTAuthMiddleware.
func AdminOnlyMiddleware(isAdmin func(username string) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, exists := CurrentUser(c) // Get user from context
		// Check if user exists in context
		if !exists {
			// If not, abort with unauthorized status
			unauthorized(c, "Unauthorized")
			return
		}
		// Check if user is an admin
		if !isAdmin(user.Username) {
			// If not admin, abort with forbidden status
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Admin access required"})
			return
		}
		// If admin, proceed to the next handler
		c.Next()
	}
}
