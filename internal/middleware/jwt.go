package middleware

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes
	"strings"  // String manipulation

	"virtual_wallet/internal/auth"   // Bearer token verifier
	"virtual_wallet/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// Context keys set by JWTAuthMiddleware
const (
	UserKey   = "user"   // *domain.User of the bearer
	UserIDKey = "userID" // uint id of the bearer
)

// JWTAuthMiddleware validates bearer tokens and resolves them to a user
func JWTAuthMiddleware(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization")) // Extract the token string
		if !ok {
			unauthorized(c, "Missing or invalid Authorization header")
			return
		}
		user, err := verifier.Verify(c.Request.Context(), token) // Verify and resolve the user
		if err != nil {
			if !errors.Is(err, domain.ErrInvalidCredential) && !errors.Is(err, domain.ErrUserNotFound) {
				// Store failure, not a bad token
				logrus.WithField("error", err.Error()).Error("Token verification failed")
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
				return
			}
			unauthorized(c, "Could not validate credentials")
			return
		}
		c.Set(UserKey, user)      // Store user in context
		c.Set(UserIDKey, user.ID) // Store userID in context
		c.Next()                  // Proceed to the next handler
	}
}

// CurrentUser returns the user stored by JWTAuthMiddleware
func CurrentUser(c *gin.Context) (*domain.User, bool) {
	v, exists := c.Get(UserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*domain.User)
	return user, ok
}

// bearerToken extracts the token from an Authorization header value
func bearerToken(header string) (string, bool) {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(prefix):])
	return token, token != ""
}

// unauthorized aborts with 401 and the bearer challenge header
func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
