package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"virtual_wallet/internal/domain" // Domain error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// statusFor maps a domain error to its HTTP status; anything else is a 500
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation),
		errors.Is(err, domain.ErrDuplicateUsername),
		errors.Is(err, domain.ErrInsufficientFunds):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrItemNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal faults are logged and
// reported with fallback so no internals leak.
func respondError(c *gin.Context, err error, fallback string) {
	status := statusFor(err)
	msg := err.Error()
	switch status {
	case http.StatusInternalServerError:
		logrus.WithFields(logrus.Fields{
			"path":       c.FullPath(),             // Route
			"request_id": c.GetString("requestID"), // Correlation id
			"error":      err.Error(),              // Underlying error
		}).Error(fallback)
		msg = fallback
	case http.StatusUnauthorized:
		c.Header("WWW-Authenticate", "Bearer") // Bearer challenge
	}
	c.JSON(status, gin.H{"error": msg})
}

// badRequest reports a malformed request body or parameter
func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg})
}
