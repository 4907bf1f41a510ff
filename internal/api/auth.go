package api

import (
	"errors"   // Error inspection
	"net/http" // HTTP status codes

	"virtual_wallet/internal/auth"   // Bearer token issuing
	"virtual_wallet/internal/domain" // Importing domain models
	"virtual_wallet/internal/wallet" // Wallet service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RegisterRequest is the registration body
type RegisterRequest struct {
	Username string `json:"username" binding:"required"` // Username must be provided
	Password string `json:"password" binding:"required"` // Password must be provided, length checked by the service
}

// RegisterResponse echoes the registered username
type RegisterResponse struct {
	Username string `json:"username"` // Registered username
}

// LoginRequest accepts the OAuth2 password form or the equivalent JSON
type LoginRequest struct {
	Username string `form:"username" json:"username" binding:"required"` // Username must be provided
	Password string `form:"password" json:"password" binding:"required"` // Password must be provided
}

// TokenResponse carries an issued bearer token
type TokenResponse struct {
	AccessToken string `json:"access_token"` // Signed JWT
	TokenType   string `json:"token_type"`   // Always "bearer"
}

// RegisterHandler registers a new user holding the initial grant
func RegisterHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "username and password are required")
			return
		}
		user, err := svc.Register(c.Request.Context(), req.Username, req.Password) // Create user and grant
		if err != nil {
			respondError(c, err, "Registration failed.")
			return
		}
		c.JSON(http.StatusCreated, RegisterResponse{Username: user.Username}) // Return success response
	}
}

// LoginHandler authenticates a user and returns a bearer token
func LoginHandler(svc *wallet.Service, verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest // Bind form or JSON request to struct
		if err := c.ShouldBind(&req); err != nil {
			// If binding fails, return bad request
			badRequest(c, "username and password are required")
			return
		}
		user, err := svc.Authenticate(c.Request.Context(), req.Username, req.Password) // Check credentials
		if err != nil {
			if errors.Is(err, domain.ErrInvalidCredential) {
				// Same answer for unknown user and wrong password
				c.Header("WWW-Authenticate", "Bearer")
				c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
				return
			}
			respondError(c, err, "Login failed.")
			return
		}
		token, _, err := verifier.Issue(user.Username) // Generate JWT token
		if err != nil {
			respondError(c, err, "Failed to generate token")
			return
		}
		c.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: auth.TokenType}) // Return the token
	}
}
