package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion

	"virtual_wallet/internal/domain"     // Importing domain models
	"virtual_wallet/internal/middleware" // Authenticated user lookup
	"virtual_wallet/internal/wallet"     // Wallet service

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/shopspring/decimal" // Money arithmetic
)

// BalanceResponse reports a user's wallet
type BalanceResponse struct {
	UserID   uint    `json:"user_id"`  // User ID
	Username string  `json:"username"` // Username
	Balance  float64 `json:"balance"`  // Current balance
}

func newBalanceResponse(u domain.User) BalanceResponse {
	return BalanceResponse{UserID: u.ID, Username: u.Username, Balance: u.Balance.InexactFloat64()}
}

// SpendRequest represents a spend request
type SpendRequest struct {
	Amount      float64 `json:"amount" binding:"required,gt=0"` // Amount to spend, must be greater than zero
	Description string  `json:"description"`                    // Optional description
}

// BalanceHandler returns the authenticated user's balance. It is always read from the store, never from Redis.
func BalanceHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Get user from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		current, err := svc.Balance(c.Request.Context(), user.ID) // Fetch from store
		if err != nil {
			respondError(c, err, "Failed to fetch balance")
			return
		}
		c.JSON(http.StatusOK, newBalanceResponse(*current))
	}
}

// SpendHandler deducts an arbitrary amount from the user's wallet
func SpendHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Get user from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req SpendRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "amount must be a number greater than zero")
			return
		}
		receipt, err := svc.Spend(c.Request.Context(), user.ID, decimal.NewFromFloat(req.Amount), req.Description)
		if err != nil {
			respondError(c, err, "Spend failed")
			return
		}
		c.JSON(http.StatusOK, newBalanceResponse(receipt.User))
	}
}

// HistoryHandler returns the authenticated user's own transactions, newest first
func HistoryHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Get user from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		page, pageSize := pagination(c) // Page parameters
		txs, total, err := svc.History(c.Request.Context(), user.ID, page, pageSize)
		if err != nil {
			respondError(c, err, "Failed to fetch transactions")
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"transactions": newTransactionResponses(txs),           // Page of transactions
			"page":         page,                                   // Current page
			"page_size":    pageSize,                               // Page size
			"total":        total,                                  // Total transactions
			"total_pages":  (int(total) + pageSize - 1) / pageSize, // Total pages
		})
	}
}

// pagination reads page and page_size, defaulting to 1 and 20, capping page_size at 100
func pagination(c *gin.Context) (int, int) {
	page := 1      // Default page
	pageSize := 20 // Default page size
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v // Set page if valid
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v // Set page size if valid
		}
	}
	return page, pageSize
}
