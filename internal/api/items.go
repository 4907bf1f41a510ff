package api

import (
	"errors"   // Error inspection
	"fmt"      // Message formatting
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"time"     // Time durations

	"virtual_wallet/internal/domain"     // Importing domain models
	"virtual_wallet/internal/middleware" // Authenticated user lookup
	"virtual_wallet/internal/utils"      // Utility functions
	"virtual_wallet/internal/wallet"     // Wallet service

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
)

// ItemResponse is a catalog entry
type ItemResponse struct {
	ID    uint    `json:"id"`    // Item ID
	Name  string  `json:"name"`  // Item name
	Price float64 `json:"price"` // Item price
}

// ListItemsHandler lists all available items for purchase
func ListItemsHandler(svc *wallet.Service, rdb *redis.Client, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []ItemResponse
		// The catalog never changes, so a hit is always current
		if found, err := utils.GetCache(ctx, rdb, utils.ItemsCacheKey, &cached); err == nil && found {
			c.JSON(http.StatusOK, cached)
			return
		}
		items, err := svc.Items(ctx) // Fetch from store
		if err != nil {
			respondError(c, err, "Failed to fetch items")
			return
		}
		resp := make([]ItemResponse, len(items))
		for i, it := range items {
			resp[i] = ItemResponse{ID: it.ID, Name: it.Name, Price: it.Price.InexactFloat64()}
		}
		_ = utils.SetCache(ctx, rdb, utils.ItemsCacheKey, resp, ttl) // Cache the catalog
		c.JSON(http.StatusOK, resp)
	}
}

// BuyHandler lets the authenticated user purchase an item by ID
func BuyHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c) // Get user from context
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		itemID, err := strconv.ParseUint(c.Param("item_id"), 10, 32) // Parse the path parameter
		if err != nil || itemID == 0 {
			badRequest(c, "item_id must be a positive integer")
			return
		}
		receipt, err := svc.Buy(c.Request.Context(), user.ID, uint(itemID))
		if err != nil {
			if errors.Is(err, domain.ErrItemNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("Item with ID %d not found.", itemID)})
				return
			}
			respondError(c, err, "Purchase failed")
			return
		}
		c.JSON(http.StatusOK, newBalanceResponse(receipt.User))
	}
}
