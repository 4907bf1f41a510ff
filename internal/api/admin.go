package api

import (
	"net/http" // HTTP status codes
	"strconv"  // String conversion
	"strings"  // String manipulation
	"time"     // Timestamps

	"virtual_wallet/internal/domain" // Importing domain models
	"virtual_wallet/internal/store"  // Ledger filters
	"virtual_wallet/internal/wallet" // Wallet service

	"github.com/gin-gonic/gin" // Gin web framework
)

// TransactionResponse is a ledger entry as returned by the API
type TransactionResponse struct {
	ID          uint      `json:"id"`          // Transaction ID
	UserID      uint      `json:"user_id"`     // Owner
	Timestamp   time.Time `json:"timestamp"`   // Creation time
	Type        string    `json:"type"`        // REGISTER, SPEND or BUY
	Amount      float64   `json:"amount"`      // Amount moved
	Description string    `json:"description"` // Description
	ItemID      *uint     `json:"item_id"`     // Purchased item, BUY only
}

func newTransactionResponses(txs []domain.Transaction) []TransactionResponse {
	resp := make([]TransactionResponse, len(txs))
	for i, tx := range txs {
		resp[i] = TransactionResponse{
			ID:          tx.ID,
			UserID:      tx.UserID,
			Timestamp:   tx.Timestamp,
			Type:        string(tx.Type),
			Amount:      tx.Amount.InexactFloat64(),
			Description: tx.Description,
			ItemID:      tx.ItemID,
		}
	}
	return resp
}

// UserAdminResponse represents the user data returned by the debug listing, hash included
type UserAdminResponse struct {
	ID             uint    `json:"id"`              // User ID
	Username       string  `json:"username"`        // Username
	HashedPassword string  `json:"hashed_password"` // Bcrypt hash
	Balance        float64 `json:"balance"`         // Current balance
}

// ListUsersHandler returns all users, password hashes included. Debug use only.
func ListUsersHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		users, err := svc.Users(c.Request.Context()) // Fetch all users
		if err != nil {
			respondError(c, err, "Failed to fetch users")
			return
		}
		resp := make([]UserAdminResponse, len(users))
		// Map users to response format
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:             u.ID,                       // User ID
				Username:       u.Username,                 // Username
				HashedPassword: u.PasswordHash,             // Stored hash
				Balance:        u.Balance.InexactFloat64(), // Balance
			}
		}
		c.JSON(http.StatusOK, resp)
	}
}

// ListTransactionsHandler returns all transactions in insertion order, optionally filtered by user_id or type
func ListTransactionsHandler(svc *wallet.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var filter store.TransactionFilter
		if raw := c.Query("user_id"); raw != "" {
			id, err := strconv.ParseUint(raw, 10, 32)
			if err != nil {
				badRequest(c, "user_id must be a positive integer")
				return
			}
			uid := uint(id)
			filter.UserID = &uid // Filter by user ID
		}
		if raw := c.Query("type"); raw != "" {
			txType := domain.TransactionType(strings.ToUpper(raw))
			if !txType.Valid() {
				badRequest(c, "type must be one of REGISTER, SPEND, BUY")
				return
			}
			filter.Type = txType // Filter by transaction type
		}
		txs, _, err := svc.Transactions(c.Request.Context(), filter) // Fetch transactions
		if err != nil {
			respondError(c, err, "Failed to fetch transactions")
			return
		}
		c.JSON(http.StatusOK, newTransactionResponses(txs))
	}
}
