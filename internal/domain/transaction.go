package domain

import (
	"time" // Entry timestamp

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// TransactionType classifies a ledger entry
type TransactionType string

// Ledger entry types
const (
	TransactionRegister TransactionType = "REGISTER" // Initial grant on registration
	TransactionSpend    TransactionType = "SPEND"    // Free-form spend
	TransactionBuy      TransactionType = "BUY"      // Catalog purchase
)

// Valid reports whether t is one of the known ledger entry types
func (t TransactionType) Valid() bool {
	switch t {
	case TransactionRegister, TransactionSpend, TransactionBuy:
		return true
	}
	return false
}

// Transaction Model
type Transaction struct {
	ID          uint            `gorm:"primaryKey" json:"id"`                      // Primary key
	UserID      uint            `gorm:"index;not null" json:"user_id"`             // Owner of the balance change
	Timestamp   time.Time       `gorm:"not null" json:"timestamp"`                 // Time of the entry
	Type        TransactionType `gorm:"size:16;index;not null" json:"type"`        // REGISTER, SPEND or BUY
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"` // Amount moved
	Description string          `gorm:"size:255" json:"description"`               // Human readable description
	ItemID      *uint           `json:"item_id"`                                   // Purchased item, BUY only
}
