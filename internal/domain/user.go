package domain

import (
	"time" // Creation timestamp

	"github.com/shopspring/decimal" // Exact money arithmetic
)

// MaxUsernameLength is the widest username the users table can hold
const MaxUsernameLength = 64

// User Model
type User struct {
	ID           uint            `gorm:"primaryKey" json:"id"`                                 // Primary key
	Username     string          `gorm:"size:64;uniqueIndex;not null" json:"username"`         // Unique username
	PasswordHash string          `gorm:"column:password;not null" json:"hashed_password"`      // Bcrypt hash
	Balance      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"balance"` // Wallet balance, never negative
	CreatedAt    time.Time       `json:"created_at"`                                           // Registration time
}
