package store

import (
	"context" // Request scoped operations

	"virtual_wallet/internal/domain" // Importing domain models

	"github.com/shopspring/decimal" // Money arithmetic
)

// Users is the identity store
type Users interface {
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id uint) (*domain.User, error)
	// Create fails with domain.ErrDuplicateUsername if the username is taken.
	Create(ctx context.Context, username, passwordHash string, openingBalance decimal.Decimal) (*domain.User, error)
	// ApplyBalanceDelta adds delta to the balance and returns the new balance
	// rounded to two places. A negative delta that would take the balance
	// below zero fails with domain.ErrInsufficientFunds and changes nothing.
	ApplyBalanceDelta(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// Catalog is the read-only item store
type Catalog interface {
	FindItem(ctx context.Context, id uint) (*domain.Item, error)
	ListItems(ctx context.Context) ([]domain.Item, error)
}

// Ledger is the append-only transaction log
type Ledger interface {
	// Append assigns the entry a fresh id and timestamp and stores it.
	Append(ctx context.Context, entry domain.Transaction) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, filter TransactionFilter) ([]domain.Transaction, int64, error)
}

// TransactionFilter narrows a ledger listing. Zero values mean "no filter";
// a zero Limit returns every matching entry.
type TransactionFilter struct {
	UserID     *uint
	Type       domain.TransactionType
	Offset     int
	Limit      int
	Descending bool
}

// Repositories groups the three stores.
type Repositories interface {
	Users() Users
	Catalog() Catalog
	Ledger() Ledger
}

// Store is a backend. Atomic runs fn as one unit of work: mutations made
// through the repositories handed to fn are serialized against every other
// unit and are all discarded if fn returns an error.
type Store interface {
	Repositories
	Atomic(ctx context.Context, fn func(repos Repositories) error) error
	Close() error
}
