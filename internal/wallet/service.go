package wallet

import (
	"context"      // Request scoped operations
	"errors"       // Error inspection
	"fmt"          // Error wrapping
	"strings"      // String manipulation
	"unicode/utf8" // Username length in characters

	"virtual_wallet/internal/domain"  // Importing domain models
	"virtual_wallet/internal/metrics" // Operation counters
	"virtual_wallet/internal/store"   // Store contracts
	"virtual_wallet/internal/utils"   // Password hashing

	"github.com/shopspring/decimal" // Money arithmetic
	"github.com/sirupsen/logrus"    // Logging library
)

// MinPasswordLength is the shortest accepted password
const MinPasswordLength = 6

// Ledger descriptions
const (
	RegisterDescription     = "Initial Wallet Setup" // REGISTER entries
	DefaultSpendDescription = "General Spend"        // SPEND entries without a description
)

// Config tunes a Service
type Config struct {
	InitialGrant decimal.Decimal // Credited on registration, zero means domain.DefaultInitialGrant
}

// Service runs every balance change in one store unit of work together with its ledger entry
type Service struct {
	store        store.Store                  // Users, catalog and ledger
	initialGrant decimal.Decimal              // Registration grant
	hashPassword func(string) (string, error) // Password hasher
}

// NewService creates a new wallet service
func NewService(st store.Store, cfg Config) *Service {
	if st == nil {
		panic("store is required")
	}
	grant := cfg.InitialGrant
	if grant.IsZero() {
		grant = domain.DefaultInitialGrant // Unset grant
	}
	return &Service{
		store:        st,
		initialGrant: domain.RoundMoney(grant),
		hashPassword: utils.HashPassword,
	}
}

// InitialGrant returns the amount credited on registration
func (s *Service) InitialGrant() decimal.Decimal { return s.initialGrant }

// normalizeUsername is applied to usernames on every entry point
func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}

// Register creates a user holding the initial grant and records the grant as a REGISTER entry
func (s *Service) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = normalizeUsername(username)
	if username == "" {
		return nil, s.done("register", fmt.Errorf("%w: username is required", domain.ErrValidation), nil)
	}
	// Must fit the users table on every backend
	if utf8.RuneCountInString(username) > domain.MaxUsernameLength {
		return nil, s.done("register", fmt.Errorf("%w: username must be at most %d characters", domain.ErrValidation, domain.MaxUsernameLength), nil)
	}
	if len(password) < MinPasswordLength {
		return nil, s.done("register", fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, MinPasswordLength), nil)
	}
	fields := logrus.Fields{"username": username} // Log context

	// Skip the bcrypt work for names that are obviously taken; Create re-checks
	if _, err := s.store.Users().FindByUsername(ctx, username); err == nil {
		return nil, s.done("register", fmt.Errorf("%w: %q", domain.ErrDuplicateUsername, username), fields)
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, s.done("register", err, fields)
	}

	hash, err := s.hashPassword(password) // Hash the password
	if err != nil {
		return nil, s.done("register", fmt.Errorf("hash password: %w", err), fields)
	}

	var user *domain.User
	var entry *domain.Transaction
	// Create the user and the grant entry together
	err = s.store.Atomic(ctx, func(r store.Repositories) error {
		u, err := r.Users().Create(ctx, username, hash, s.initialGrant) // Create user with the grant
		if err != nil {
			return err
		}
		tx, err := r.Ledger().Append(ctx, domain.Transaction{
			UserID:      u.ID,                       // Owner
			Type:        domain.TransactionRegister, // Grant
			Amount:      u.Balance,                  // Opening balance
			Description: RegisterDescription,        // Description
		})
		if err != nil {
			return err
		}
		user, entry = u, tx
		return nil
	})
	if err != nil {
		return nil, s.done("register", err, fields)
	}

	fields["user_id"] = user.ID                                             // New user
	fields["transaction_id"] = entry.ID                                     // Grant entry
	fields["amount"] = entry.Amount.StringFixed(domain.MoneyPlaces)         // Grant amount
	metrics.RecordVolume(string(entry.Type), entry.Amount.InexactFloat64()) // Ledger volume
	return user, s.done("register", nil, fields)
}

// Authenticate checks a username/password pair. Unknown users and wrong passwords look the same to the caller.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	username = normalizeUsername(username)        // Same form Register stored
	fields := logrus.Fields{"username": username} // Log context
	user, err := s.store.Users().FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, s.done("login", domain.ErrInvalidCredential, fields)
		}
		return nil, s.done("login", err, fields)
	}
	if !utils.CheckPassword(user.PasswordHash, password) {
		return nil, s.done("login", domain.ErrInvalidCredential, fields) // Wrong password
	}
	fields["user_id"] = user.ID
	return user, s.done("login", nil, fields)
}

// Balance returns the user with their current balance
func (s *Service) Balance(ctx context.Context, userID uint) (*domain.User, error) {
	return s.store.Users().FindByID(ctx, userID)
}

// Spend deducts amount, rounded to two places, and records a SPEND entry
func (s *Service) Spend(ctx context.Context, userID uint, amount decimal.Decimal, description string) (*domain.Receipt, error) {
	amount = domain.RoundMoney(amount) // Work in cents
	fields := logrus.Fields{"user_id": userID, "amount": amount.StringFixed(domain.MoneyPlaces)}
	if !amount.IsPositive() {
		return nil, s.done("spend", fmt.Errorf("%w: amount must be greater than zero", domain.ErrValidation), fields)
	}
	description = strings.TrimSpace(description)
	if description == "" {
		description = DefaultSpendDescription // Default description
	}

	var receipt *domain.Receipt
	err := s.store.Atomic(ctx, func(r store.Repositories) error {
		var err error
		receipt, err = debit(ctx, r, domain.Transaction{
			UserID:      userID,                  // Owner
			Type:        domain.TransactionSpend, // Spend
			Amount:      amount,                  // Amount
			Description: description,             // Description
		})
		return err
	})
	return s.settle("spend", receipt, err, fields)
}

// Buy deducts the price of an item and records a BUY entry referencing it
func (s *Service) Buy(ctx context.Context, userID, itemID uint) (*domain.Receipt, error) {
	fields := logrus.Fields{"user_id": userID, "item_id": itemID} // Log context

	var receipt *domain.Receipt
	err := s.store.Atomic(ctx, func(r store.Repositories) error {
		item, err := r.Catalog().FindItem(ctx, itemID) // Look up the price
		if err != nil {
			return err
		}
		id := item.ID
		receipt, err = debit(ctx, r, domain.Transaction{
			UserID:      userID,                    // Owner
			Type:        domain.TransactionBuy,     // Purchase
			Amount:      item.Price,                // Item price
			Description: "Purchased: " + item.Name, // Description
			ItemID:      &id,                       // Purchased item
		})
		return err
	})
	return s.settle("buy", receipt, err, fields)
}

// debit applies -entry.Amount to the user and appends entry on repositories bound to the caller's unit of work
func debit(ctx context.Context, r store.Repositories, entry domain.Transaction) (*domain.Receipt, error) {
	if _, err := r.Users().ApplyBalanceDelta(ctx, entry.UserID, entry.Amount.Neg()); err != nil {
		return nil, err // Insufficient funds or unknown user
	}
	tx, err := r.Ledger().Append(ctx, entry) // Record the change
	if err != nil {
		return nil, err
	}
	user, err := r.Users().FindByID(ctx, entry.UserID) // Balance after the change
	if err != nil {
		return nil, err
	}
	return &domain.Receipt{User: *user, Transaction: *tx}, nil
}

// settle logs and counts a finished balance mutation
func (s *Service) settle(op string, receipt *domain.Receipt, err error, fields logrus.Fields) (*domain.Receipt, error) {
	if err != nil {
		return nil, s.done(op, err, fields)
	}
	tx := receipt.Transaction
	fields["transaction_id"] = tx.ID                                         // Ledger entry
	fields["amount"] = tx.Amount.StringFixed(domain.MoneyPlaces)             // Amount moved
	fields["balance"] = receipt.User.Balance.StringFixed(domain.MoneyPlaces) // Balance after
	metrics.RecordVolume(string(tx.Type), tx.Amount.InexactFloat64())        // Ledger volume
	return receipt, s.done(op, nil, fields)
}

// History returns a page of the user's own ledger, newest first, and the user's total entry count
func (s *Service) History(ctx context.Context, userID uint, page, pageSize int) ([]domain.Transaction, int64, error) {
	if page < 1 {
		page = 1 // First page
	}
	if pageSize < 1 {
		pageSize = 20 // Default page size
	}
	return s.store.Ledger().ListTransactions(ctx, store.TransactionFilter{
		UserID:     &userID,               // Own entries only
		Descending: true,                  // Newest first
		Offset:     (page - 1) * pageSize, // Skip earlier pages
		Limit:      pageSize,              // Page size
	})
}

// Users lists every user, including password hashes
func (s *Service) Users(ctx context.Context) ([]domain.User, error) {
	return s.store.Users().ListUsers(ctx)
}

// Items lists the catalog
func (s *Service) Items(ctx context.Context) ([]domain.Item, error) {
	return s.store.Catalog().ListItems(ctx)
}

// Transactions lists ledger entries matching filter in insertion order
func (s *Service) Transactions(ctx context.Context, filter store.TransactionFilter) ([]domain.Transaction, int64, error) {
	return s.store.Ledger().ListTransactions(ctx, filter)
}

// done logs and counts the outcome of op and returns err unchanged
func (s *Service) done(op string, err error, fields logrus.Fields) error {
	entry := logrus.WithField("operation", op).WithFields(fields)
	switch {
	case err == nil:
		metrics.RecordOperation(op, metrics.OutcomeSuccess)
		entry.Info("Wallet operation completed")
	case IsRejection(err):
		metrics.RecordOperation(op, metrics.OutcomeRejected)
		entry.WithField("reason", err.Error()).Warn("Wallet operation rejected")
	default:
		metrics.RecordOperation(op, metrics.OutcomeError)
		entry.WithField("error", err.Error()).Error("Wallet operation failed")
	}
	return err
}

// IsRejection reports whether err is a domain error rather than an internal fault
func IsRejection(err error) bool {
	for _, target := range []error{
		domain.ErrDuplicateUsername,
		domain.ErrInvalidCredential,
		domain.ErrUserNotFound,
		domain.ErrInsufficientFunds,
		domain.ErrItemNotFound,
		domain.ErrValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
