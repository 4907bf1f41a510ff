package sqlstore

import (
	"context" // Request scoped queries
	"errors"  // Error inspection
	"fmt"     // Error wrapping
	"time"    // Timestamps

	"virtual_wallet/internal/domain" // Importing domain models
	"virtual_wallet/internal/store"  // Store contracts

	"github.com/shopspring/decimal" // Money arithmetic
	"gorm.io/gorm"                  // GORM ORM library
	"gorm.io/gorm/clause"           // Row locking
)

// Store is the GORM backed store; balance changes lock the user row with SELECT ... FOR UPDATE
type Store struct {
	db  *gorm.DB         // Connection pool
	now func() time.Time // Clock
}

// New returns a Store over db. The schema is expected to exist (see db.Migrate).
func New(db *gorm.DB) *Store {
	return &Store{db: db, now: time.Now}
}

var _ store.Store = (*Store)(nil)

func (s *Store) Users() store.Users     { return s.repos(s.db) }
func (s *Store) Catalog() store.Catalog { return s.repos(s.db) }
func (s *Store) Ledger() store.Ledger   { return s.repos(s.db) }

func (s *Store) repos(db *gorm.DB) *repos {
	return &repos{db: db, now: s.now}
}

// Atomic runs fn inside a database transaction.
func (s *Store) Atomic(ctx context.Context, fn func(repos store.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.repos(tx))
	})
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type repos struct {
	db  *gorm.DB
	now func() time.Time
}

func (r *repos) Users() store.Users     { return r }
func (r *repos) Catalog() store.Catalog { return r }
func (r *repos) Ledger() store.Ledger   { return r }

func (r *repos) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %q", domain.ErrUserNotFound, username)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *repos) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &user, nil
}

func (r *repos) Create(ctx context.Context, username, passwordHash string, openingBalance decimal.Decimal) (*domain.User, error) {
	user := domain.User{
		Username:     username,
		PasswordHash: passwordHash,
		Balance:      domain.RoundMoney(openingBalance),
	}
	if err := r.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateUsername, username)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (r *repos) ApplyBalanceDelta(ctx context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	var user domain.User
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}). // Lock the row until the unit of work ends
		First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
		}
		return decimal.Zero, fmt.Errorf("failed to lock user: %w", err)
	}
	next := user.Balance.Add(delta)
	if delta.IsNegative() && next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: balance %s, requested %s",
			domain.ErrInsufficientFunds, user.Balance.StringFixed(domain.MoneyPlaces), delta.Neg().StringFixed(domain.MoneyPlaces))
	}
	next = domain.RoundMoney(next)
	if err := r.db.WithContext(ctx).Model(&user).Update("balance", next).Error; err != nil {
		return decimal.Zero, fmt.Errorf("failed to update balance: %w", err)
	}
	return next, nil
}

func (r *repos) ListUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("id").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (r *repos) FindItem(ctx context.Context, id uint) (*domain.Item, error) {
	var item domain.Item
	if err := r.db.WithContext(ctx).First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, id)
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}
	return &item, nil
}

func (r *repos) ListItems(ctx context.Context) ([]domain.Item, error) {
	var items []domain.Item
	if err := r.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	return items, nil
}

func (r *repos) Append(ctx context.Context, entry domain.Transaction) (*domain.Transaction, error) {
	entry.ID = 0
	entry.Timestamp = r.now()
	if err := r.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}
	return &entry, nil
}

func (r *repos) ListTransactions(ctx context.Context, filter store.TransactionFilter) ([]domain.Transaction, int64, error) {
	query := r.db.WithContext(ctx).Model(&domain.Transaction{})
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	order := "id"
	if filter.Descending {
		order = "id desc"
	}
	query = query.Order(order)
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	txs := make([]domain.Transaction, 0)
	if err := query.Find(&txs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch transactions: %w", err)
	}
	return txs, total, nil
}
