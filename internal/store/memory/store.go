package memory

import (
	"context" // Repository signatures
	"fmt"     // Error wrapping
	"sort"    // Stable listings
	"sync"    // Store-wide lock
	"time"    // Timestamps

	"virtual_wallet/internal/domain" // Importing domain models
	"virtual_wallet/internal/store"  // Store contracts

	"github.com/shopspring/decimal" // Money arithmetic
)

// Store keeps users, items and the ledger in process memory behind one lock
type Store struct {
	mu         sync.RWMutex          // Guards everything below
	users      map[uint]*domain.User // Users by ID
	byName     map[string]uint       // User IDs by username
	lastUserID uint                  // Last issued user ID, never reused
	items      map[uint]domain.Item  // Catalog
	txs        []domain.Transaction  // Ledger in insertion order
	lastTxID   uint                  // Last issued transaction ID, never reused
	now        func() time.Time      // Clock
}

// Option customizes a Store
type Option func(*Store)

// WithCatalog replaces the seeded items
func WithCatalog(items []domain.Item) Option {
	return func(s *Store) {
		s.items = make(map[uint]domain.Item, len(items))
		for _, it := range items {
			s.items[it.ID] = it
		}
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store seeded with domain.DefaultCatalog
func New(opts ...Option) *Store {
	s := &Store{
		users:  make(map[uint]*domain.User), // No users yet
		byName: make(map[string]uint),       // Username index
		now:    time.Now,                    // Wall clock
	}
	WithCatalog(domain.DefaultCatalog())(s) // Seed the catalog
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ store.Store = (*Store)(nil)

func (s *Store) Users() store.Users     { return &repos{s: s} }
func (s *Store) Catalog() store.Catalog { return &repos{s: s} }
func (s *Store) Ledger() store.Ledger   { return &repos{s: s} }

// Atomic runs fn under the write lock and reverts every change fn made if it fails or panics.
// fn must only use the repositories it is given; calling back into the Store would deadlock.
func (s *Store) Atomic(ctx context.Context, fn func(repos store.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err // Caller gave up before we started
	}
	s.mu.Lock()
	j := &journal{}    // Undo steps for this unit
	committed := false // Set once fn succeeds
	defer func() {
		if !committed {
			j.rollback() // Error or panic
		}
		s.mu.Unlock()
	}()
	if err := fn(&repos{s: s, journal: j}); err != nil {
		return err
	}
	committed = true
	return nil
}

// Close is a no-op
func (s *Store) Close() error { return nil }

// journal collects undo steps for one unit of work
type journal struct {
	undo []func() // Applied in reverse order
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

// repos implements every repository. Outside Atomic each call takes the lock itself
type repos struct {
	s       *Store   // Backing store
	journal *journal // Non-nil inside Atomic, where the lock is already held
}

func (r *repos) Users() store.Users     { return r }
func (r *repos) Catalog() store.Catalog { return r }
func (r *repos) Ledger() store.Ledger   { return r }

func noop() {}

func (r *repos) rlock() func() {
	if r.journal != nil {
		return noop // Held by Atomic
	}
	r.s.mu.RLock()
	return r.s.mu.RUnlock
}

func (r *repos) lock() func() {
	if r.journal != nil {
		return noop // Held by Atomic
	}
	r.s.mu.Lock()
	return r.s.mu.Unlock
}

func (r *repos) onRollback(undo func()) {
	if r.journal != nil {
		r.journal.undo = append(r.journal.undo, undo) // Only units of work can roll back
	}
}

func (r *repos) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	defer r.rlock()()
	id, ok := r.s.byName[username] // Username index
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUserNotFound, username)
	}
	u := *r.s.users[id] // Copy out
	return &u, nil
}

func (r *repos) FindByID(_ context.Context, id uint) (*domain.User, error) {
	defer r.rlock()()
	u, ok := r.s.users[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, id)
	}
	cp := *u // Copy out
	return &cp, nil
}

func (r *repos) Create(_ context.Context, username, passwordHash string, openingBalance decimal.Decimal) (*domain.User, error) {
	defer r.lock()()
	if _, taken := r.s.byName[username]; taken {
		return nil, fmt.Errorf("%w: %q", domain.ErrDuplicateUsername, username)
	}
	r.s.lastUserID++ // Next ID
	u := &domain.User{
		ID:           r.s.lastUserID,                    // User ID
		Username:     username,                          // Username
		PasswordHash: passwordHash,                      // Bcrypt hash
		Balance:      domain.RoundMoney(openingBalance), // Opening balance
		CreatedAt:    r.s.now(),                         // Registration time
	}
	r.s.users[u.ID] = u
	r.s.byName[username] = u.ID
	r.onRollback(func() {
		delete(r.s.users, u.ID)
		delete(r.s.byName, username)
	})
	cp := *u
	return &cp, nil
}

func (r *repos) ApplyBalanceDelta(_ context.Context, userID uint, delta decimal.Decimal) (decimal.Decimal, error) {
	defer r.lock()()
	u, ok := r.s.users[userID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: id %d", domain.ErrUserNotFound, userID)
	}
	next := u.Balance.Add(delta)
	// Debits may never take the balance below zero
	if delta.IsNegative() && next.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: balance %s, requested %s",
			domain.ErrInsufficientFunds, u.Balance.StringFixed(domain.MoneyPlaces), delta.Neg().StringFixed(domain.MoneyPlaces))
	}
	prev := u.Balance
	u.Balance = domain.RoundMoney(next)
	r.onRollback(func() { u.Balance = prev }) // Restore on rollback
	return u.Balance, nil
}

func (r *repos) ListUsers(_ context.Context) ([]domain.User, error) {
	defer r.rlock()()
	out := make([]domain.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID }) // By ID
	return out, nil
}

func (r *repos) FindItem(_ context.Context, id uint) (*domain.Item, error) {
	defer r.rlock()()
	it, ok := r.s.items[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", domain.ErrItemNotFound, id)
	}
	return &it, nil
}

func (r *repos) ListItems(_ context.Context) ([]domain.Item, error) {
	defer r.rlock()()
	out := make([]domain.Item, 0, len(r.s.items))
	for _, it := range r.s.items {
		out = append(out, it)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID }) // By ID
	return out, nil
}

func (r *repos) Append(_ context.Context, entry domain.Transaction) (*domain.Transaction, error) {
	defer r.lock()()
	r.s.lastTxID++              // Next ID
	entry.ID = r.s.lastTxID     // Transaction ID
	entry.Timestamp = r.s.now() // Recorded now
	if entry.ItemID != nil {
		id := *entry.ItemID
		entry.ItemID = &id // Do not share the caller's pointer
	}
	n := len(r.s.txs)
	r.s.txs = append(r.s.txs, entry)
	r.onRollback(func() { r.s.txs = r.s.txs[:n] }) // Truncate on rollback
	return &entry, nil
}

func (r *repos) ListTransactions(_ context.Context, filter store.TransactionFilter) ([]domain.Transaction, int64, error) {
	defer r.rlock()()
	matched := make([]domain.Transaction, 0)
	for _, tx := range r.s.txs {
		if filter.UserID != nil && tx.UserID != *filter.UserID {
			continue // Other user
		}
		if filter.Type != "" && tx.Type != filter.Type {
			continue // Other type
		}
		matched = append(matched, tx)
	}
	total := int64(len(matched)) // Before paging
	if filter.Descending {
		for i, j := 0, len(matched)-1; i < j; i, j = i+1, j-1 {
			matched[i], matched[j] = matched[j], matched[i]
		}
	}
	return page(matched, filter.Offset, filter.Limit), total, nil
}

// page applies offset and limit; a zero limit means no limit
func page(txs []domain.Transaction, offset, limit int) []domain.Transaction {
	if offset > 0 {
		if offset >= len(txs) {
			return []domain.Transaction{}
		}
		txs = txs[offset:]
	}
	if limit > 0 && limit < len(txs) {
		txs = txs[:limit]
	}
	return txs
}
