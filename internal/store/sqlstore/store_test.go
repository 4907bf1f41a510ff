package sqlstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"virtual_wallet/internal/domain"
	"virtual_wallet/internal/store"

	"github.com/DATA-DOG/go-sqlmock"
	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	st := New(gdb)
	st.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return st, mock
}

func userRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "username", "password", "balance", "created_at"})
}

func TestFindByUsernameNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(userRows())

	_, err := st.Users().FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindByUsernameScansDecimalBalance(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE username = \\?").
		WillReturnRows(userRows().AddRow(1, "alice", "$2a$hash", "44.50", time.Now()))

	u, err := st.Users().FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, uint(1), u.ID)
	assert.Equal(t, "$2a$hash", u.PasswordHash)
	assert.Equal(t, "44.50", u.Balance.StringFixed(2))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListItems(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `items` ORDER BY id").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}).
			AddRow(1, "The Great Gatsby", "50.00").
			AddRow(2, "Coffee Mug", "25.50"))

	items, err := st.Catalog().ListItems(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Coffee Mug", items[1].Name)
	assert.True(t, items[1].Price.Equal(decimal.RequireFromString("25.5")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFindItemNotFound(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT \\* FROM `items` WHERE `items`.`id` = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price"}))

	_, err := st.Catalog().FindItem(context.Background(), 999)
	assert.ErrorIs(t, err, domain.ErrItemNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateDuplicateUsername(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `users`").
		WillReturnError(&mysqldriver.MySQLError{Number: 1062, Message: "Duplicate entry 'alice'"})
	mock.ExpectRollback()

	_, err := st.Users().Create(context.Background(), "alice", "hash", decimal.NewFromInt(100))
	assert.ErrorIs(t, err, domain.ErrDuplicateUsername)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicDebitCommits(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\? .*FOR UPDATE").
		WillReturnRows(userRows().AddRow(1, "alice", "hash", "100.00", time.Now()))
	mock.ExpectExec("UPDATE `users` SET `balance`=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectCommit()

	var entry *domain.Transaction
	err := st.Atomic(context.Background(), func(r store.Repositories) error {
		balance, err := r.Users().ApplyBalanceDelta(context.Background(), 1, decimal.RequireFromString("-30"))
		if err != nil {
			return err
		}
		assert.Equal(t, "70.00", balance.StringFixed(2))
		entry, err = r.Ledger().Append(context.Background(), domain.Transaction{
			UserID:      1,
			Type:        domain.TransactionSpend,
			Amount:      decimal.RequireFromString("30"),
			Description: "General Spend",
		})
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, uint(7), entry.ID)
	assert.Equal(t, st.now(), entry.Timestamp)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicRollsBackOnInsufficientFunds(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\? .*FOR UPDATE").
		WillReturnRows(userRows().AddRow(1, "alice", "hash", "10.00", time.Now()))
	mock.ExpectRollback()

	err := st.Atomic(context.Background(), func(r store.Repositories) error {
		_, err := r.Users().ApplyBalanceDelta(context.Background(), 1, decimal.RequireFromString("-20"))
		return err
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAtomicRollsBackOnLedgerFailure(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT \\* FROM `users` WHERE `users`.`id` = \\? .*FOR UPDATE").
		WillReturnRows(userRows().AddRow(1, "alice", "hash", "100.00", time.Now()))
	mock.ExpectExec("UPDATE `users` SET `balance`=\\?").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO `transactions`").
		WillReturnError(errors.New("disk full"))
	mock.ExpectRollback()

	err := st.Atomic(context.Background(), func(r store.Repositories) error {
		if _, err := r.Users().ApplyBalanceDelta(context.Background(), 1, decimal.RequireFromString("-30")); err != nil {
			return err
		}
		_, err := r.Ledger().Append(context.Background(), domain.Transaction{UserID: 1, Type: domain.TransactionSpend, Amount: decimal.RequireFromString("30")})
		return err
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListTransactionsPagesNewestFirst(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `transactions` WHERE user_id = \\?").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery("SELECT \\* FROM `transactions` WHERE user_id = \\? ORDER BY id desc LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "timestamp", "type", "amount", "description", "item_id"}).
			AddRow(3, 1, time.Now(), "BUY", "25.50", "Purchased: Coffee Mug", 2).
			AddRow(2, 1, time.Now(), "SPEND", "30.00", "General Spend", nil))

	userID := uint(1)
	txs, total, err := st.Ledger().ListTransactions(context.Background(), store.TransactionFilter{
		UserID:     &userID,
		Limit:      2,
		Descending: true,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TransactionBuy, txs[0].Type)
	require.NotNil(t, txs[0].ItemID)
	assert.Equal(t, uint(2), *txs[0].ItemID)
	assert.Nil(t, txs[1].ItemID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCloseClosesPool(t *testing.T) {
	st, mock := newMockStore(t)
	mock.ExpectClose()
	require.NoError(t, st.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}
