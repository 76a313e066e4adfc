package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostgresAccountStore(t *testing.T) {
	userID := uuid.New()

	t.Run("FindByKey returns match", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID := uuid.New()
		now := time.Now()
		mock.ExpectQuery(`SELECT id, user_id, name, currency, created_at\s+FROM accounts`).
			WithArgs(userID, "HDFC", "INR").
			WillReturnRows(pgxmock.NewRows([]string{"id", "user_id", "name", "currency", "created_at"}).
				AddRow(accountID, userID, "HDFC", "INR", now))

		store := NewPostgresAccountStore(mock)
		account, err := store.FindByKey(context.Background(), userID, "HDFC", "INR")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, "HDFC", account.Name)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("FindByKey absent is nil, nil", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`FROM accounts`).
			WithArgs(userID, "HDFC", "INR").
			WillReturnError(pgx.ErrNoRows)

		store := NewPostgresAccountStore(mock)
		account, err := store.FindByKey(context.Background(), userID, "HDFC", "INR")
		require.NoError(t, err)
		assert.Nil(t, account)
	})

	t.Run("Create returns generated id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		accountID := uuid.New()
		mock.ExpectQuery(`INSERT INTO accounts`).
			WithArgs(userID, "HDFC", "INR").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(accountID, time.Now()))

		store := NewPostgresAccountStore(mock)
		account, err := store.Create(context.Background(), userID, "HDFC", "INR")
		require.NoError(t, err)
		assert.Equal(t, accountID, account.ID)
		assert.Equal(t, userID, account.UserID)
	})

	t.Run("Create surfaces unique violation", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(`INSERT INTO accounts`).
			WithArgs(userID, "HDFC", "INR").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		store := NewPostgresAccountStore(mock)
		_, err = store.Create(context.Background(), userID, "HDFC", "INR")
		require.Error(t, err)
		assert.True(t, IsUniqueViolation(err))
	})
}

func TestPostgresCategoryStore(t *testing.T) {
	userID := uuid.New()

	t.Run("round trip", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		categoryID := uuid.New()
		mock.ExpectQuery(`INSERT INTO categories`).
			WithArgs(userID, "Salary", "Income").
			WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow(categoryID, time.Now()))

		store := NewPostgresCategoryStore(mock)
		category, err := store.Create(context.Background(), userID, "Salary", "Income")
		require.NoError(t, err)
		assert.Equal(t, categoryID, category.ID)
		assert.Equal(t, "Income", category.Mode)
	})
}

func TestPostgresTransactionStore(t *testing.T) {
	t.Run("Insert fills id", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		tx := &Transaction{
			UserID:      uuid.New(),
			AccountID:   uuid.New(),
			CategoryID:  uuid.New(),
			Mode:        "Income",
			Currency:    "INR",
			AmountMinor: 5000000,
			PostedOn:    time.Date(2024, 4, 12, 0, 0, 0, 0, time.UTC),
			Description: "pay",
		}

		txID := uuid.New()
		mock.ExpectQuery(`INSERT INTO transactions`).
			WithArgs(tx.UserID, tx.AccountID, tx.CategoryID, tx.Mode, tx.Currency,
				tx.AmountMinor, tx.PostedOn, tx.Description).
			WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(txID))

		store := NewPostgresTransactionStore(mock)
		require.NoError(t, store.Insert(context.Background(), tx))
		assert.Equal(t, txID, tx.ID)
	})
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, IsUniqueViolation(pgx.ErrNoRows))
	assert.False(t, IsUniqueViolation(nil))
}
