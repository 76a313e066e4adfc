package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PostgresAccountStore implements AccountStore on pgx.
type PostgresAccountStore struct {
	db DBTX
}

// NewPostgresAccountStore creates a new account store
func NewPostgresAccountStore(db DBTX) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

func (s *PostgresAccountStore) FindByKey(ctx context.Context, userID uuid.UUID, name, currency string) (*Account, error) {
	query := `
		SELECT id, user_id, name, currency, created_at
		FROM accounts
		WHERE user_id = $1 AND name = $2 AND currency = $3
	`
	a := &Account{}
	err := s.db.QueryRow(ctx, query, userID, name, currency).
		Scan(&a.ID, &a.UserID, &a.Name, &a.Currency, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (s *PostgresAccountStore) Create(ctx context.Context, userID uuid.UUID, name, currency string) (*Account, error) {
	query := `
		INSERT INTO accounts (user_id, name, currency)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	a := &Account{UserID: userID, Name: name, Currency: currency}
	if err := s.db.QueryRow(ctx, query, userID, name, currency).Scan(&a.ID, &a.CreatedAt); err != nil {
		return nil, err
	}
	return a, nil
}

// PostgresCategoryStore implements CategoryStore on pgx.
type PostgresCategoryStore struct {
	db DBTX
}

// NewPostgresCategoryStore creates a new category store
func NewPostgresCategoryStore(db DBTX) *PostgresCategoryStore {
	return &PostgresCategoryStore{db: db}
}

func (s *PostgresCategoryStore) FindByKey(ctx context.Context, userID uuid.UUID, name, mode string) (*Category, error) {
	query := `
		SELECT id, user_id, name, mode, created_at
		FROM categories
		WHERE user_id = $1 AND name = $2 AND mode = $3
	`
	c := &Category{}
	err := s.db.QueryRow(ctx, query, userID, name, mode).
		Scan(&c.ID, &c.UserID, &c.Name, &c.Mode, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *PostgresCategoryStore) Create(ctx context.Context, userID uuid.UUID, name, mode string) (*Category, error) {
	query := `
		INSERT INTO categories (user_id, name, mode)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`
	c := &Category{UserID: userID, Name: name, Mode: mode}
	if err := s.db.QueryRow(ctx, query, userID, name, mode).Scan(&c.ID, &c.CreatedAt); err != nil {
		return nil, err
	}
	return c, nil
}

// PostgresTransactionStore implements TransactionStore on pgx.
type PostgresTransactionStore struct {
	db DBTX
}

// NewPostgresTransactionStore creates a new transaction store
func NewPostgresTransactionStore(db DBTX) *PostgresTransactionStore {
	return &PostgresTransactionStore{db: db}
}

func (s *PostgresTransactionStore) Insert(ctx context.Context, tx *Transaction) error {
	query := `
		INSERT INTO transactions (user_id, account_id, category_id, mode, currency, amount_minor, posted_on, description)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`
	return s.db.QueryRow(ctx, query,
		tx.UserID, tx.AccountID, tx.CategoryID, tx.Mode, tx.Currency,
		tx.AmountMinor, tx.PostedOn, tx.Description,
	).Scan(&tx.ID)
}
