// Package repository persists the entities the import pipeline touches:
// accounts, categories, and transactions.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of pgxpool.Pool the stores need. Tests satisfy it
// with pgxmock.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Account is owned by a user and unique per (user, name, currency).
type Account struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Currency  string
	CreatedAt time.Time
}

// Category is owned by a user and unique per (user, name, mode).
type Category struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Name      string
	Mode      string
	CreatedAt time.Time
}

// Transaction is one persisted row of an import.
type Transaction struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	AccountID   uuid.UUID
	CategoryID  uuid.UUID
	Mode        string
	Currency    string
	AmountMinor int64
	PostedOn    time.Time
	Description string
}

// AccountStore looks up and creates accounts by their logical key.
// FindByKey returns (nil, nil) when no account matches.
type AccountStore interface {
	FindByKey(ctx context.Context, userID uuid.UUID, name, currency string) (*Account, error)
	Create(ctx context.Context, userID uuid.UUID, name, currency string) (*Account, error)
}

// CategoryStore is the Account analogue keyed by (user, name, mode).
type CategoryStore interface {
	FindByKey(ctx context.Context, userID uuid.UUID, name, mode string) (*Category, error)
	Create(ctx context.Context, userID uuid.UUID, name, mode string) (*Category, error)
}

// TransactionStore inserts resolved transactions.
type TransactionStore interface {
	Insert(ctx context.Context, tx *Transaction) error
}

// IsUniqueViolation reports whether err is a Postgres unique-constraint
// violation (SQLSTATE 23505). The resolver treats this as "somebody else
// created it first" and re-fetches.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
