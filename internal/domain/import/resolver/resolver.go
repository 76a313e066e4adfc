// Package resolver turns free-text account and category names into
// persisted entity ids, creating entities on first use (get-or-create).
package resolver

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/paisa-app/paisa-api/internal/domain/import/repository"
)

type accountKey struct {
	name     string
	currency string
}

type categoryKey struct {
	name string
	mode string
}

// Resolver memoizes resolutions for the duration of one import request so
// that rows sharing a key hit the store once. Rows are processed strictly
// sequentially, so the memo needs no locking. It must not be shared across
// requests or users.
type Resolver struct {
	accounts   repository.AccountStore
	categories repository.CategoryStore
	userID     uuid.UUID

	accountIDs  map[accountKey]uuid.UUID
	categoryIDs map[categoryKey]uuid.UUID
}

// New creates a resolver scoped to a single user's import request.
func New(accounts repository.AccountStore, categories repository.CategoryStore, userID uuid.UUID) *Resolver {
	return &Resolver{
		accounts:    accounts,
		categories:  categories,
		userID:      userID,
		accountIDs:  make(map[accountKey]uuid.UUID),
		categoryIDs: make(map[categoryKey]uuid.UUID),
	}
}

// Account resolves (userID, name, currency) to an account id, creating the
// account when it does not exist yet. A unique-constraint violation on
// create means a concurrent request won the race; the winner's row is
// fetched and reused instead of failing the import row.
func (r *Resolver) Account(ctx context.Context, name, currency string) (uuid.UUID, error) {
	key := accountKey{name: name, currency: currency}
	if id, ok := r.accountIDs[key]; ok {
		return id, nil
	}

	account, err := r.accounts.FindByKey(ctx, r.userID, name, currency)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up account %q: %w", name, err)
	}

	if account == nil {
		account, err = r.accounts.Create(ctx, r.userID, name, currency)
		if repository.IsUniqueViolation(err) {
			account, err = r.accounts.FindByKey(ctx, r.userID, name, currency)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create account %q: %w", name, err)
		}
		if account == nil {
			return uuid.Nil, fmt.Errorf("account %q vanished during creation", name)
		}
	}

	r.accountIDs[key] = account.ID
	return account.ID, nil
}

// Category resolves (userID, name, mode) to a category id; same
// get-or-create contract as Account.
func (r *Resolver) Category(ctx context.Context, name, mode string) (uuid.UUID, error) {
	key := categoryKey{name: name, mode: mode}
	if id, ok := r.categoryIDs[key]; ok {
		return id, nil
	}

	category, err := r.categories.FindByKey(ctx, r.userID, name, mode)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to look up category %q: %w", name, err)
	}

	if category == nil {
		category, err = r.categories.Create(ctx, r.userID, name, mode)
		if repository.IsUniqueViolation(err) {
			category, err = r.categories.FindByKey(ctx, r.userID, name, mode)
		}
		if err != nil {
			return uuid.Nil, fmt.Errorf("failed to create category %q: %w", name, err)
		}
		if category == nil {
			return uuid.Nil, fmt.Errorf("category %q vanished during creation", name)
		}
	}

	r.categoryIDs[key] = category.ID
	return category.ID, nil
}
