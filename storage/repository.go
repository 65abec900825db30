// Package storage provides the datastore abstraction for customer accounts
// and their security-question associations.
package storage

import (
	"context"
	"errors"

	"github.com/kmercer/storegate/account"
)

// ErrNotFound is returned when no record matches the lookup key.
var ErrNotFound = errors.New("record not found")

// Repository defines the account datastore operations used by the recovery
// flow and the authentication handlers.
//
// Lookup by email is a case-sensitive exact match, consistent with the
// datastore's collation. SecurityQuestions returns associations in insertion
// order (ascending internal id), capped at limit.
type Repository interface {
	CreateAccount(ctx context.Context, a *account.Account) error
	AccountByEmail(ctx context.Context, email string) (*account.Account, error)
	AddSecurityQuestion(ctx context.Context, q *account.SecurityQuestion) error
	SecurityQuestions(ctx context.Context, accountID int64, limit int) ([]account.SecurityQuestion, error)
	UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error
}
