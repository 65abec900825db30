// Package postgres implements storage.Repository backed by PostgreSQL.
//
// The customers and customer_security_questions tables use bigserial primary
// keys, so the "insertion order" the recovery flow depends on is simply
// ascending id. Email lookup is a case-sensitive exact match against the
// unique email column.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kmercer/storegate/account"
	"github.com/kmercer/storegate/storage"
)

// Store implements storage.Repository backed by PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns a Repository backed by the given pgx connection pool.
func NewRepository(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// NewRepositoryFromDSN creates a connection pool from a DSN string, ensures
// the schema exists, and returns a new Repository.
func NewRepositoryFromDSN(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}
	return NewRepository(pool), nil
}

// Pool returns the underlying connection pool.
func (s *Store) Pool() *pgxpool.Pool {
	return s.pool
}

// Close closes the underlying connection pool.
func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customers (email, password_hash, active)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`,
		a.Email, a.PasswordHash, a.Active).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	var a account.Account
	err := s.pool.QueryRow(ctx,
		`SELECT id, email, password_hash, active, created_at
		 FROM customers WHERE email = $1`,
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.Active, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("account %q: %w", email, storage.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) AddSecurityQuestion(ctx context.Context, q *account.SecurityQuestion) error {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO customer_security_questions (customer_id, question, answer_hash)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		q.AccountID, q.Text, q.AnswerHash).Scan(&q.ID)
	if err != nil {
		return fmt.Errorf("adding security question: %w", err)
	}
	return nil
}

func (s *Store) SecurityQuestions(ctx context.Context, accountID int64, limit int) ([]account.SecurityQuestion, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, customer_id, question, answer_hash
		 FROM customer_security_questions
		 WHERE customer_id = $1
		 ORDER BY id
		 LIMIT $2`,
		accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var qs []account.SecurityQuestion
	for rows.Next() {
		var q account.SecurityQuestion
		if err := rows.Scan(&q.ID, &q.AccountID, &q.Text, &q.AnswerHash); err != nil {
			return nil, err
		}
		qs = append(qs, q)
	}
	return qs, rows.Err()
}

func (s *Store) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE customers SET password_hash = $2 WHERE id = $1`,
		accountID, passwordHash)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %d: %w", accountID, storage.ErrNotFound)
	}
	return nil
}
