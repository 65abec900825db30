// Package memory provides an in-memory storage repository for tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/kmercer/storegate/account"
	"github.com/kmercer/storegate/storage"
)

// Store implements storage.Repository backed by process memory.
type Store struct {
	mu        sync.RWMutex
	accounts  map[int64]account.Account
	questions map[int64]account.SecurityQuestion
	nextID    int64
	nextQID   int64
}

var _ storage.Repository = (*Store)(nil)

// NewRepository returns an empty in-memory Repository.
func NewRepository() *Store {
	return &Store{
		accounts:  make(map[int64]account.Account),
		questions: make(map[int64]account.SecurityQuestion),
	}
}

func (s *Store) CreateAccount(ctx context.Context, a *account.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.accounts {
		if existing.Email == a.Email {
			return fmt.Errorf("email %q already registered", a.Email)
		}
	}
	s.nextID++
	a.ID = s.nextID
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	s.accounts[a.ID] = *a
	return nil
}

func (s *Store) AccountByEmail(ctx context.Context, email string) (*account.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, a := range s.accounts {
		if a.Email == email {
			out := a
			return &out, nil
		}
	}
	return nil, fmt.Errorf("account %q: %w", email, storage.ErrNotFound)
}

func (s *Store) AddSecurityQuestion(ctx context.Context, q *account.SecurityQuestion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.accounts[q.AccountID]; !ok {
		return fmt.Errorf("account %d: %w", q.AccountID, storage.ErrNotFound)
	}
	s.nextQID++
	q.ID = s.nextQID
	s.questions[q.ID] = *q
	return nil
}

func (s *Store) SecurityQuestions(ctx context.Context, accountID int64, limit int) ([]account.SecurityQuestion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var qs []account.SecurityQuestion
	for _, q := range s.questions {
		if q.AccountID == accountID {
			qs = append(qs, q)
		}
	}
	// Insertion order: IDs are assigned monotonically.
	sort.Slice(qs, func(i, j int) bool { return qs[i].ID < qs[j].ID })
	if limit > 0 && len(qs) > limit {
		qs = qs[:limit]
	}
	return qs, nil
}

func (s *Store) UpdatePassword(ctx context.Context, accountID int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.accounts[accountID]
	if !ok {
		return fmt.Errorf("account %d: %w", accountID, storage.ErrNotFound)
	}
	a.PasswordHash = passwordHash
	s.accounts[accountID] = a
	return nil
}
