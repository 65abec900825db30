package api

import (
	"sync"
	"time"
)

// MemorySessionStore is the default SessionStore: a mutex-guarded map.
// Sessions do not survive a restart.
type MemorySessionStore struct {
	mu   sync.RWMutex
	data map[string]Session
}

var _ SessionStore = (*MemorySessionStore)(nil)

// NewMemorySessionStore returns an empty in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{data: make(map[string]Session)}
}

func (s *MemorySessionStore) Get(token string) (Session, bool) {
	s.mu.RLock()
	session, ok := s.data[token]
	s.mu.RUnlock()
	if !ok {
		return Session{}, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.Delete(token)
		return Session{}, false
	}
	return session, true
}

func (s *MemorySessionStore) Put(token string, session Session) {
	s.mu.Lock()
	s.data[token] = session
	s.mu.Unlock()
}

func (s *MemorySessionStore) Delete(token string) {
	s.mu.Lock()
	delete(s.data, token)
	s.mu.Unlock()
}

func (s *MemorySessionStore) DeleteAccount(accountID int64) {
	if accountID <= 0 {
		return
	}
	s.mu.Lock()
	for token, session := range s.data {
		if session.AccountID == accountID {
			delete(s.data, token)
		}
	}
	s.mu.Unlock()
}
