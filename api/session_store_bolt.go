package api

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const sessionSweepInterval = 5 * time.Minute

var sessionBucket = []byte("sessions")

// BoltSessionStore stores sessions in a bbolt database so they survive
// server restarts. Expiry is checked lazily on Get and enforced by a
// periodic background sweep.
type BoltSessionStore struct {
	db       *bbolt.DB
	stopOnce sync.Once
	stopCh   chan struct{}
}

var _ SessionStore = (*BoltSessionStore)(nil)

// NewBoltSessionStore opens (or creates) a bbolt database at path and starts
// the expiry sweep.
func NewBoltSessionStore(path string) (*BoltSessionStore, error) {
	db, err := bbolt.Open(path, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("opening session db: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating session bucket: %w", err)
	}
	s := &BoltSessionStore{
		db:     db,
		stopCh: make(chan struct{}),
	}
	go s.sweepLoop()
	return s, nil
}

// Close stops the sweep goroutine and closes the database.
func (s *BoltSessionStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopCh) })
	return s.db.Close()
}

func (s *BoltSessionStore) Get(token string) (Session, bool) {
	var session Session
	found := false
	_ = s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(sessionBucket).Get([]byte(token))
		if data == nil {
			return nil
		}
		if err := json.Unmarshal(data, &session); err != nil {
			return nil
		}
		found = true
		return nil
	})
	if !found {
		return Session{}, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.Delete(token)
		return Session{}, false
	}
	return session, true
}

func (s *BoltSessionStore) Put(token string, session Session) {
	data, err := json.Marshal(session)
	if err != nil {
		return
	}
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Put([]byte(token), data)
	})
}

func (s *BoltSessionStore) Delete(token string) {
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionBucket).Delete([]byte(token))
	})
}

func (s *BoltSessionStore) DeleteAccount(accountID int64) {
	if accountID <= 0 {
		return
	}
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		c := b.Cursor()
		var stale [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var session Session
			if err := json.Unmarshal(v, &session); err != nil {
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			if session.AccountID == accountID {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *BoltSessionStore) sweepLoop() {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.sweepExpired()
		}
	}
}

func (s *BoltSessionStore) sweepExpired() {
	now := time.Now()
	_ = s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		c := b.Cursor()
		var stale [][]byte
		for k, v := c.First(); k != nil; k, v = c.Next() {
			var session Session
			if err := json.Unmarshal(v, &session); err != nil {
				// Corrupt entry — remove it.
				stale = append(stale, append([]byte(nil), k...))
				continue
			}
			if now.After(session.ExpiresAt) {
				stale = append(stale, append([]byte(nil), k...))
			}
		}
		for _, k := range stale {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
