package api

import (
	"time"

	"github.com/kmercer/storegate/recovery"
)

// Session holds the server-side state keyed by the browser session cookie:
// the logged-in customer (if any) and the recovery-flow state.
type Session struct {
	AccountID      int64            `json:"account_id,omitempty"`
	Recovery       recovery.Session `json:"recovery"`
	ExpiresAt      time.Time        `json:"expires_at"`
	LastAccessedAt time.Time        `json:"last_accessed_at"`
}

// SessionStore abstracts session CRUD so that sessions can be stored
// in-memory (default) or in persistent backing storage.
type SessionStore interface {
	// Get retrieves a session by token. Returns false if the session does
	// not exist or has expired.
	Get(token string) (Session, bool)
	// Put creates or updates a session for the given token.
	Put(token string, session Session)
	// Delete removes a session by token.
	Delete(token string)
	// DeleteAccount removes every session logged in as the given account.
	// Used by the password-reset step to invalidate active logins.
	DeleteAccount(accountID int64)
}
