// Package account holds the customer-account domain model shared by the
// recovery flow, the storage backends, and the HTTP layer.
package account

import "time"

// MinPasswordLength is the minimum accepted password length for login
// credentials set through the reset step.
const MinPasswordLength = 8

// Account is a storefront customer account. PasswordHash and the answer
// hashes on the security questions are salted argon2id encodings; no
// reversible secret is ever stored.
type Account struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"active"`
	CreatedAt    time.Time `json:"created_at"`
}

// SecurityQuestion is one challenge/answer association on an account. The
// answer survives only as a salted hash of its normalized form. Questions are
// ordered by ID, which follows insertion order.
type SecurityQuestion struct {
	ID         int64  `json:"id"`
	AccountID  int64  `json:"account_id"`
	Text       string `json:"text"`
	AnswerHash string `json:"-"`
}
