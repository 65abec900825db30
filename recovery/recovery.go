// Package recovery implements the password-recovery verification flow: a
// linear, session-scoped process that takes a customer from an email
// submission through security-question verification to a time-boxed reset
// authorization.
//
// The flow moves strictly forward (email → verify → verified), with a single
// "start over" escape that clears all flow state. There is no concurrency:
// each request exclusively owns the session record it mutates.
package recovery

import "time"

// Stage identifies where a session is in the recovery flow. The zero value
// ("") is treated as StageEmail everywhere.
type Stage string

const (
	StageEmail    Stage = "email"
	StageVerify   Stage = "verify"
	StageVerified Stage = "verified"
)

// QuestionCount is the number of security-question associations required to
// enter and pass verification. Exactly this many pending questions exist in
// any session sitting at StageVerify.
const QuestionCount = 2

// Question is one pending challenge held in session state while the customer
// is at StageVerify. AnswerHash lives only in server-side session storage and
// must never be rendered to a client.
type Question struct {
	ID         int64  `json:"id"`
	Text       string `json:"text"`
	AnswerHash string `json:"answer_hash"`
}

// Authorization is the time-boxed permission to change one password, created
// only by a successful verification. Redirect carries the sanitized
// post-recovery destination captured at flow start.
type Authorization struct {
	AccountID int64     `json:"account_id"`
	Redirect  string    `json:"redirect,omitempty"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Session is the flow state held in server-side session storage. It is
// created implicitly on the first submission, mutated at each stage
// transition, and destroyed on explicit restart, successful password change,
// or authorization expiry.
type Session struct {
	Stage         Stage          `json:"stage,omitempty"`
	AccountID     int64          `json:"account_id,omitempty"`
	Email         string         `json:"email,omitempty"`
	Questions     []Question     `json:"questions,omitempty"`
	Redirect      string         `json:"redirect,omitempty"`
	Authorization *Authorization `json:"authorization,omitempty"`
}

// Restart clears all flow state and returns the session to StageEmail.
// No stale state survives: pending questions and any reset authorization are
// dropped together.
func (s *Session) Restart() {
	*s = Session{Stage: StageEmail}
}

// verifiable reports whether the session state is self-consistent with
// StageVerify: a positive account id, a non-empty email, and exactly
// QuestionCount pending questions.
func (s *Session) verifiable() bool {
	return s.AccountID > 0 && s.Email != "" && len(s.Questions) == QuestionCount
}
