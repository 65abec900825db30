package recovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kmercer/storegate/account"
	"github.com/kmercer/storegate/storage"
)

// DefaultResetWindow is how long a reset authorization stays valid after a
// successful verification.
const DefaultResetWindow = 10 * time.Minute

// AccountSource is the read side of the account datastore the flow depends
// on. AccountByEmail returns storage.ErrNotFound when no account matches;
// SecurityQuestions returns associations in insertion order, capped at limit.
type AccountSource interface {
	AccountByEmail(ctx context.Context, email string) (*account.Account, error)
	SecurityQuestions(ctx context.Context, accountID int64, limit int) ([]account.SecurityQuestion, error)
}

// Flow runs the recovery state machine against an account datastore. It holds
// no per-customer state itself; all flow state lives in the Session passed to
// each operation.
type Flow struct {
	accounts AccountSource
	window   time.Duration
	now      func() time.Time
}

// Option configures a Flow.
type Option func(*Flow)

// WithResetWindow overrides the reset-authorization validity window.
func WithResetWindow(d time.Duration) Option {
	return func(f *Flow) { f.window = d }
}

// WithClock overrides the time source. Used by tests to exercise expiry.
func WithClock(now func() time.Time) Option {
	return func(f *Flow) { f.now = now }
}

// NewFlow creates a Flow over the given account source.
func NewFlow(accounts AccountSource, opts ...Option) *Flow {
	f := &Flow{
		accounts: accounts,
		window:   DefaultResetWindow,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// ResolveStage determines the effective stage for a request: the requested
// stage (default StageEmail) validated against the session state.
//
// startOver unconditionally clears the whole session and forces StageEmail,
// regardless of any other input. A request claiming StageVerify or
// StageVerified whose session lacks the matching state is forced back to
// StageEmail — the safety net against direct navigation and tampered form
// fields.
func (f *Flow) ResolveStage(requested string, sess *Session, startOver bool) Stage {
	if startOver {
		sess.Restart()
		return StageEmail
	}
	switch Stage(requested) {
	case StageVerify:
		if !sess.verifiable() {
			return StageEmail
		}
		return StageVerify
	case StageVerified:
		if _, ok := f.Authorization(sess); !ok {
			return StageEmail
		}
		return StageVerified
	default:
		return StageEmail
	}
}

// SubmitEmail runs the email stage: it restarts the flow (re-entering the
// email stage always begins cleanly), validates the address, checks the
// account, and loads the first two security questions into the session.
// On success the session sits at StageVerify.
//
// Failures leave the session at StageEmail. The three account-state failures
// are deliberately distinct: ErrInvalidEmail, ErrNoAccount and
// ErrInactiveAccount each produce their own message downstream.
func (f *Flow) SubmitEmail(ctx context.Context, sess *Session, email, redirect string) error {
	sess.Restart()
	sess.Redirect = SanitizeRedirect(redirect)

	email = strings.TrimSpace(email)
	if !account.ValidEmail(email) {
		return ErrInvalidEmail
	}

	acct, err := f.accounts.AccountByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrNoAccount
		}
		return fmt.Errorf("looking up account: %w", err)
	}
	if !acct.Active {
		return ErrInactiveAccount
	}

	qs, err := f.accounts.SecurityQuestions(ctx, acct.ID, QuestionCount)
	if err != nil {
		return fmt.Errorf("loading security questions: %w", err)
	}
	if len(qs) < QuestionCount {
		return ErrInsufficientQuestions
	}

	sess.Stage = StageVerify
	sess.AccountID = acct.ID
	sess.Email = acct.Email
	sess.Questions = make([]Question, 0, QuestionCount)
	for _, q := range qs[:QuestionCount] {
		sess.Questions = append(sess.Questions, Question{
			ID:         q.ID,
			Text:       q.Text,
			AnswerHash: q.AnswerHash,
		})
	}
	return nil
}

// SubmitAnswers runs the verify stage against the two pending questions.
//
// A session that is not verifiable (direct navigation, tampering, expiry) is
// cleared and ErrSessionExpired returned. Empty answers return
// ErrMissingAnswers and wrong answers ErrAnswerMismatch; both leave the
// pending questions in place, so the customer may retry without limit within
// the same session. There is intentionally no attempt cap — see the package
// documentation on known weaknesses.
//
// On success the session transitions to StageVerified holding a fresh
// Authorization valid for the reset window; pending questions are cleared and
// only the email is retained for display.
func (f *Flow) SubmitAnswers(ctx context.Context, sess *Session, a1, a2 string) error {
	if !sess.verifiable() {
		sess.Restart()
		return ErrSessionExpired
	}
	if strings.TrimSpace(a1) == "" || strings.TrimSpace(a2) == "" {
		return ErrMissingAnswers
	}

	answers := []string{a1, a2}
	ok := true
	for i, q := range sess.Questions {
		if !account.VerifyAnswer(q.AnswerHash, answers[i]) {
			ok = false
		}
	}
	if !ok {
		return ErrAnswerMismatch
	}

	// A new authorization always overwrites any prior one.
	sess.Authorization = &Authorization{
		AccountID: sess.AccountID,
		Redirect:  sess.Redirect,
		ExpiresAt: f.now().Add(f.window),
	}
	sess.Stage = StageVerified
	sess.Questions = nil
	return nil
}

// Authorization returns the session's reset authorization if one exists and
// has not expired. An expired authorization is treated identically to an
// absent one and is purged from the session on read.
func (f *Flow) Authorization(sess *Session) (Authorization, bool) {
	auth := sess.Authorization
	if auth == nil {
		return Authorization{}, false
	}
	if f.now().After(auth.ExpiresAt) {
		sess.Authorization = nil
		if sess.Stage == StageVerified {
			sess.Stage = StageEmail
		}
		return Authorization{}, false
	}
	return *auth, true
}

// Consume destroys the session's flow state after the reset step has used the
// authorization. Replaying the same authorization afterwards behaves exactly
// like an expired session.
func (f *Flow) Consume(sess *Session) {
	sess.Restart()
}
