package recovery

import "errors"

// Flow errors. All of them are recoverable: every error path ends in a
// re-rendered form, never a terminated flow.
var (
	// ErrInvalidEmail — the submitted email fails syntax validation.
	ErrInvalidEmail = errors.New("invalid email address")

	// ErrNoAccount — no account matches the submitted email.
	ErrNoAccount = errors.New("no account found for that email")

	// ErrInactiveAccount — the account exists but is flagged inactive.
	ErrInactiveAccount = errors.New("account is inactive")

	// ErrInsufficientQuestions — fewer than QuestionCount security questions
	// are registered on the account, so verification is impossible.
	ErrInsufficientQuestions = errors.New("not enough security questions on account")

	// ErrMissingAnswers — one or both answer fields were empty.
	ErrMissingAnswers = errors.New("both answers are required")

	// ErrAnswerMismatch — at least one answer failed hash verification.
	// Pending questions are retained; the customer may retry.
	ErrAnswerMismatch = errors.New("answers do not match")

	// ErrSessionExpired — session state is inconsistent with the requested
	// stage (direct navigation, tampered form fields, or a genuinely expired
	// session). All flow state is cleared and the flow restarts at the email
	// stage.
	ErrSessionExpired = errors.New("recovery session expired")
)
