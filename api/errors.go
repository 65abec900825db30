package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kmercer/storegate/recovery"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func successStatus(title, message string) *Status {
	return &Status{Type: "success", Title: title, Message: message}
}

func dangerStatus(title, message string, errs ...string) *Status {
	return &Status{Type: "danger", Title: title, Message: message, Errors: errs}
}

// recoveryFailure maps a flow error to its display payload and HTTP status.
// The email-stage failures keep their distinct messages (invalid syntax, no
// account, inactive account are three different things to the customer);
// datastore failures collapse into one generic message that does not
// distinguish the underlying cause.
func recoveryFailure(err error) (*Status, int) {
	switch {
	case errors.Is(err, recovery.ErrInvalidEmail):
		return dangerStatus("Invalid email", "That does not look like a valid email address.",
			"Enter the email address you registered with."), http.StatusBadRequest
	case errors.Is(err, recovery.ErrNoAccount):
		return dangerStatus("No account found", "No account is registered for that email address."),
			http.StatusNotFound
	case errors.Is(err, recovery.ErrInactiveAccount):
		return dangerStatus("Account inactive", "This account has been deactivated. Contact customer service to restore it."),
			http.StatusForbidden
	case errors.Is(err, recovery.ErrInsufficientQuestions):
		return dangerStatus("Recovery unavailable", "This account does not have enough security questions on file to recover a password online."),
			http.StatusUnprocessableEntity
	case errors.Is(err, recovery.ErrMissingAnswers):
		s := dangerStatus("Missing answers", "Answer both security questions.")
		s.ClearAnswers = true
		return s, http.StatusBadRequest
	case errors.Is(err, recovery.ErrAnswerMismatch):
		s := dangerStatus("Wrong answers", "One or both answers were wrong. Try again.")
		s.ClearAnswers = true
		return s, http.StatusUnauthorized
	case errors.Is(err, recovery.ErrSessionExpired):
		return dangerStatus("Session expired", "Your recovery session has expired. Start over with your email address."),
			http.StatusGone
	default:
		return dangerStatus("Something went wrong", "Something went wrong, please try again."),
			http.StatusServiceUnavailable
	}
}
