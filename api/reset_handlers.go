package api

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/kmercer/storegate/account"
	"github.com/kmercer/storegate/recovery"
)

// loginPath is the login entry point the reset step redirects back to.
const loginPath = "/auth/login"

// ResetPassword handles POST /account/reset-password. It consumes the reset
// authorization created by a successful verification: absent or expired
// authorization rejects the attempt and requires restarting the recovery
// flow from the email stage. A valid authorization permits exactly one
// password change.
func (a *API) ResetPassword(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodySize)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{
			Status: *dangerStatus("Bad request", "The submitted form could not be read."),
		})
		return
	}

	token, session := a.ensureSession(w, r)

	auth, ok := a.flow.Authorization(&session.Recovery)
	if !ok {
		session.Recovery.Restart()
		a.sessions.Put(token, session)
		a.audit.logFailure(AuditPasswordResetRejected, r, "authorization absent or expired")
		writeJSON(w, http.StatusGone, StatusResponse{
			Status: *dangerStatus("Reset window expired",
				"Your reset window has expired. Start the recovery process over with your email address."),
		})
		return
	}

	password := r.PostFormValue("password")
	confirm := r.PostFormValue("confirm")
	var errs []string
	if len(password) < account.MinPasswordLength {
		errs = append(errs, fmt.Sprintf("Password must be at least %d characters.", account.MinPasswordLength))
	}
	if password != confirm {
		errs = append(errs, "Passwords do not match.")
	}
	if len(errs) > 0 {
		// Validation failures do not consume the authorization.
		a.sessions.Put(token, session)
		writeJSON(w, http.StatusBadRequest, StatusResponse{
			Status: *dangerStatus("Invalid password", "Choose a new password.", errs...),
		})
		return
	}

	hash, err := account.HashPassword(password)
	if err != nil {
		a.sessions.Put(token, session)
		writeJSON(w, http.StatusInternalServerError, StatusResponse{
			Status: *dangerStatus("Something went wrong", "Something went wrong, please try again."),
		})
		return
	}
	if err := a.repo.UpdatePassword(r.Context(), auth.AccountID, hash); err != nil {
		a.sessions.Put(token, session)
		a.audit.logFailure(AuditPasswordResetRejected, r, "datastore update failed")
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{
			Status: *dangerStatus("Something went wrong", "Something went wrong, please try again."),
		})
		return
	}

	// Invalidate every login session tied to the account, then destroy the
	// flow state — the authorization is single-use.
	a.sessions.DeleteAccount(auth.AccountID)
	a.flow.Consume(&session.Recovery)
	a.sessions.Put(token, session)

	a.audit.logEvent(AuditPasswordResetSuccess, r, auth.AccountID)
	status := successStatus("Password updated", "Your password has been changed. Log in with your new password.")
	status.Redirect = loginRedirect(auth.Redirect)
	writeJSON(w, http.StatusOK, StatusResponse{Status: *status})
}

// loginRedirect builds the login entry URL carrying the password-updated
// notice and, when one survived sanitization, the originally captured
// post-recovery destination. The destination is re-validated here — the
// sanitizer rule applies everywhere, no exceptions.
func loginRedirect(captured string) string {
	loc := loginPath + "?notice=password_updated"
	if dest := recovery.SanitizeRedirect(captured); dest != "" {
		loc += "&redirect=" + url.QueryEscape(dest)
	}
	return loc
}
