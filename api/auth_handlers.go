package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/kmercer/storegate/account"
	"github.com/kmercer/storegate/recovery"
	"github.com/kmercer/storegate/storage"
)

// Login handles POST /auth/login. Form fields: email, password, redirect.
// The redirect parameter passes through the same sanitizer as the recovery
// flow's.
func (a *API) Login(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodySize)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, StatusResponse{
			Status: *dangerStatus("Bad request", "The submitted form could not be read."),
		})
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")
	if email == "" || password == "" {
		writeJSON(w, http.StatusBadRequest, StatusResponse{
			Status: *dangerStatus("Missing credentials", "Email and password are required."),
		})
		return
	}

	acct, err := a.repo.AccountByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			a.audit.logFailure(AuditLoginFailure, r, "account not found")
			writeJSON(w, http.StatusUnauthorized, StatusResponse{
				Status: *dangerStatus("Login failed", "Invalid email or password."),
			})
			return
		}
		writeJSON(w, http.StatusServiceUnavailable, StatusResponse{
			Status: *dangerStatus("Something went wrong", "Something went wrong, please try again."),
		})
		return
	}
	if !account.VerifyPassword(acct.PasswordHash, password) {
		a.audit.logFailure(AuditLoginFailure, r, "wrong password")
		writeJSON(w, http.StatusUnauthorized, StatusResponse{
			Status: *dangerStatus("Login failed", "Invalid email or password."),
		})
		return
	}
	if !acct.Active {
		a.audit.logFailure(AuditLoginFailure, r, "account inactive")
		writeJSON(w, http.StatusForbidden, StatusResponse{
			Status: *dangerStatus("Account inactive", "This account has been deactivated. Contact customer service to restore it."),
		})
		return
	}

	// Rotate the session token on login; any anonymous recovery state is
	// intentionally dropped with the old session.
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		a.sessions.Delete(cookie.Value)
	}
	token := uuid.NewString()
	now := time.Now()
	a.sessions.Put(token, Session{
		AccountID:      acct.ID,
		Recovery:       recovery.Session{Stage: recovery.StageEmail},
		ExpiresAt:      now.Add(sessionDuration),
		LastAccessedAt: now,
	})
	writeSessionCookie(w, r, token, now.Add(sessionDuration))

	a.audit.logEvent(AuditLoginSuccess, r, acct.ID)
	status := successStatus("Logged in", "Welcome back.")
	if dest := recovery.SanitizeRedirect(r.PostFormValue("redirect")); dest != "" {
		status.Redirect = dest
	} else {
		status.Redirect = "/"
	}
	writeJSON(w, http.StatusOK, StatusResponse{Status: *status})
}

// Logout handles POST /auth/logout.
func (a *API) Logout(w http.ResponseWriter, r *http.Request) {
	var accountID int64
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if session, ok := a.sessions.Get(cookie.Value); ok {
			accountID = session.AccountID
		}
		a.sessions.Delete(cookie.Value)
	}
	clearSessionCookie(w, r)
	a.audit.logEvent(AuditLogout, r, accountID)
	writeJSON(w, http.StatusOK, StatusResponse{
		Status: *successStatus("Logged out", "You have been logged out."),
	})
}
