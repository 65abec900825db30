package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/kmercer/storegate/recovery"
)

const (
	sessionCookieName = "storegate_session"
	sessionDuration   = 24 * time.Hour
)

// ensureSession returns the session bound to the request's cookie, creating
// a fresh anonymous session (and setting the cookie) when none exists or the
// existing one has expired. Callers must Put the session back after mutating
// it — each stage either fully transitions state or leaves it unchanged.
func (a *API) ensureSession(w http.ResponseWriter, r *http.Request) (string, Session) {
	if cookie, err := r.Cookie(sessionCookieName); err == nil && cookie.Value != "" {
		if session, ok := a.sessions.Get(cookie.Value); ok {
			session.LastAccessedAt = time.Now()
			return cookie.Value, session
		}
	}
	token := uuid.NewString()
	session := Session{
		Recovery:       recovery.Session{Stage: recovery.StageEmail},
		ExpiresAt:      time.Now().Add(sessionDuration),
		LastAccessedAt: time.Now(),
	}
	writeSessionCookie(w, r, token, session.ExpiresAt)
	return token, session
}

func writeSessionCookie(w http.ResponseWriter, r *http.Request, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  expiresAt,
	})
}

func clearSessionCookie(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   requestIsSecure(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

func requestIsSecure(r *http.Request) bool {
	if r.TLS != nil {
		return true
	}
	if strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Forwarded")), "proto=https")
}
