package api

import (
	"log/slog"
	"net/http"

	"github.com/kmercer/storegate/recovery"
)

const maxFormBodySize = 64 * 1024

// Recovery handles POST /account/recovery. Form fields: stage
// ("email"|"verify", default "email"), email, a1, a2, redirect, startover.
func (a *API) Recovery(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBodySize)
	if err := r.ParseForm(); err != nil {
		writeJSON(w, http.StatusBadRequest, RecoveryResponse{
			Stage:  string(recovery.StageEmail),
			Status: dangerStatus("Bad request", "The submitted form could not be read."),
		})
		return
	}

	token, session := a.ensureSession(w, r)

	// The explicit escape hatch: wipe everything and return to the email
	// form, regardless of any other input — even mid-VERIFIED.
	if formFlag(r.PostFormValue("startover")) {
		a.flow.ResolveStage("", &session.Recovery, true)
		a.sessions.Put(token, session)
		a.audit.log(AuditRecoveryRestarted, r)
		writeJSON(w, http.StatusOK, RecoveryResponse{Stage: string(recovery.StageEmail)})
		return
	}

	switch recovery.Stage(r.PostFormValue("stage")) {
	case recovery.StageVerify:
		a.recoveryVerify(w, r, token, session)
	default:
		a.recoveryEmail(w, r, token, session)
	}
}

func (a *API) recoveryEmail(w http.ResponseWriter, r *http.Request, token string, session Session) {
	email := r.PostFormValue("email")
	err := a.flow.SubmitEmail(r.Context(), &session.Recovery, email, r.PostFormValue("redirect"))
	a.sessions.Put(token, session)
	if err != nil {
		status, code := recoveryFailure(err)
		a.audit.logFailure(AuditRecoveryEmailRejected, r, err.Error())
		writeJSON(w, code, RecoveryResponse{
			Stage:  string(recovery.StageEmail),
			Status: status,
		})
		return
	}

	a.audit.logEvent(AuditRecoveryEmailAccepted, r, session.Recovery.AccountID)
	status := successStatus("Security questions", "Answer both of your security questions to continue.")
	writeJSON(w, http.StatusOK, RecoveryResponse{
		Stage:     string(recovery.StageVerify),
		Email:     session.Recovery.Email,
		Questions: publicQuestions(session.Recovery.Questions),
		Status:    status,
	})
}

func (a *API) recoveryVerify(w http.ResponseWriter, r *http.Request, token string, session Session) {
	err := a.flow.SubmitAnswers(r.Context(), &session.Recovery, r.PostFormValue("a1"), r.PostFormValue("a2"))
	a.sessions.Put(token, session)
	if err != nil {
		status, code := recoveryFailure(err)
		a.audit.logFailure(AuditRecoveryAnswersRejected, r, err.Error(),
			slog.Int64("account_id", session.Recovery.AccountID))
		resp := RecoveryResponse{
			Stage:  string(session.Recovery.Stage),
			Status: status,
		}
		// Failed attempts re-render the same two questions; the session
		// keeps them, so the customer can retry.
		if session.Recovery.Stage == recovery.StageVerify {
			resp.Email = session.Recovery.Email
			resp.Questions = publicQuestions(session.Recovery.Questions)
		}
		writeJSON(w, code, resp)
		return
	}

	a.audit.logEvent(AuditRecoveryVerified, r, session.Recovery.Authorization.AccountID)
	status := successStatus("Identity verified", "You can now choose a new password.")
	status.Redirect = "/account/reset-password"
	writeJSON(w, http.StatusOK, RecoveryResponse{
		Stage:  string(recovery.StageVerified),
		Email:  session.Recovery.Email,
		Status: status,
	})
}

// RecoveryState handles GET /account/recovery: it re-renders the current
// stage. An inconsistent session is silently forced back to the email stage.
func (a *API) RecoveryState(w http.ResponseWriter, r *http.Request) {
	token, session := a.ensureSession(w, r)
	stage := a.flow.ResolveStage(string(session.Recovery.Stage), &session.Recovery, false)
	if stage != session.Recovery.Stage {
		session.Recovery.Restart()
	}
	a.sessions.Put(token, session)

	resp := RecoveryResponse{Stage: string(stage)}
	if stage == recovery.StageVerify || stage == recovery.StageVerified {
		resp.Email = session.Recovery.Email
	}
	if stage == recovery.StageVerify {
		resp.Questions = publicQuestions(session.Recovery.Questions)
	}
	writeJSON(w, http.StatusOK, resp)
}

// publicQuestions strips answer hashes: only id and text ever reach a client.
func publicQuestions(qs []recovery.Question) []Question {
	out := make([]Question, 0, len(qs))
	for _, q := range qs {
		out = append(out, Question{ID: q.ID, Text: q.Text})
	}
	return out
}

func formFlag(v string) bool {
	return v != "" && v != "0" && v != "false"
}
