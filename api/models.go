package api

// Question is a pending security question as rendered to the client: id and
// text only. The stored answer hash never leaves server-side session state.
type Question struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
}

// Status is the display payload rendered after every stage transition or
// failure. Type is "success" or "danger". Redirect names the next step's
// location where one exists; navigation always requires an explicit user
// action. ClearAnswers tells the presentation layer to blank both answer
// fields — it is presentation-only and not persisted state.
type Status struct {
	Type         string   `json:"type"`
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	Errors       []string `json:"errors,omitempty"`
	Redirect     string   `json:"redirect,omitempty"`
	ClearAnswers bool     `json:"clear_answers,omitempty"`
}

// RecoveryResponse is returned from GET and POST /account/recovery.
type RecoveryResponse struct {
	Stage     string     `json:"stage"`
	Email     string     `json:"email,omitempty"`
	Questions []Question `json:"questions,omitempty"`
	Status    *Status    `json:"status,omitempty"`
}

// StatusResponse is returned from the reset-password and auth endpoints.
type StatusResponse struct {
	Status Status `json:"status"`
}
