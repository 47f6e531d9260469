package models

// uniform error responses
type ErrorResponse struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Details []ValidationErrorDetail `json:"details,omitempty"`
}

func (e *ErrorResponse) Error() string {
	return e.Message
}

// single field validation error
type ValidationErrorDetail struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// SessionReview is the read model returned to the post-interview review
// screen: scored responses plus the free-form AI exchange trail.
type SessionReview struct {
	InterviewID    string        `json:"interviewId"`
	Status         SessionStatus `json:"status"`
	Responses      []Response    `json:"responses"`
	AIInteractions []Interaction `json:"aiInteractions"`
}

// TimeoutCheckResponse reports the outcome of the lazy expiry check a
// client runs before rendering any question.
type TimeoutCheckResponse struct {
	InterviewID   string        `json:"interviewId"`
	Status        SessionStatus `json:"status"`
	IsTimedOut    bool          `json:"isTimedOut"`
	TimeoutReason string        `json:"timeoutReason,omitempty"`
	RemainingMs   int64         `json:"remainingMs"`
}

// AIQueryResponse is the classified reply returned for an out-of-band
// AI query. The endpoint degrades to a canned clarification instead of
// failing, so its status code is always 200.
type AIQueryResponse struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// GenerateResponse is returned by the question-generation flow. When the
// resume upload succeeded but generation failed, ResumeURL is still set
// and Error carries remediation text; no session is created in that case.
type GenerateResponse struct {
	Success     bool       `json:"success"`
	InterviewID string     `json:"interviewId,omitempty"`
	ResumeURL   string     `json:"resumeUrl,omitempty"`
	Questions   []Question `json:"questions,omitempty"`
	Error       string     `json:"error,omitempty"`
}
