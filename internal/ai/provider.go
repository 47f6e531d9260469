package ai

import (
	"context"
	"time"
)

// QuestionRequest asks the workflow engine to turn a resume or job
// description into an interview question set.
type QuestionRequest struct {
	ResumeURL      string `json:"resumeUrl,omitempty"`
	FileName       string `json:"fileName,omitempty"`
	JobTitle       string `json:"jobTitle,omitempty"`
	JobDescription string `json:"jobDescription,omitempty"`
}

type GeneratedQuestion struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

const (
	RequestTypeUserResponse = "user_response"
	RequestTypeUserQuery    = "user_query"
)

// FeedbackRequest carries one answer or clarification question to the
// workflow engine.
type FeedbackRequest struct {
	Type           string    `json:"type"` // user_response or user_query
	Question       string    `json:"question"`
	ExpectedAnswer string    `json:"expectedAnswer,omitempty"`
	UserResponse   string    `json:"userResponse,omitempty"`
	UserQuery      string    `json:"userQuery,omitempty"`
	InterviewID    string    `json:"interviewId"`
	QuestionIndex  *int      `json:"questionIndex,omitempty"`
	Timestamp      time.Time `json:"timestamp"`
}

// Reply is the raw engine response before classification. Older
// workflows put the text under feedback/hint/message instead of content,
// so all of them are kept.
type Reply struct {
	Type     string `json:"type,omitempty"`
	Content  string `json:"content,omitempty"`
	Feedback string `json:"feedback,omitempty"`
	Hint     string `json:"hint,omitempty"`
	Message  string `json:"message,omitempty"`
}

// defines the interface for AI workflow providers
type Provider interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]GeneratedQuestion, error)
	RespondToAnswer(ctx context.Context, req FeedbackRequest) (*Reply, error)
	GetProviderName() string
}

// represents an error from an AI provider
type ProviderError struct {
	Provider string
	Code     string
	Message  string
	Err      error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return e.Provider + " error: " + e.Message + " (" + e.Err.Error() + ")"
	}
	return e.Provider + " error: " + e.Message
}

func (e *ProviderError) Unwrap() error { return e.Err }

// Common error codes
const (
	ErrCodeAPIKey       = "invalid_api_key"
	ErrCodeServiceDown  = "service_unavailable"
	ErrCodeTimeout      = "timeout"
	ErrCodeMalformed    = "malformed_response"
	ErrCodeInvalidInput = "invalid_input"
)
