package models

import (
	"strconv"
	"strings"
)

// CreateInterviewRequest stores a pre-generated question set as a new
// scheduled session.
type CreateInterviewRequest struct {
	UserID         string     `json:"userId"`
	JobTitle       string     `json:"jobTitle"`
	JobDescription string     `json:"jobDescription"`
	ResumeURL      string     `json:"resumeUrl"`
	Questions      []Question `json:"questions"`
}

// implements the Validator interface
func (r *CreateInterviewRequest) Validate() error {
	if strings.TrimSpace(r.UserID) == "" {
		return &ErrorResponse{Code: "missing_user", Message: "userId is required"}
	}
	if len(r.Questions) == 0 {
		return &ErrorResponse{Code: "missing_questions", Message: "questions array must not be empty"}
	}
	for i, q := range r.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return &ErrorResponse{
				Code:    "invalid_question",
				Message: "every question needs text",
				Details: []ValidationErrorDetail{{Field: "questions", Reason: "empty question at index " + strconv.Itoa(i)}},
			}
		}
	}
	return nil
}

type RecordAnswerRequest struct {
	QuestionIndex  *int   `json:"questionIndex"`
	Question       string `json:"question"`
	ExpectedAnswer string `json:"expectedAnswer"`
	UserAnswer     string `json:"userAnswer"`
}

func (r *RecordAnswerRequest) Validate() error {
	if r.QuestionIndex == nil {
		return &ErrorResponse{Code: "missing_question_index", Message: "questionIndex is required"}
	}
	if *r.QuestionIndex < 0 {
		return &ErrorResponse{Code: "invalid_question_index", Message: "questionIndex must not be negative"}
	}
	if strings.TrimSpace(r.UserAnswer) == "" {
		return &ErrorResponse{Code: "empty_answer", Message: "userAnswer must not be empty"}
	}
	if strings.TrimSpace(r.Question) == "" {
		return &ErrorResponse{Code: "missing_question", Message: "question text is required"}
	}
	return nil
}

type AttachFeedbackRequest struct {
	Feedback string `json:"feedback"`
}

func (r *AttachFeedbackRequest) Validate() error {
	if strings.TrimSpace(r.Feedback) == "" {
		return &ErrorResponse{Code: "empty_feedback", Message: "feedback must not be empty"}
	}
	return nil
}

type LogInteractionRequest struct {
	Kind          InteractionKind `json:"type"`
	UserQuery     string          `json:"userQuery"`
	AIResponse    string          `json:"aiResponse"`
	QuestionIndex *int            `json:"questionIndex"`
}

func (r *LogInteractionRequest) Validate() error {
	if r.Kind != InteractionQuery && r.Kind != InteractionFeedback {
		return &ErrorResponse{Code: "invalid_interaction_type", Message: "type must be query or feedback"}
	}
	if strings.TrimSpace(r.AIResponse) == "" {
		return &ErrorResponse{Code: "missing_ai_response", Message: "aiResponse is required"}
	}
	if r.Kind == InteractionQuery && strings.TrimSpace(r.UserQuery) == "" {
		return &ErrorResponse{Code: "missing_user_query", Message: "userQuery is required for query interactions"}
	}
	return nil
}

// UpdateStatusRequest drives an explicit state-machine transition from
// the HTTP surface.
type UpdateStatusRequest struct {
	Status SessionStatus `json:"status"`
	Reason string        `json:"reason"`
}

func (r *UpdateStatusRequest) Validate() error {
	switch r.Status {
	case StatusInProgress, StatusCompleted, StatusTimedOut:
		return nil
	case StatusScheduled:
		return &ErrorResponse{Code: "invalid_status", Message: "sessions cannot transition back to scheduled"}
	default:
		return &ErrorResponse{Code: "invalid_status", Message: "status must be in-progress, completed or timed-out"}
	}
}

// AIQueryRequest is the out-of-band clarification request a client sends
// while a question is open.
type AIQueryRequest struct {
	InterviewID   string `json:"interviewId"`
	UserQuery     string `json:"userQuery"`
	QuestionIndex *int   `json:"questionIndex"`
}

func (r *AIQueryRequest) Validate() error {
	if strings.TrimSpace(r.InterviewID) == "" {
		return &ErrorResponse{Code: "missing_interview_id", Message: "interviewId is required"}
	}
	if strings.TrimSpace(r.UserQuery) == "" {
		return &ErrorResponse{Code: "empty_query", Message: "userQuery must not be empty"}
	}
	if r.QuestionIndex != nil && *r.QuestionIndex < 0 {
		return &ErrorResponse{Code: "invalid_question_index", Message: "questionIndex must not be negative"}
	}
	return nil
}
