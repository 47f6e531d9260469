package models

import "time"

// SessionStatus describes the lifecycle state of an interview session.
// Transitions are owned by the state machine; nothing else writes status.
type SessionStatus string

const (
	StatusScheduled  SessionStatus = "scheduled"
	StatusInProgress SessionStatus = "in-progress"
	StatusCompleted  SessionStatus = "completed"
	StatusTimedOut   SessionStatus = "timed-out"
)

// Terminal reports whether no further status transition is permitted.
func (s SessionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusTimedOut
}

// Question is one entry of the fixed question set generated at creation.
type Question struct {
	Question       string `bson:"question" json:"question"`
	ExpectedAnswer string `bson:"expectedAnswer,omitempty" json:"expectedAnswer,omitempty"`
}

// Response is one scored answer. questionIndex is caller-supplied and not
// unique: re-answering appends a second entry rather than replacing the
// first, and feedback attaches to the first match only.
type Response struct {
	QuestionIndex  int       `bson:"questionIndex" json:"questionIndex"`
	Question       string    `bson:"question" json:"question"`
	ExpectedAnswer string    `bson:"expectedAnswer,omitempty" json:"expectedAnswer,omitempty"`
	UserAnswer     string    `bson:"userAnswer" json:"userAnswer"`
	Feedback       string    `bson:"feedback,omitempty" json:"feedback,omitempty"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

type InteractionKind string

const (
	InteractionQuery    InteractionKind = "query"
	InteractionFeedback InteractionKind = "feedback"
)

// Interaction is one free-form AI exchange. The trail is append-only and
// never read back into interview flow logic; completion depends on
// responses alone.
type Interaction struct {
	Kind          InteractionKind `bson:"type" json:"type"`
	UserQuery     string          `bson:"userQuery,omitempty" json:"userQuery,omitempty"`
	AIResponse    string          `bson:"aiResponse" json:"aiResponse"`
	QuestionIndex *int            `bson:"questionIndex,omitempty" json:"questionIndex,omitempty"`
	Timestamp     time.Time       `bson:"timestamp" json:"timestamp"`
}

// InterviewSession is one interview attempt.
type InterviewSession struct {
	ID             string        `bson:"_id" json:"id"`
	UserID         string        `bson:"userId" json:"userId"`
	JobTitle       string        `bson:"jobTitle,omitempty" json:"jobTitle,omitempty"`
	JobDescription string        `bson:"jobDescription,omitempty" json:"jobDescription,omitempty"`
	ResumeURL      string        `bson:"resumeUrl,omitempty" json:"resumeUrl,omitempty"`
	Questions      []Question    `bson:"questions" json:"questions"`
	Status         SessionStatus `bson:"status" json:"status"`

	// StartTime is first-write-wins: set at creation or on the first
	// transition to in-progress, immutable after that.
	StartTime        *time.Time `bson:"startTime,omitempty" json:"startTime,omitempty"`
	LastActivityTime *time.Time `bson:"lastActivityTime,omitempty" json:"lastActivityTime,omitempty"`
	// EndTime is set exactly once, on the transition to a terminal state.
	EndTime       *time.Time `bson:"endTime,omitempty" json:"endTime,omitempty"`
	IsTimedOut    bool       `bson:"isTimedOut" json:"isTimedOut"`
	TimeoutReason string     `bson:"timeoutReason,omitempty" json:"timeoutReason,omitempty"`

	Responses      []Response    `bson:"responses,omitempty" json:"responses,omitempty"`
	AIInteractions []Interaction `bson:"aiInteractions,omitempty" json:"aiInteractions,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
