package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/Deekshi05/AceAI/internal/models"
)

var (
	ErrSessionNotFound    = errors.New("interview session not found")
	ErrStorageUnavailable = errors.New("session storage unavailable")
)

// StatusPatch is the set of fields a status transition writes. Nil
// pointer fields are left untouched so the state machine can enforce
// first-write-wins on StartTime and exactly-once on EndTime.
type StatusPatch struct {
	Status           models.SessionStatus
	StartTime        *time.Time
	LastActivityTime *time.Time
	EndTime          *time.Time
	IsTimedOut       bool
	TimeoutReason    string
}

// SessionStore persists interview sessions. Implementations must apply
// each call atomically from the caller's point of view; transitions are
// persisted synchronously before the driver proceeds.
type SessionStore interface {
	Create(ctx context.Context, session *models.InterviewSession) error
	Get(ctx context.Context, id string) (*models.InterviewSession, error)
	ListByUser(ctx context.Context, userID string) ([]models.InterviewSession, error)
	Delete(ctx context.Context, id string) error

	UpdateStatus(ctx context.Context, id string, patch StatusPatch) error
	// Touch bumps lastActivityTime on a user-initiated action.
	Touch(ctx context.Context, id string, at time.Time) error

	// AppendResponse appends in submission order and also bumps
	// lastActivityTime to the response timestamp.
	AppendResponse(ctx context.Context, id string, response models.Response) error
	// SetResponseFeedback updates the first response whose questionIndex
	// matches and reports whether any entry matched.
	SetResponseFeedback(ctx context.Context, id string, questionIndex int, feedback string) (bool, error)
	AppendInteraction(ctx context.Context, id string, interaction models.Interaction) error

	// ListActiveBefore returns non-terminal sessions whose expiry
	// reference time (lastActivityTime, else startTime) is before cutoff.
	ListActiveBefore(ctx context.Context, cutoff time.Time) ([]models.InterviewSession, error)
}
