// Package recorder appends scored answers and free-form AI exchanges to
// a session. It trusts the driver for question progression: duplicate
// questionIndex values are stored as-is (re-answering appends), and
// feedback attaches to the first matching entry only.
package recorder

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/audit"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/state"
)

type Recorder struct {
	store    repositories.SessionStore
	archiver *audit.Archiver // optional; nil disables archiving
	logger   *zap.Logger
	now      func() time.Time
}

func New(store repositories.SessionStore, archiver *audit.Archiver, logger *zap.Logger) *Recorder {
	return &Recorder{
		store:    store,
		archiver: archiver,
		logger:   logger,
		now:      time.Now,
	}
}

// RecordAnswer appends a timestamped response entry. Malformed input is
// rejected before persistence; answers against ended sessions fail with
// ErrSessionTerminal.
func (r *Recorder) RecordAnswer(ctx context.Context, sessionID string, questionIndex int, question, expectedAnswer, userAnswer string) (*models.Response, error) {
	userAnswer = strings.TrimSpace(userAnswer)
	if userAnswer == "" {
		return nil, &models.ErrorResponse{Code: "empty_answer", Message: "userAnswer must not be empty"}
	}
	if questionIndex < 0 {
		return nil, &models.ErrorResponse{Code: "invalid_question_index", Message: "questionIndex must not be negative"}
	}

	session, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.Status.Terminal() {
		return nil, state.ErrSessionTerminal
	}

	response := models.Response{
		QuestionIndex:  questionIndex,
		Question:       question,
		ExpectedAnswer: expectedAnswer,
		UserAnswer:     userAnswer,
		Timestamp:      r.now().UTC(),
	}
	if err := r.store.AppendResponse(ctx, sessionID, response); err != nil {
		return nil, err
	}
	return &response, nil
}

// AttachFeedback sets feedback on the first response matching
// questionIndex. A missing match is a silent no-op so the interview flow
// never blocks on a non-critical annotation.
func (r *Recorder) AttachFeedback(ctx context.Context, sessionID string, questionIndex int, feedback string) error {
	if _, err := r.store.Get(ctx, sessionID); err != nil {
		return err
	}

	matched, err := r.store.SetResponseFeedback(ctx, sessionID, questionIndex, feedback)
	if err != nil {
		return err
	}
	if !matched {
		r.logger.Debug("feedback had no matching response",
			zap.String("interview_id", sessionID),
			zap.Int("question_index", questionIndex))
	}
	return nil
}

// LogInteraction appends to the session's append-only AI exchange trail
// and mirrors the entry into the relational archive. Archive failures
// are logged, never surfaced.
func (r *Recorder) LogInteraction(ctx context.Context, sessionID string, kind models.InteractionKind, userQuery, aiResponse string, questionIndex *int) (*models.Interaction, error) {
	if strings.TrimSpace(aiResponse) == "" {
		return nil, &models.ErrorResponse{Code: "missing_ai_response", Message: "aiResponse is required"}
	}

	interaction := models.Interaction{
		Kind:          kind,
		UserQuery:     userQuery,
		AIResponse:    aiResponse,
		QuestionIndex: questionIndex,
		Timestamp:     r.now().UTC(),
	}
	if err := r.store.AppendInteraction(ctx, sessionID, interaction); err != nil {
		return nil, err
	}

	if r.archiver != nil {
		err := r.archiver.Record(&audit.InteractionRecord{
			SessionID:     sessionID,
			Kind:          string(kind),
			UserQuery:     userQuery,
			AIResponse:    aiResponse,
			QuestionIndex: questionIndex,
			AskedAt:       interaction.Timestamp,
		})
		if err != nil {
			r.logger.Warn("failed to archive interaction",
				zap.String("interview_id", sessionID),
				zap.Error(err))
		}
	}
	return &interaction, nil
}

// WithClock overrides the recorder's clock. Tests only.
func (r *Recorder) WithClock(now func() time.Time) *Recorder {
	r.now = now
	return r
}
