package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/repositories"
)

func newSession(id, userID string) *models.InterviewSession {
	return &models.InterviewSession{
		ID:     id,
		UserID: userID,
		Status: models.StatusScheduled,
		Questions: []models.Question{
			{Question: "Tell me about yourself", ExpectedAnswer: "background summary"},
			{Question: "Why this role?", ExpectedAnswer: "motivation"},
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	err := store.Create(ctx, newSession("s1", "u1"))
	assert.NoError(t, err)

	got, err := store.Get(ctx, "s1")
	assert.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.Equal(t, models.StatusScheduled, got.Status)
	assert.Len(t, got.Questions, 2)
}

func TestGetReturnsCopies(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	_ = store.Create(ctx, newSession("s1", "u1"))

	first, _ := store.Get(ctx, "s1")
	first.Status = models.StatusCompleted
	first.Questions[0].Question = "mutated"

	second, _ := store.Get(ctx, "s1")
	assert.Equal(t, models.StatusScheduled, second.Status)
	assert.Equal(t, "Tell me about yourself", second.Questions[0].Question)
}

func TestDeleteThenGetNotFound(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	_ = store.Create(ctx, newSession("s1", "u1"))

	assert.NoError(t, store.Delete(ctx, "s1"))

	_, err := store.Get(ctx, "s1")
	assert.True(t, errors.Is(err, repositories.ErrSessionNotFound))

	err = store.Delete(ctx, "s1")
	assert.True(t, errors.Is(err, repositories.ErrSessionNotFound))
}

func TestListByUser(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	_ = store.Create(ctx, newSession("s1", "u1"))
	_ = store.Create(ctx, newSession("s2", "u1"))
	_ = store.Create(ctx, newSession("s3", "u2"))

	sessions, err := store.ListByUser(ctx, "u1")
	assert.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestAppendResponseBumpsActivity(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	_ = store.Create(ctx, newSession("s1", "u1"))

	ts := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	err := store.AppendResponse(ctx, "s1", models.Response{
		QuestionIndex: 0,
		Question:      "Tell me about yourself",
		UserAnswer:    "I build backend services",
		Timestamp:     ts,
	})
	assert.NoError(t, err)

	got, _ := store.Get(ctx, "s1")
	assert.Len(t, got.Responses, 1)
	if assert.NotNil(t, got.LastActivityTime) {
		assert.True(t, got.LastActivityTime.Equal(ts))
	}
}

func TestSetResponseFeedbackFirstMatchOnly(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	_ = store.Create(ctx, newSession("s1", "u1"))

	now := time.Now().UTC()
	_ = store.AppendResponse(ctx, "s1", models.Response{QuestionIndex: 0, UserAnswer: "first", Timestamp: now})
	_ = store.AppendResponse(ctx, "s1", models.Response{QuestionIndex: 0, UserAnswer: "second", Timestamp: now})

	matched, err := store.SetResponseFeedback(ctx, "s1", 0, "solid answer")
	assert.NoError(t, err)
	assert.True(t, matched)

	got, _ := store.Get(ctx, "s1")
	assert.Equal(t, "solid answer", got.Responses[0].Feedback)
	assert.Empty(t, got.Responses[1].Feedback)
}

func TestSetResponseFeedbackNoMatchIsNoop(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	_ = store.Create(ctx, newSession("s1", "u1"))
	_ = store.AppendResponse(ctx, "s1", models.Response{QuestionIndex: 0, UserAnswer: "only", Timestamp: time.Now()})

	matched, err := store.SetResponseFeedback(ctx, "s1", 7, "orphan feedback")
	assert.NoError(t, err)
	assert.False(t, matched)

	got, _ := store.Get(ctx, "s1")
	assert.Empty(t, got.Responses[0].Feedback)
}

func TestListActiveBefore(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Now().UTC()
	stale := now.Add(-2 * time.Hour)
	fresh := now.Add(-5 * time.Minute)

	s1 := newSession("stale", "u1")
	s1.Status = models.StatusInProgress
	s1.StartTime = &stale
	s1.LastActivityTime = &stale
	_ = store.Create(ctx, s1)

	s2 := newSession("fresh", "u1")
	s2.Status = models.StatusInProgress
	s2.StartTime = &stale
	s2.LastActivityTime = &fresh
	_ = store.Create(ctx, s2)

	s3 := newSession("done", "u1")
	s3.Status = models.StatusCompleted
	s3.StartTime = &stale
	_ = store.Create(ctx, s3)

	s4 := newSession("unstarted", "u1")
	_ = store.Create(ctx, s4)

	out, err := store.ListActiveBefore(ctx, now.Add(-time.Hour))
	assert.NoError(t, err)
	if assert.Len(t, out, 1) {
		assert.Equal(t, "stale", out[0].ID)
	}
}
