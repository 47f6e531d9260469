package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/ai"
	"github.com/Deekshi05/AceAI/internal/handlers"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories/memory"
	"github.com/Deekshi05/AceAI/internal/routers"
	"github.com/Deekshi05/AceAI/internal/upload"
)

type fakeProvider struct {
	questions []ai.GeneratedQuestion
	reply     *ai.Reply
	err       error
}

func (p *fakeProvider) GenerateQuestions(context.Context, ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.questions, nil
}

func (p *fakeProvider) RespondToAnswer(context.Context, ai.FeedbackRequest) (*ai.Reply, error) {
	if p.err != nil {
		return nil, p.err
	}
	return p.reply, nil
}

func (p *fakeProvider) GetProviderName() string { return "fake" }

func newAIRouter(t *testing.T, provider ai.Provider) (*chi.Mux, *memory.SessionStore) {
	t.Helper()

	store := memory.NewSessionStore()
	logger := zap.NewNop()
	rec := recorder.New(store, nil, logger)
	uploader := upload.NewClient(&upload.Config{Timeout: time.Second})

	aiHandler := handlers.NewAIHandler(provider, uploader, store, rec, logger)
	router := chi.NewRouter()
	routers.AIRoutes(router, aiHandler)
	return router, store
}

func postGenerateForm(t *testing.T, router *chi.Mux, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/ai/generate", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestGenerateCreatesScheduledSession(t *testing.T) {
	provider := &fakeProvider{questions: []ai.GeneratedQuestion{
		{Question: "Q1", Answer: "A1"},
		{Question: "Q2", Answer: "A2"},
	}}
	router, store := newAIRouter(t, provider)

	rec := postGenerateForm(t, router, map[string]string{
		"userId":         "user-1",
		"jobTitle":       "Backend Engineer",
		"jobDescription": "Go services",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	require.NotEmpty(t, resp.InterviewID)
	require.Len(t, resp.Questions, 2)

	session, err := store.Get(context.Background(), resp.InterviewID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, session.Status)
	assert.Equal(t, "A1", session.Questions[0].ExpectedAnswer)
}

func TestGenerateFailureCreatesNoSession(t *testing.T) {
	provider := &fakeProvider{err: &ai.ProviderError{Provider: "fake", Code: ai.ErrCodeServiceDown, Message: "down"}}
	router, store := newAIRouter(t, provider)

	rec := postGenerateForm(t, router, map[string]string{
		"userId":   "user-1",
		"jobTitle": "Backend Engineer",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Empty(t, resp.InterviewID)
	assert.NotEmpty(t, resp.Error)

	sessions, err := store.ListByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGenerateRequiresJobContext(t *testing.T) {
	router, _ := newAIRouter(t, &fakeProvider{})

	rec := postGenerateForm(t, router, map[string]string{"userId": "user-1"})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "missing_job_context", errResp.Code)
}

func seedSession(t *testing.T, store *memory.SessionStore) *models.InterviewSession {
	t.Helper()

	session := &models.InterviewSession{
		ID:     "iv-query",
		UserID: "user-1",
		Status: models.StatusInProgress,
		Questions: []models.Question{
			{Question: "Tell me about Go", ExpectedAnswer: "channels etc"},
		},
	}
	now := time.Now().UTC()
	session.StartTime = &now
	session.LastActivityTime = &now
	require.NoError(t, store.Create(context.Background(), session))
	return session
}

func TestAIQueryReturnsClassifiedReply(t *testing.T) {
	provider := &fakeProvider{reply: &ai.Reply{Type: "hint", Content: "mention goroutines"}}
	router, store := newAIRouter(t, provider)
	session := seedSession(t, store)

	idx := 0
	rec := doJSON(t, router, http.MethodPost, "/api/v1/ai/query", models.AIQueryRequest{
		InterviewID:   session.ID,
		UserQuery:     "what should I focus on?",
		QuestionIndex: &idx,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AIQueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hint", resp.Type)
	assert.Equal(t, "mention goroutines", resp.Content)

	stored, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, stored.AIInteractions, 1)
	assert.Equal(t, models.InteractionQuery, stored.AIInteractions[0].Kind)
}

func TestAIQueryFallsBackWhenProviderFails(t *testing.T) {
	provider := &fakeProvider{err: &ai.ProviderError{Provider: "fake", Code: ai.ErrCodeTimeout, Message: "slow"}}
	router, store := newAIRouter(t, provider)
	session := seedSession(t, store)

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ai/query", models.AIQueryRequest{
		InterviewID: session.ID,
		UserQuery:   "help?",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp models.AIQueryResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ai.FallbackClarification, resp.Content)

	// the fallback is still written to the interaction trail
	stored, err := store.Get(context.Background(), session.ID)
	require.NoError(t, err)
	require.Len(t, stored.AIInteractions, 1)
	assert.Equal(t, ai.FallbackClarification, stored.AIInteractions[0].AIResponse)
}

func TestAIQueryRejectsNegativeQuestionIndex(t *testing.T) {
	router, store := newAIRouter(t, &fakeProvider{reply: &ai.Reply{Content: "x"}})
	session := seedSession(t, store)

	idx := -1
	rec := doJSON(t, router, http.MethodPost, "/api/v1/ai/query", models.AIQueryRequest{
		InterviewID:   session.ID,
		UserQuery:     "help",
		QuestionIndex: &idx,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var errResp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errResp))
	assert.Equal(t, "invalid_question_index", errResp.Code)
}

func TestAIQueryUnknownSession(t *testing.T) {
	router, _ := newAIRouter(t, &fakeProvider{reply: &ai.Reply{Content: "x"}})

	rec := doJSON(t, router, http.MethodPost, "/api/v1/ai/query", models.AIQueryRequest{
		InterviewID: "missing",
		UserQuery:   "hello?",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
}
