package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/ai"
	"github.com/Deekshi05/AceAI/internal/config"
	"github.com/Deekshi05/AceAI/internal/handlers"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories/memory"
	"github.com/Deekshi05/AceAI/internal/state"
	"github.com/Deekshi05/AceAI/internal/upload"
)

type fakeProvider struct{}

func (fakeProvider) GenerateQuestions(context.Context, ai.QuestionRequest) ([]ai.GeneratedQuestion, error) {
	return nil, errors.New("fake")
}

func (fakeProvider) RespondToAnswer(context.Context, ai.FeedbackRequest) (*ai.Reply, error) {
	return nil, errors.New("fake")
}

func (fakeProvider) GetProviderName() string { return "fake" }

var _ ai.Provider = (*fakeProvider)(nil)

func TestRegisterRoutes(t *testing.T) {
	router := chi.NewRouter()
	store := memory.NewSessionStore()
	logger := zap.NewNop()
	machine := state.NewMachine(store, nil, logger)
	rec := recorder.New(store, nil, logger)
	uploader := upload.NewClient(upload.NewConfig())

	sessionHandler := handlers.NewSessionHandler(store, machine, rec, logger)
	liveHandler := handlers.NewLiveHandler(store, machine, rec, fakeProvider{}, logger)
	aiHandler := handlers.NewAIHandler(fakeProvider{}, uploader, store, rec, logger)
	healthHandler := handlers.NewHealthHandler(fakeProvider{}, store, &config.Config{Provider: "webhook"}, nil)

	registerRoutes(router, sessionHandler, liveHandler, aiHandler, healthHandler)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()

		router.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to be registered, got %d", path, rec.Code)
		}
	}
}
