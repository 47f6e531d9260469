// Package memory holds an in-process SessionStore used by tests and as
// the fallback when no document database is configured.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/repositories"
)

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.InterviewSession
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*models.InterviewSession)}
}

func (s *SessionStore) Create(_ context.Context, session *models.InterviewSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := clone(session)
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = time.Now().UTC()
	}
	cp.UpdatedAt = cp.CreatedAt
	s.sessions[cp.ID] = cp
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*models.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok {
		return nil, repositories.ErrSessionNotFound
	}
	return clone(session), nil
}

func (s *SessionStore) ListByUser(_ context.Context, userID string) ([]models.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.InterviewSession
	for _, session := range s.sessions {
		if session.UserID == userID {
			out = append(out, *clone(session))
		}
	}
	return out, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; !ok {
		return repositories.ErrSessionNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *SessionStore) UpdateStatus(_ context.Context, id string, patch repositories.StatusPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}

	session.Status = patch.Status
	if patch.StartTime != nil {
		session.StartTime = cloneTime(patch.StartTime)
	}
	if patch.LastActivityTime != nil {
		session.LastActivityTime = cloneTime(patch.LastActivityTime)
	}
	if patch.EndTime != nil {
		session.EndTime = cloneTime(patch.EndTime)
	}
	if patch.IsTimedOut {
		session.IsTimedOut = true
		session.TimeoutReason = patch.TimeoutReason
	}
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *SessionStore) Touch(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.LastActivityTime = &at
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *SessionStore) AppendResponse(_ context.Context, id string, response models.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.Responses = append(session.Responses, response)
	ts := response.Timestamp
	session.LastActivityTime = &ts
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *SessionStore) SetResponseFeedback(_ context.Context, id string, questionIndex int, feedback string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return false, repositories.ErrSessionNotFound
	}
	for i := range session.Responses {
		if session.Responses[i].QuestionIndex == questionIndex {
			session.Responses[i].Feedback = feedback
			session.UpdatedAt = time.Now().UTC()
			return true, nil
		}
	}
	return false, nil
}

func (s *SessionStore) AppendInteraction(_ context.Context, id string, interaction models.Interaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[id]
	if !ok {
		return repositories.ErrSessionNotFound
	}
	session.AIInteractions = append(session.AIInteractions, interaction)
	session.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *SessionStore) ListActiveBefore(_ context.Context, cutoff time.Time) ([]models.InterviewSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.InterviewSession
	for _, session := range s.sessions {
		if session.Status.Terminal() {
			continue
		}
		ref := session.LastActivityTime
		if ref == nil {
			ref = session.StartTime
		}
		if ref != nil && ref.Before(cutoff) {
			out = append(out, *clone(session))
		}
	}
	return out, nil
}

func clone(session *models.InterviewSession) *models.InterviewSession {
	cp := *session
	cp.StartTime = cloneTime(session.StartTime)
	cp.LastActivityTime = cloneTime(session.LastActivityTime)
	cp.EndTime = cloneTime(session.EndTime)
	cp.Questions = append([]models.Question(nil), session.Questions...)
	cp.Responses = append([]models.Response(nil), session.Responses...)
	cp.AIInteractions = append([]models.Interaction(nil), session.AIInteractions...)
	return &cp
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	cp := *t
	return &cp
}
