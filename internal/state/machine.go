// Package state owns every session status transition. All callers (HTTP
// handlers, the live driver, the timeout sweeper) go through the Machine
// so no two code paths can disagree about whether a session has ended.
package state

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/events"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/repositories"
)

var (
	// ErrSessionTerminal rejects mutations on completed/timed-out
	// sessions. Re-applying the state a session is already in is a
	// no-op instead; only competing transitions fail.
	ErrSessionTerminal = errors.New("interview already ended")
	// ErrInvalidTransition rejects transitions the lifecycle does not
	// define, e.g. completing a session that never started.
	ErrInvalidTransition = errors.New("invalid session transition")
)

type Machine struct {
	store     repositories.SessionStore
	publisher *events.Publisher
	logger    *zap.Logger
	now       func() time.Time
}

func NewMachine(store repositories.SessionStore, publisher *events.Publisher, logger *zap.Logger) *Machine {
	return &Machine{
		store:     store,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
	}
}

// Start moves scheduled → in-progress on first access to the live
// interview screen. StartTime is first-write-wins; lastActivityTime is
// always bumped. Calling Start on an in-progress session only refreshes
// activity.
func (m *Machine) Start(ctx context.Context, id string) (*models.InterviewSession, error) {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	switch session.Status {
	case models.StatusCompleted, models.StatusTimedOut:
		return nil, ErrSessionTerminal
	case models.StatusInProgress:
		now := m.now().UTC()
		if err := m.store.Touch(ctx, id, now); err != nil {
			return nil, err
		}
		session.LastActivityTime = &now
		return session, nil
	}

	now := m.now().UTC()
	patch := repositories.StatusPatch{
		Status:           models.StatusInProgress,
		LastActivityTime: &now,
	}
	if session.StartTime == nil {
		patch.StartTime = &now
	}
	if err := m.store.UpdateStatus(ctx, id, patch); err != nil {
		return nil, err
	}

	session.Status = models.StatusInProgress
	if session.StartTime == nil {
		session.StartTime = &now
	}
	session.LastActivityTime = &now

	m.logger.Info("interview started",
		zap.String("interview_id", id),
		zap.String("user_id", session.UserID))
	m.publisher.Publish(ctx, events.Event{
		InterviewID: id,
		UserID:      session.UserID,
		Event:       events.EventStarted,
	})
	return session, nil
}

// Complete moves in-progress → completed once the response count reaches
// the question count. Re-completing a completed session is a no-op.
func (m *Machine) Complete(ctx context.Context, id string) error {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	switch session.Status {
	case models.StatusCompleted:
		return nil
	case models.StatusTimedOut:
		return ErrSessionTerminal
	case models.StatusScheduled:
		return fmt.Errorf("%w: cannot complete a session that never started", ErrInvalidTransition)
	}

	now := m.now().UTC()
	patch := repositories.StatusPatch{
		Status:           models.StatusCompleted,
		LastActivityTime: &now,
	}
	if session.EndTime == nil {
		patch.EndTime = &now
	}
	if err := m.store.UpdateStatus(ctx, id, patch); err != nil {
		return err
	}

	m.logger.Info("interview completed",
		zap.String("interview_id", id),
		zap.Int("responses", len(session.Responses)))
	m.publisher.Publish(ctx, events.Event{
		InterviewID: id,
		UserID:      session.UserID,
		Event:       events.EventCompleted,
	})
	return nil
}

// Expire moves scheduled/in-progress → timed-out when the timeout policy
// reports expiry. Re-expiring a timed-out session is a no-op; expiring a
// completed session fails (first terminal transition wins).
func (m *Machine) Expire(ctx context.Context, id, reason string) error {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}

	switch session.Status {
	case models.StatusTimedOut:
		return nil
	case models.StatusCompleted:
		return ErrSessionTerminal
	}

	now := m.now().UTC()
	patch := repositories.StatusPatch{
		Status:        models.StatusTimedOut,
		IsTimedOut:    true,
		TimeoutReason: reason,
	}
	if session.EndTime == nil {
		patch.EndTime = &now
	}
	if err := m.store.UpdateStatus(ctx, id, patch); err != nil {
		return err
	}

	m.logger.Info("interview timed out",
		zap.String("interview_id", id),
		zap.String("reason", reason))
	m.publisher.Publish(ctx, events.Event{
		InterviewID: id,
		UserID:      session.UserID,
		Event:       events.EventTimedOut,
	})
	return nil
}

// Delete removes a session permanently, from any status. The deleted
// event tells downstream consumers to drop whatever they cached for it.
func (m *Machine) Delete(ctx context.Context, id string) error {
	session, err := m.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := m.store.Delete(ctx, id); err != nil {
		return err
	}

	m.logger.Info("interview deleted",
		zap.String("interview_id", id),
		zap.String("user_id", session.UserID))
	m.publisher.Publish(ctx, events.Event{
		InterviewID: id,
		UserID:      session.UserID,
		Event:       events.EventDeleted,
	})
	return nil
}

// WithClock overrides the machine's clock. Tests only.
func (m *Machine) WithClock(now func() time.Time) *Machine {
	m.now = now
	return m
}
