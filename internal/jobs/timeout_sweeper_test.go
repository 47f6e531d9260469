package jobs

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/repositories/memory"
	"github.com/Deekshi05/AceAI/internal/state"
	"github.com/Deekshi05/AceAI/internal/timeout"
)

func TestRunSweepClosesOnlyStaleSessions(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	logger := zap.NewNop()
	machine := state.NewMachine(store, nil, logger)

	now := time.Now().UTC()
	stale := now.Add(-2 * time.Hour)
	fresh := now.Add(-10 * time.Minute)

	require.NoError(t, store.Create(ctx, &models.InterviewSession{
		ID:               "stale",
		UserID:           "u1",
		Status:           models.StatusInProgress,
		StartTime:        &stale,
		LastActivityTime: &stale,
	}))
	require.NoError(t, store.Create(ctx, &models.InterviewSession{
		ID:               "active",
		UserID:           "u1",
		Status:           models.StatusInProgress,
		StartTime:        &stale,
		LastActivityTime: &fresh,
	}))
	// never opened, so it has no reference time and never expires
	require.NoError(t, store.Create(ctx, &models.InterviewSession{
		ID:     "unstarted",
		UserID: "u2",
		Status: models.StatusScheduled,
	}))

	sweeper := NewTimeoutSweeper(store, machine, &SweeperConfig{Schedule: "* * * * *", Enabled: true}, logger)

	closed, err := sweeper.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	staleSession, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, models.StatusTimedOut, staleSession.Status)
	assert.True(t, staleSession.IsTimedOut)
	assert.Equal(t, timeout.ReasonInactivity, staleSession.TimeoutReason)
	require.NotNil(t, staleSession.EndTime)

	activeSession, err := store.Get(ctx, "active")
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, activeSession.Status)

	unstarted, err := store.Get(ctx, "unstarted")
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, unstarted.Status)
}

func TestRunSweepIsIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.NewSessionStore()
	logger := zap.NewNop()
	machine := state.NewMachine(store, nil, logger)

	stale := time.Now().UTC().Add(-90 * time.Minute)
	require.NoError(t, store.Create(ctx, &models.InterviewSession{
		ID:               "stale",
		UserID:           "u1",
		Status:           models.StatusInProgress,
		StartTime:        &stale,
		LastActivityTime: &stale,
	}))

	sweeper := NewTimeoutSweeper(store, machine, &SweeperConfig{Schedule: "* * * * *", Enabled: true}, logger)

	closed, err := sweeper.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, closed)

	before, err := store.Get(ctx, "stale")
	require.NoError(t, err)

	closed, err = sweeper.RunSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, closed)

	after, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	assert.Equal(t, before.EndTime, after.EndTime)
}

func TestSweeperDisabled(t *testing.T) {
	store := memory.NewSessionStore()
	logger := zap.NewNop()
	machine := state.NewMachine(store, nil, logger)

	sweeper := NewTimeoutSweeper(store, machine, &SweeperConfig{Enabled: false}, logger)
	require.NoError(t, sweeper.Start())
	sweeper.Stop()
}
