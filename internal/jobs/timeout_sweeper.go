// Package jobs holds the background schedules: the inactivity sweeper
// that closes abandoned sessions and the exporter that archives AI
// interaction logs to disk.
package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/state"
	"github.com/Deekshi05/AceAI/internal/timeout"
)

// SweeperConfig contains configuration for the timeout sweeper
type SweeperConfig struct {
	Schedule string // Cron schedule (e.g., "* * * * *" for every minute)
	Enabled  bool
}

// TimeoutSweeper force-closes sessions whose inactivity window has
// lapsed. Browsers that stay open run the same check themselves; the
// sweeper catches sessions whose tab was simply closed.
type TimeoutSweeper struct {
	store   repositories.SessionStore
	machine *state.Machine
	policy  timeout.Policy
	config  *SweeperConfig
	logger  *zap.Logger
	cron    *cron.Cron
	now     func() time.Time
}

func NewTimeoutSweeper(store repositories.SessionStore, machine *state.Machine, config *SweeperConfig, logger *zap.Logger) *TimeoutSweeper {
	return &TimeoutSweeper{
		store:   store,
		machine: machine,
		policy:  timeout.NewPolicy(),
		config:  config,
		logger:  logger,
		cron:    cron.New(),
		now:     time.Now,
	}
}

// Start begins the scheduled sweep
func (ts *TimeoutSweeper) Start() error {
	if !ts.config.Enabled {
		ts.logger.Info("timeout sweeper is disabled, skipping scheduler")
		return nil
	}

	_, err := ts.cron.AddFunc(ts.config.Schedule, func() {
		if _, err := ts.RunSweep(context.Background()); err != nil {
			ts.logger.Error("timeout sweep failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule timeout sweep: %w", err)
	}

	ts.cron.Start()
	ts.logger.Info("timeout sweeper started", zap.String("schedule", ts.config.Schedule))
	return nil
}

// Stop stops the scheduled sweep
func (ts *TimeoutSweeper) Stop() {
	if ts.cron != nil {
		ts.cron.Stop()
		ts.logger.Info("timeout sweeper stopped")
	}
}

// RunSweep performs a single sweep and returns how many sessions it
// closed. Candidates are double-checked against the policy before
// expiry so a session touched between the query and the check survives.
func (ts *TimeoutSweeper) RunSweep(ctx context.Context) (int, error) {
	now := ts.now().UTC()
	cutoff := now.Add(-ts.policy.Threshold)

	candidates, err := ts.store.ListActiveBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale sessions: %w", err)
	}

	closed := 0
	for i := range candidates {
		session := &candidates[i]
		if !ts.policy.SessionExpired(session, now) {
			continue
		}
		err := ts.machine.Expire(ctx, session.ID, timeout.ReasonInactivity)
		if err != nil {
			// a completed session beat the sweep; nothing to do
			if errors.Is(err, state.ErrSessionTerminal) || errors.Is(err, repositories.ErrSessionNotFound) {
				continue
			}
			ts.logger.Error("failed to expire stale session",
				zap.String("interview_id", session.ID),
				zap.Error(err))
			continue
		}
		closed++
	}

	if closed > 0 {
		ts.logger.Info("timeout sweep closed stale sessions", zap.Int("closed", closed))
	}
	return closed, nil
}

// WithClock overrides the sweeper's clock. Tests only.
func (ts *TimeoutSweeper) WithClock(now func() time.Time) *TimeoutSweeper {
	ts.now = now
	return ts
}
