// Package timeout holds the single authoritative inactivity-expiry check.
// The driver tick, the on-load check and the server-side sweeper all call
// the same Policy so threshold constants never diverge.
package timeout

import (
	"time"

	"github.com/Deekshi05/AceAI/internal/models"
)

// DefaultThreshold is the inactivity window after which a session is
// force-closed.
const DefaultThreshold = time.Hour

// ReasonInactivity is the timeoutReason recorded on sessions closed by
// the inactivity check.
const ReasonInactivity = "Interview timed out due to inactivity"

// Warning levels raised while a session is open. These are soft UX
// signals, not state transitions.
type Warning int

const (
	WarningNone Warning = iota
	// WarningTenMinutes fires at 50 minutes elapsed.
	WarningTenMinutes
	// WarningFiveMinutes fires at 55 minutes elapsed.
	WarningFiveMinutes
)

const (
	tenMinuteWarningAt  = 50 * time.Minute
	fiveMinuteWarningAt = 55 * time.Minute
)

// Policy decides whether a session has expired. Pure: no clock access,
// no side effects.
type Policy struct {
	Threshold time.Duration
}

func NewPolicy() Policy {
	return Policy{Threshold: DefaultThreshold}
}

// Reference returns the timestamp expiry is measured from: last activity
// if present, else start time. ok is false when the session has not
// begun, in which case it never expires.
func (p Policy) Reference(session *models.InterviewSession) (time.Time, bool) {
	if session.LastActivityTime != nil {
		return *session.LastActivityTime, true
	}
	if session.StartTime != nil {
		return *session.StartTime, true
	}
	return time.Time{}, false
}

// Expired reports whether now is strictly more than the threshold past
// the reference time. Monotonic in now.
func (p Policy) Expired(reference, now time.Time) bool {
	return now.Sub(reference) > p.Threshold
}

// SessionExpired combines Reference and Expired for a loaded session.
func (p Policy) SessionExpired(session *models.InterviewSession, now time.Time) bool {
	ref, ok := p.Reference(session)
	if !ok {
		return false
	}
	return p.Expired(ref, now)
}

// WarningAt returns the warning level for the elapsed time since start.
func (p Policy) WarningAt(start, now time.Time) Warning {
	elapsed := now.Sub(start)
	switch {
	case elapsed >= fiveMinuteWarningAt:
		return WarningFiveMinutes
	case elapsed >= tenMinuteWarningAt:
		return WarningTenMinutes
	default:
		return WarningNone
	}
}

// Remaining returns how long until expiry, never negative.
func (p Policy) Remaining(reference, now time.Time) time.Duration {
	left := p.Threshold - now.Sub(reference)
	if left < 0 {
		return 0
	}
	return left
}
