// Package events publishes session lifecycle events over redis pub/sub
// so sibling services (dashboard caches, notification workers) can react
// without polling the session store.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const Channel = "interview_events"

const (
	EventStarted   = "started"
	EventCompleted = "completed"
	EventTimedOut  = "timed_out"
	EventDeleted   = "deleted"
)

type Event struct {
	InterviewID string    `json:"interviewId"`
	UserID      string    `json:"userId,omitempty"`
	Event       string    `json:"event"`
	Timestamp   time.Time `json:"timestamp"`
}

// Publisher is nil-safe: a nil publisher (redis not configured) drops
// events silently. Publish failures are logged, never surfaced; the
// interview must not stall on the event bus.
type Publisher struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewPublisher(rdb *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{rdb: rdb, logger: logger}
}

func (p *Publisher) Publish(ctx context.Context, event Event) {
	if p == nil || p.rdb == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to marshal lifecycle event", zap.Error(err))
		return
	}
	if err := p.rdb.Publish(ctx, Channel, payload).Err(); err != nil {
		p.logger.Warn("failed to publish lifecycle event",
			zap.String("interview_id", event.InterviewID),
			zap.String("event", event.Event),
			zap.Error(err))
	}
}
