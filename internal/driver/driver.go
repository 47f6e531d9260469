package driver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/ai"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/state"
	"github.com/Deekshi05/AceAI/internal/timeout"
)

// TickInterval is how often a live driver re-checks the session clock.
const TickInterval = time.Second

// Driver runs one live interview connection. It owns the question
// pointer and the transcript; persistence goes through the recorder and
// all status changes go through the state machine.
type Driver struct {
	sessionID string
	store     repositories.SessionStore
	machine   *state.Machine
	rec       *recorder.Recorder
	provider  ai.Provider
	policy    timeout.Policy
	logger    *zap.Logger
	now       func() time.Time

	transcript *Transcript
	audio      *AudioGate

	mu         sync.Mutex
	session    *models.InterviewSession
	current    int // index of the question awaiting an answer
	submitting bool
	frozen     bool
	warned     timeout.Warning

	onEntry  func(Entry)
	onStatus func(models.SessionStatus, string)
}

func New(sessionID string, store repositories.SessionStore, machine *state.Machine, rec *recorder.Recorder, provider ai.Provider, logger *zap.Logger) *Driver {
	return &Driver{
		sessionID:  sessionID,
		store:      store,
		machine:    machine,
		rec:        rec,
		provider:   provider,
		policy:     timeout.NewPolicy(),
		logger:     logger,
		now:        time.Now,
		transcript: NewTranscript(),
		audio:      NewAudioGate(),
	}
}

// OnEntry registers the callback invoked for every appended or resolved
// transcript entry. Must be set before Begin.
func (d *Driver) OnEntry(fn func(Entry)) { d.onEntry = fn }

// OnStatus registers the callback invoked when the session reaches a
// terminal state while the connection is open.
func (d *Driver) OnStatus(fn func(models.SessionStatus, string)) { d.onStatus = fn }

func (d *Driver) Transcript() *Transcript { return d.transcript }
func (d *Driver) Audio() *AudioGate       { return d.audio }

// Closed reports whether the session ended while this driver was live.
func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frozen
}

// Begin loads the session and opens the interview. The expiry check runs
// before anything else so a stale tab that reconnects after the
// inactivity window gets a timed-out session, not a revived one. An
// already-ended session is returned as-is with the driver frozen.
func (d *Driver) Begin(ctx context.Context) (*models.InterviewSession, error) {
	session, err := d.store.Get(ctx, d.sessionID)
	if err != nil {
		return nil, err
	}

	if session.Status.Terminal() {
		d.adopt(session, true)
		return session, nil
	}

	if d.policy.SessionExpired(session, d.now().UTC()) {
		if err := d.machine.Expire(ctx, d.sessionID, timeout.ReasonInactivity); err != nil && !errors.Is(err, state.ErrSessionTerminal) {
			return nil, err
		}
		session, err = d.store.Get(ctx, d.sessionID)
		if err != nil {
			return nil, err
		}
		d.adopt(session, true)
		d.push(Entry{Type: EntrySystem, Content: timeout.ReasonInactivity})
		return session, nil
	}

	session, err = d.machine.Start(ctx, d.sessionID)
	if err != nil {
		return nil, err
	}
	d.adopt(session, false)

	d.mu.Lock()
	idx := d.current
	total := len(session.Questions)
	d.mu.Unlock()

	if idx < total {
		d.pushQuestion(idx)
	} else if total > 0 {
		// every question already has an answer; finish what a dropped
		// connection left open
		d.finish(ctx)
	}
	return session, nil
}

// SubmitAnswer handles one answer to the current question. Empty input
// is ignored, and a second submit racing the first is dropped. The
// answer is shown in the transcript immediately; if persistence fails
// the question pointer stays put so the candidate can retry.
func (d *Driver) SubmitAnswer(ctx context.Context, answer string) error {
	answer = strings.TrimSpace(answer)
	if answer == "" {
		return nil
	}

	d.mu.Lock()
	if d.frozen {
		d.mu.Unlock()
		return state.ErrSessionTerminal
	}
	if d.submitting || d.session == nil || d.current >= len(d.session.Questions) {
		d.mu.Unlock()
		return nil
	}
	d.submitting = true
	idx := d.current
	question := d.session.Questions[idx]
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.submitting = false
		d.mu.Unlock()
	}()

	d.audio.StopRecording()
	d.push(Entry{Type: EntryAnswer, Content: answer})

	if _, err := d.rec.RecordAnswer(ctx, d.sessionID, idx, question.Question, question.ExpectedAnswer, answer); err != nil {
		if errors.Is(err, state.ErrSessionTerminal) {
			d.freeze(ctx, "")
			return err
		}
		d.push(Entry{Type: EntrySystem, Content: "Your answer could not be saved. Please try again."})
		d.logger.Warn("failed to record answer",
			zap.String("interview_id", d.sessionID),
			zap.Int("question_index", idx),
			zap.Error(err))
		return err
	}

	d.mu.Lock()
	d.current = idx + 1
	done := d.current >= len(d.session.Questions)
	next := d.current
	d.mu.Unlock()

	d.respondToAnswer(ctx, idx, question, answer)

	if done {
		d.finish(ctx)
	} else {
		d.pushQuestion(next)
	}
	return nil
}

// SubmitAIQuery relays a free-form question to the AI provider. A
// pending placeholder goes into the transcript first and is always
// resolved, with the canned fallback if the provider fails, so the
// client never waits on a reply that is not coming.
func (d *Driver) SubmitAIQuery(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}

	d.mu.Lock()
	if d.frozen {
		d.mu.Unlock()
		return state.ErrSessionTerminal
	}
	idx := d.current
	var question models.Question
	if d.session != nil && idx < len(d.session.Questions) {
		question = d.session.Questions[idx]
	}
	d.mu.Unlock()

	placeholder := d.push(Entry{Type: EntryAIQuery, UserQuery: query, Pending: true})

	content := ai.FallbackClarification
	reply, err := d.provider.RespondToAnswer(ctx, ai.FeedbackRequest{
		Type:          ai.RequestTypeUserQuery,
		Question:      question.Question,
		UserQuery:     query,
		InterviewID:   d.sessionID,
		QuestionIndex: &idx,
		Timestamp:     d.now().UTC(),
	})
	if err != nil {
		d.logger.Warn("AI query failed, serving fallback",
			zap.String("interview_id", d.sessionID),
			zap.Error(err))
	} else if classified := ai.Classify(reply); classified.Content != "" {
		content = classified.Content
	}

	if resolved, ok := d.transcript.Resolve(placeholder.ID, content); ok {
		d.notify(resolved)
	}

	if _, err := d.rec.LogInteraction(ctx, d.sessionID, models.InteractionQuery, query, content, &idx); err != nil {
		d.logger.Warn("failed to log AI query",
			zap.String("interview_id", d.sessionID),
			zap.Error(err))
	}
	return nil
}

// Tick re-checks the session clock. It raises the 10- and 5-minute
// warnings off the start time and force-closes the session once the
// inactivity window is exceeded.
func (d *Driver) Tick(ctx context.Context) error {
	d.mu.Lock()
	if d.frozen {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	session, err := d.store.Get(ctx, d.sessionID)
	if err != nil {
		if errors.Is(err, repositories.ErrSessionNotFound) {
			// deleted out from under the live connection
			d.freeze(ctx, "")
			d.push(Entry{Type: EntrySystem, Content: "This interview no longer exists."})
			return err
		}
		return err
	}

	if session.Status.Terminal() {
		d.mu.Lock()
		d.session = session
		d.mu.Unlock()
		d.freeze(ctx, session.TimeoutReason)
		return nil
	}

	now := d.now().UTC()

	if session.StartTime != nil {
		level := d.policy.WarningAt(*session.StartTime, now)
		d.mu.Lock()
		raised := level > d.warned
		if raised {
			d.warned = level
		}
		d.mu.Unlock()
		if raised {
			d.push(Entry{Type: EntrySystem, Content: warningText(level)})
		}
	}

	if d.policy.SessionExpired(session, now) {
		if err := d.machine.Expire(ctx, d.sessionID, timeout.ReasonInactivity); err != nil && !errors.Is(err, state.ErrSessionTerminal) {
			return err
		}
		d.mu.Lock()
		session.Status = models.StatusTimedOut
		d.session = session
		d.mu.Unlock()
		d.push(Entry{Type: EntrySystem, Content: timeout.ReasonInactivity})
		d.freeze(ctx, timeout.ReasonInactivity)
		return nil
	}

	d.mu.Lock()
	d.session = session
	d.mu.Unlock()
	return nil
}

// RunTicker drives Tick until the context ends or the session closes.
func (d *Driver) RunTicker(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Tick(ctx); err != nil {
				d.logger.Warn("driver tick failed",
					zap.String("interview_id", d.sessionID),
					zap.Error(err))
			}
			if d.Closed() {
				return
			}
		}
	}
}

// Close releases the audio channel. Safe to call on every exit path.
func (d *Driver) Close() {
	d.audio.ReleaseAll()
}

// respondToAnswer asks the provider for feedback on a scored answer.
// Feedback attaches to the stored response and stays out of the
// transcript; a hint-style reply is shown instead. Provider failures
// surface a canned system notice and the interview moves on.
func (d *Driver) respondToAnswer(ctx context.Context, idx int, question models.Question, answer string) {
	reply, err := d.provider.RespondToAnswer(ctx, ai.FeedbackRequest{
		Type:           ai.RequestTypeUserResponse,
		Question:       question.Question,
		ExpectedAnswer: question.ExpectedAnswer,
		UserResponse:   answer,
		InterviewID:    d.sessionID,
		QuestionIndex:  &idx,
		Timestamp:      d.now().UTC(),
	})
	if err != nil {
		d.logger.Warn("feedback generation failed",
			zap.String("interview_id", d.sessionID),
			zap.Int("question_index", idx),
			zap.Error(err))
		d.push(Entry{Type: EntrySystem, Content: ai.FallbackHint})
		return
	}

	classified := ai.Classify(reply)
	if classified.Content == "" {
		return
	}

	switch classified.Kind {
	case ai.KindFeedback:
		if err := d.rec.AttachFeedback(ctx, d.sessionID, idx, classified.Content); err != nil {
			d.logger.Warn("failed to attach feedback",
				zap.String("interview_id", d.sessionID),
				zap.Int("question_index", idx),
				zap.Error(err))
		}
	default:
		d.push(Entry{Type: EntryHint, Content: classified.Content})
	}

	if _, err := d.rec.LogInteraction(ctx, d.sessionID, models.InteractionFeedback, "", classified.Content, &idx); err != nil {
		d.logger.Warn("failed to log feedback interaction",
			zap.String("interview_id", d.sessionID),
			zap.Error(err))
	}
}

func (d *Driver) finish(ctx context.Context) {
	if err := d.machine.Complete(ctx, d.sessionID); err != nil && !errors.Is(err, state.ErrSessionTerminal) {
		d.logger.Error("failed to complete interview",
			zap.String("interview_id", d.sessionID),
			zap.Error(err))
		return
	}
	d.push(Entry{Type: EntrySystem, Content: "That's the end of the interview. Your review is ready."})
	d.mu.Lock()
	if d.session != nil {
		d.session.Status = models.StatusCompleted
	}
	d.mu.Unlock()
	d.freeze(ctx, "")
}

// freeze marks the driver closed, releases audio and notifies the
// status callback. Idempotent.
func (d *Driver) freeze(_ context.Context, reason string) {
	d.mu.Lock()
	if d.frozen {
		d.mu.Unlock()
		return
	}
	d.frozen = true
	var status models.SessionStatus
	if d.session != nil {
		status = d.session.Status
	}
	d.mu.Unlock()

	d.audio.ReleaseAll()
	if d.onStatus != nil {
		d.onStatus(status, reason)
	}
}

func (d *Driver) adopt(session *models.InterviewSession, frozen bool) {
	d.mu.Lock()
	d.session = session
	d.current = len(session.Responses)
	d.warned = timeout.WarningNone
	d.frozen = frozen
	d.mu.Unlock()

	if frozen {
		d.audio.ReleaseAll()
	}
}

func (d *Driver) pushQuestion(idx int) {
	d.mu.Lock()
	var text string
	if d.session != nil && idx < len(d.session.Questions) {
		text = d.session.Questions[idx].Question
	}
	d.mu.Unlock()
	if text == "" {
		return
	}
	d.push(Entry{Type: EntryQuestion, Content: fmt.Sprintf("Question %d: %s", idx+1, text)})
}

func (d *Driver) push(entry Entry) Entry {
	stored := d.transcript.Append(entry)
	d.notify(stored)
	return stored
}

func (d *Driver) notify(entry Entry) {
	if d.onEntry != nil {
		d.onEntry(entry)
	}
}

func warningText(level timeout.Warning) string {
	switch level {
	case timeout.WarningFiveMinutes:
		return "5 minutes remaining in this interview."
	case timeout.WarningTenMinutes:
		return "10 minutes remaining in this interview."
	default:
		return ""
	}
}

// WithClock overrides the driver's clock. Tests only.
func (d *Driver) WithClock(now func() time.Time) *Driver {
	d.now = now
	return d
}

// WithPolicy overrides the timeout policy. Tests only.
func (d *Driver) WithPolicy(policy timeout.Policy) *Driver {
	d.policy = policy
	return d
}
