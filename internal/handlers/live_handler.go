package handlers

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/ai"
	"github.com/Deekshi05/AceAI/internal/driver"
	"github.com/Deekshi05/AceAI/internal/metrics"
	"github.com/Deekshi05/AceAI/internal/models"
	"github.com/Deekshi05/AceAI/internal/recorder"
	"github.com/Deekshi05/AceAI/internal/repositories"
	"github.com/Deekshi05/AceAI/internal/state"
)

// LiveMessage is the websocket frame exchanged with the interview
// client. Inbound types: answer, ai_query, recording_start,
// recording_stop, speaking_start, speaking_end. Outbound types: entry,
// status, error.
type LiveMessage struct {
	Type    string        `json:"type"`
	Content string        `json:"content,omitempty"`
	Entry   *driver.Entry `json:"entry,omitempty"`
	Status  string        `json:"status,omitempty"`
	Reason  string        `json:"reason,omitempty"`
}

type LiveHandler struct {
	store    repositories.SessionStore
	machine  *state.Machine
	recorder *recorder.Recorder
	provider ai.Provider
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewLiveHandler(store repositories.SessionStore, machine *state.Machine, rec *recorder.Recorder, provider ai.Provider, logger *zap.Logger) *LiveHandler {
	return &LiveHandler{
		store:    store,
		machine:  machine,
		recorder: rec,
		provider: provider,
		logger:   logger,
		upgrader: websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }},
	}
}

// InterviewWS hosts one live interview connection. Each connection gets
// its own driver; the driver owns the question flow and this handler
// only shuttles frames.
func (h *LiveHandler) InterviewWS(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		http.Error(w, "interview id is required", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	metrics.LiveInterviewOpened()
	defer metrics.LiveInterviewClosed()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// gorilla connections allow one concurrent writer; the driver
	// callbacks, the ticker and the read loop all funnel through this
	var writeMu sync.Mutex
	send := func(msg LiveMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Debug("websocket write failed",
				zap.String("interview_id", id),
				zap.Error(err))
		}
	}

	d := driver.New(id, h.store, h.machine, h.recorder, h.provider, h.logger)
	defer d.Close()

	d.OnEntry(func(entry driver.Entry) {
		e := entry
		send(LiveMessage{Type: "entry", Entry: &e})
	})
	d.OnStatus(func(status models.SessionStatus, reason string) {
		send(LiveMessage{Type: "status", Status: string(status), Reason: reason})
		cancel()
	})

	session, err := d.Begin(ctx)
	if err != nil {
		send(LiveMessage{Type: "error", Content: "interview could not be opened"})
		h.logger.Warn("failed to open live interview",
			zap.String("interview_id", id),
			zap.Error(err))
		return
	}
	send(LiveMessage{Type: "status", Status: string(session.Status), Reason: session.TimeoutReason})
	if session.Status.Terminal() {
		return
	}

	go d.RunTicker(ctx, driver.TickInterval)

	for {
		var msg LiveMessage
		if err := conn.ReadJSON(&msg); err != nil {
			h.logger.Debug("websocket closed",
				zap.String("interview_id", id),
				zap.Error(err))
			return
		}

		switch msg.Type {
		case "answer":
			if err := d.SubmitAnswer(ctx, msg.Content); err != nil {
				h.logger.Debug("answer rejected",
					zap.String("interview_id", id),
					zap.Error(err))
			}
		case "ai_query":
			if err := d.SubmitAIQuery(ctx, msg.Content); err != nil {
				h.logger.Debug("AI query rejected",
					zap.String("interview_id", id),
					zap.Error(err))
			}
		case "recording_start":
			d.Audio().StartRecording()
		case "recording_stop":
			d.Audio().StopRecording()
		case "speaking_start":
			d.Audio().BeginSpeaking()
		case "speaking_end":
			d.Audio().EndSpeaking()
		default:
			h.logger.Debug("unknown live message type",
				zap.String("interview_id", id),
				zap.String("type", msg.Type))
		}

		if d.Closed() {
			return
		}
	}
}
