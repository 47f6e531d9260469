// Package driver runs the live side of an interview: it walks the
// question set, pushes transcript entries to the client, relays answers
// and questions to the AI provider, and enforces the inactivity timeout
// while the session is open.
package driver

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type EntryType string

const (
	EntryQuestion EntryType = "question"
	EntryAnswer   EntryType = "answer"
	EntryHint     EntryType = "hint"
	EntrySystem   EntryType = "system"
	// EntryAIQuery is appended as a pending placeholder the moment the
	// candidate asks the AI something, then resolved in place when the
	// reply (or the fallback) arrives.
	EntryAIQuery EntryType = "ai-query"
)

// Entry is one visible transcript line. Written feedback never appears
// here; it is attached to the stored response instead and only surfaces
// in the post-interview review.
type Entry struct {
	ID        string    `json:"id"`
	Type      EntryType `json:"type"`
	Content   string    `json:"content"`
	UserQuery string    `json:"userQuery,omitempty"`
	Pending   bool      `json:"pending,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Transcript is the in-memory, append-only entry list for one live
// connection. It is not persisted; the durable record lives in the
// session document.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
}

func NewTranscript() *Transcript {
	return &Transcript{}
}

// Append stores the entry, assigning an id and timestamp if missing, and
// returns the stored copy.
func (t *Transcript) Append(entry Entry) Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.New().String()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now().UTC()
	}
	t.entries = append(t.entries, entry)
	return entry
}

// Resolve fills in a pending entry's content and clears the pending
// flag. Returns the resolved entry and whether the id matched.
func (t *Transcript) Resolve(id, content string) (Entry, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := range t.entries {
		if t.entries[i].ID == id {
			t.entries[i].Content = content
			t.entries[i].Pending = false
			return t.entries[i], true
		}
	}
	return Entry{}, false
}

// Entries returns a copy of the transcript.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}
