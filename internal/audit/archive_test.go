package audit

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/Deekshi05/AceAI/internal/testhelpers"
)

func setupArchiver(t *testing.T) *Archiver {
	t.Helper()
	db := testhelpers.SetupTestDB(t)
	archiver, err := NewArchiver(db)
	if err != nil {
		t.Fatalf("failed to create archiver: %v", err)
	}
	return archiver
}

func TestRecordAndBySession(t *testing.T) {
	archiver := setupArchiver(t)
	idx := 2

	assert.NoError(t, archiver.Record(&InteractionRecord{
		SessionID:     "iv-1",
		Kind:          "query",
		UserQuery:     "what does this question mean?",
		AIResponse:    "it asks about your debugging approach",
		QuestionIndex: &idx,
	}))
	assert.NoError(t, archiver.Record(&InteractionRecord{
		SessionID:  "iv-2",
		Kind:       "feedback",
		AIResponse: "good structure, add an example",
	}))

	records, err := archiver.BySession("iv-1")
	assert.NoError(t, err)
	if assert.Len(t, records, 1) {
		assert.Equal(t, "query", records[0].Kind)
		assert.False(t, records[0].AskedAt.IsZero())
	}
}

func TestUnexportedAndMarkExported(t *testing.T) {
	archiver := setupArchiver(t)

	for i := 0; i < 3; i++ {
		assert.NoError(t, archiver.Record(&InteractionRecord{
			SessionID:  "iv-1",
			Kind:       "feedback",
			AIResponse: "reply",
			AskedAt:    time.Now().UTC().Add(time.Duration(i) * time.Second),
		}))
	}

	records, err := archiver.Unexported(0)
	assert.NoError(t, err)
	assert.Len(t, records, 3)

	ids := []uint{records[0].ID, records[1].ID}
	assert.NoError(t, archiver.MarkExported(ids))

	remaining, err := archiver.Unexported(0)
	assert.NoError(t, err)
	assert.Len(t, remaining, 1)

	stats, err := archiver.Stats()
	assert.NoError(t, err)
	assert.Equal(t, int64(3), stats["total"])
	assert.Equal(t, int64(1), stats["unexported"])
}

func TestExportJSONL(t *testing.T) {
	archiver := setupArchiver(t)
	idx := 0

	records := []InteractionRecord{
		{SessionID: "iv-1", Kind: "query", UserQuery: "hm?", AIResponse: "a hint", QuestionIndex: &idx, AskedAt: time.Now().UTC()},
		{SessionID: "iv-1", Kind: "feedback", AIResponse: "well argued", AskedAt: time.Now().UTC()},
	}

	data, err := archiver.ExportJSONL(records)
	assert.NoError(t, err)

	lines := strings.Split(string(data), "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"kind":"query"`)
	assert.Contains(t, lines[1], `"aiResponse":"well argued"`)
}

func TestMarkExportedEmptyIsNoop(t *testing.T) {
	archiver := setupArchiver(t)
	assert.NoError(t, archiver.MarkExported(nil))
}
