package jobs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/audit"
	"github.com/Deekshi05/AceAI/internal/testhelpers"
)

func TestRunExportWritesFileAndMarksRecords(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	archiver, err := audit.NewArchiver(db)
	require.NoError(t, err)

	require.NoError(t, archiver.Record(&audit.InteractionRecord{
		SessionID:  "iv-1",
		Kind:       "query",
		UserQuery:  "can you repeat that?",
		AIResponse: "of course",
		AskedAt:    time.Now().UTC(),
	}))
	require.NoError(t, archiver.Record(&audit.InteractionRecord{
		SessionID:  "iv-1",
		Kind:       "feedback",
		AIResponse: "good answer",
		AskedAt:    time.Now().UTC(),
	}))

	dir := t.TempDir()
	exporter := NewInteractionExporter(archiver, &ExporterConfig{
		Schedule:  "0 2 * * *",
		ExportDir: dir,
		Enabled:   true,
	}, zap.NewNop())

	require.NoError(t, exporter.RunExport())

	files, err := filepath.Glob(filepath.Join(dir, "interactions_*.jsonl"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	data, err := os.ReadFile(files[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "can you repeat that?")
	assert.Contains(t, string(data), "good answer")

	remaining, err := archiver.Unexported(0)
	require.NoError(t, err)
	assert.Empty(t, remaining)
}

func TestRunExportNoRecordsIsNoOp(t *testing.T) {
	db := testhelpers.SetupTestDB(t)
	archiver, err := audit.NewArchiver(db)
	require.NoError(t, err)

	dir := t.TempDir()
	exporter := NewInteractionExporter(archiver, &ExporterConfig{
		Schedule:  "0 2 * * *",
		ExportDir: dir,
		Enabled:   true,
	}, zap.NewNop())

	require.NoError(t, exporter.RunExport())

	files, err := filepath.Glob(filepath.Join(dir, "*.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, files)
}
