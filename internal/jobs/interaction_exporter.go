package jobs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Deekshi05/AceAI/internal/audit"
)

// ExporterConfig contains configuration for the exporter job
type ExporterConfig struct {
	Schedule  string // Cron schedule (e.g., "0 2 * * *" for 2 AM daily)
	ExportDir string // Directory to store exported files
	Enabled   bool
}

// InteractionExporter periodically dumps unexported AI interaction
// records to JSONL files for offline analysis.
type InteractionExporter struct {
	archiver *audit.Archiver
	config   *ExporterConfig
	logger   *zap.Logger
	cron     *cron.Cron
}

func NewInteractionExporter(archiver *audit.Archiver, config *ExporterConfig, logger *zap.Logger) *InteractionExporter {
	return &InteractionExporter{
		archiver: archiver,
		config:   config,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start begins the scheduled export job
func (ie *InteractionExporter) Start() error {
	if !ie.config.Enabled {
		ie.logger.Info("interaction export is disabled, skipping scheduler")
		return nil
	}

	_, err := ie.cron.AddFunc(ie.config.Schedule, func() {
		if err := ie.RunExport(); err != nil {
			ie.logger.Error("interaction export failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule export job: %w", err)
	}

	ie.cron.Start()
	ie.logger.Info("interaction exporter started", zap.String("schedule", ie.config.Schedule))
	return nil
}

// Stop stops the scheduled export job
func (ie *InteractionExporter) Stop() {
	if ie.cron != nil {
		ie.cron.Stop()
		ie.logger.Info("interaction exporter stopped")
	}
}

// RunExport performs a single export run
func (ie *InteractionExporter) RunExport() error {
	records, err := ie.archiver.Unexported(0) // no limit
	if err != nil {
		return fmt.Errorf("failed to load unexported interactions: %w", err)
	}
	if len(records) == 0 {
		return nil
	}

	data, err := ie.archiver.ExportJSONL(records)
	if err != nil {
		return fmt.Errorf("failed to serialise interactions: %w", err)
	}

	if err := os.MkdirAll(ie.config.ExportDir, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	filename := fmt.Sprintf("interactions_%s.jsonl", time.Now().UTC().Format("20060102_150405"))
	path := filepath.Join(ie.config.ExportDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file: %w", err)
	}

	ids := make([]uint, len(records))
	for i, rec := range records {
		ids[i] = rec.ID
	}
	if err := ie.archiver.MarkExported(ids); err != nil {
		return fmt.Errorf("failed to mark interactions exported: %w", err)
	}

	ie.logger.Info("exported interaction records",
		zap.Int("count", len(records)),
		zap.String("file", path))
	return nil
}
