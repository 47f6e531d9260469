// Package audit keeps a relational archive of every AI exchange so
// interviews can be reviewed and the exchanges exported as training
// data, independent of the session documents.
package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// InteractionRecord mirrors one session aiInteractions entry into the
// relational archive. User identities beyond the session reference are
// intentionally excluded.
type InteractionRecord struct {
	gorm.Model
	SessionID     string     `gorm:"not null;index" json:"sessionId"`
	Kind          string     `gorm:"not null" json:"kind"` // "query" or "feedback"
	UserQuery     string     `gorm:"type:text" json:"userQuery,omitempty"`
	AIResponse    string     `gorm:"type:text;not null" json:"aiResponse"`
	QuestionIndex *int       `json:"questionIndex,omitempty"`
	AskedAt       time.Time  `gorm:"not null" json:"askedAt"`
	Exported      bool       `gorm:"not null;default:false;index" json:"exported"`
	ExportedAt    *time.Time `json:"exportedAt,omitempty"`
}

// exportLine is the JSONL shape consumed by the offline tuning pipeline.
type exportLine struct {
	SessionID     string    `json:"sessionId"`
	Kind          string    `json:"kind"`
	UserQuery     string    `json:"userQuery,omitempty"`
	AIResponse    string    `json:"aiResponse"`
	QuestionIndex *int      `json:"questionIndex,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}

type Archiver struct {
	db *gorm.DB
}

func NewArchiver(db *gorm.DB) (*Archiver, error) {
	if err := db.AutoMigrate(&InteractionRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate interaction archive: %w", err)
	}
	return &Archiver{db: db}, nil
}

func (a *Archiver) Record(rec *InteractionRecord) error {
	if rec.AskedAt.IsZero() {
		rec.AskedAt = time.Now().UTC()
	}
	if err := a.db.Create(rec).Error; err != nil {
		return fmt.Errorf("failed to archive interaction: %w", err)
	}
	return nil
}

func (a *Archiver) BySession(sessionID string) ([]InteractionRecord, error) {
	var out []InteractionRecord
	err := a.db.Where("session_id = ?", sessionID).Order("asked_at ASC").Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load session interactions: %w", err)
	}
	return out, nil
}

func (a *Archiver) Unexported(limit int) ([]InteractionRecord, error) {
	var out []InteractionRecord
	query := a.db.Where("exported = ?", false).Order("asked_at ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&out).Error; err != nil {
		return nil, fmt.Errorf("failed to load unexported interactions: %w", err)
	}
	return out, nil
}

func (a *Archiver) MarkExported(ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now().UTC()
	result := a.db.Model(&InteractionRecord{}).
		Where("id IN ?", ids).
		Updates(map[string]interface{}{
			"exported":    true,
			"exported_at": now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to mark interactions as exported: %w", result.Error)
	}
	return nil
}

// ExportJSONL renders records as one JSON object per line.
func (a *Archiver) ExportJSONL(records []InteractionRecord) ([]byte, error) {
	var out []byte
	for i, rec := range records {
		line, err := json.Marshal(exportLine{
			SessionID:     rec.SessionID,
			Kind:          rec.Kind,
			UserQuery:     rec.UserQuery,
			AIResponse:    rec.AIResponse,
			QuestionIndex: rec.QuestionIndex,
			Timestamp:     rec.AskedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal interaction: %w", err)
		}
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, line...)
	}
	return out, nil
}

// Stats returns archive counters for the readiness endpoint.
func (a *Archiver) Stats() (map[string]int64, error) {
	stats := make(map[string]int64)

	var total int64
	if err := a.db.Model(&InteractionRecord{}).Count(&total).Error; err != nil {
		return nil, err
	}
	stats["total"] = total

	var unexported int64
	if err := a.db.Model(&InteractionRecord{}).Where("exported = ?", false).Count(&unexported).Error; err != nil {
		return nil, err
	}
	stats["unexported"] = unexported

	return stats, nil
}
