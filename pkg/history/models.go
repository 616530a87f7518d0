package history

import (
	"encoding/json"
	"time"

	"github.com/LambdaTest/coverage-extractor/pkg/core"
	"gorm.io/datatypes"
)

// Run is one recorded extraction
type Run struct {
	ID       string  `gorm:"primaryKey;type:varchar(32)"`
	Line     float64 `gorm:"not null"`
	Branch   float64 `gorm:"not null"`
	Format   string  `gorm:"type:varchar(10);not null"`
	Source   string  `gorm:"type:text"`
	Strategy string  `gorm:"type:varchar(20)"`

	// Build information
	Commit   string         `gorm:"type:varchar(64);index"`
	Ref      string         `gorm:"type:varchar(255)"`
	Metadata datatypes.JSON `gorm:"type:json"`

	CreatedAt time.Time `gorm:"autoCreateTime;index"`
}

// TableName overrides the table name used by Run
func (Run) TableName() string {
	return "coverage_runs"
}

func toRun(entry *core.HistoryEntry) (*Run, error) {
	run := &Run{
		ID:        entry.ID,
		Line:      entry.Line,
		Branch:    entry.Branch,
		Format:    string(entry.Format),
		Source:    entry.Source,
		Strategy:  entry.Strategy,
		Commit:    entry.Commit,
		Ref:       entry.Ref,
		CreatedAt: entry.CreatedAt,
	}
	if len(entry.Metadata) > 0 {
		raw, err := json.Marshal(entry.Metadata)
		if err != nil {
			return nil, err
		}
		run.Metadata = datatypes.JSON(raw)
	}
	return run, nil
}

func (r *Run) toEntry() (core.HistoryEntry, error) {
	entry := core.HistoryEntry{
		ID:        r.ID,
		Line:      r.Line,
		Branch:    r.Branch,
		Format:    core.ReportFormat(r.Format),
		Source:    r.Source,
		Strategy:  r.Strategy,
		Commit:    r.Commit,
		Ref:       r.Ref,
		CreatedAt: r.CreatedAt,
	}
	if len(r.Metadata) > 0 {
		if err := json.Unmarshal(r.Metadata, &entry.Metadata); err != nil {
			return entry, err
		}
	}
	return entry, nil
}
