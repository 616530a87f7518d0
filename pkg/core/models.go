package core

import "time"

// ReportFormat is the layout of the coverage report on disk
type ReportFormat string

// Report format values
const (
	JSONReport ReportFormat = "json"
	TextReport ReportFormat = "text"
)

// CoverageResult is the pair of percentages extracted from a report
type CoverageResult struct {
	Line     float64      `json:"line_coverage" yaml:"line_coverage"`
	Branch   float64      `json:"branch_coverage" yaml:"branch_coverage"`
	Format   ReportFormat `json:"format" yaml:"format"`
	Source   string       `json:"source,omitempty" yaml:"source,omitempty"`
	Strategy string       `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// ZeroResult returns the default result for the given format
func ZeroResult(format ReportFormat) CoverageResult {
	return CoverageResult{Format: format}
}

// HistoryEntry is one recorded extraction
type HistoryEntry struct {
	ID        string
	Line      float64
	Branch    float64
	Format    ReportFormat
	Source    string
	Strategy  string
	Commit    string
	Ref       string
	Metadata  map[string]string
	CreatedAt time.Time
}
