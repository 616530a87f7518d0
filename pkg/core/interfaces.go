package core

import (
	"context"
	"io"
)

// CoverageService extracts coverage figures from a report
type CoverageService interface {
	// Extract locates and parses the report. It never fails: every error is
	// logged and replaced by zero values.
	Extract(ctx context.Context) CoverageResult
}

// ReportParser parses one report format
type ReportParser interface {
	// Format returns the report format handled by the parser.
	Format() ReportFormat
	// Parse reads the report and returns the extracted result.
	Parse(ctx context.Context, r io.Reader) (CoverageResult, error)
}

// ResultWriter renders a result for a consumer
type ResultWriter interface {
	Write(w io.Writer, result CoverageResult) error
}

// HistoryStore persists extraction results across runs
type HistoryStore interface {
	// Record stores the entry, filling ID and CreatedAt when empty.
	Record(ctx context.Context, entry *HistoryEntry) error
	// List returns at most limit entries, newest first.
	List(ctx context.Context, limit int) ([]HistoryEntry, error)
	// Prune deletes everything but the newest keep entries and returns the number deleted.
	Prune(ctx context.Context, keep int) (int64, error)
	// Close releases the underlying database.
	Close() error
}
