package ports

import (
	"io"
	"time"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

// BatchGenerator produces synthetic reading batches
// This is a PORT - adapters (mock) will implement it
type BatchGenerator interface {
	Generate(seed int64, start time.Time, days int) []domain.EngineReading
}

// SpreadsheetReader parses an uploaded spreadsheet into an untyped batch.
// Unreadable artifacts are reported as *domain.ParseError.
type SpreadsheetReader interface {
	ReadBatch(r io.Reader) (domain.TabularBatch, error)
}

// ReportWriter serialises readings to a report artifact at path
type ReportWriter interface {
	WriteReport(path string, readings []domain.EngineReading) error
}
