package ports

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

// ReadingsService runs the store use cases: each call does at most one
// Load, an optional validate/append, and one Save.
type ReadingsService struct {
	repo      domain.ReadingRepository
	generator BatchGenerator
	importer  SpreadsheetReader
	reports   ReportWriter
	reportDir string
}

// NewReadingsService wires the store with its collaborators
func NewReadingsService(repo domain.ReadingRepository, generator BatchGenerator, importer SpreadsheetReader, reports ReportWriter, reportDir string) *ReadingsService {
	return &ReadingsService{
		repo:      repo,
		generator: generator,
		importer:  importer,
		reports:   reports,
		reportDir: reportDir,
	}
}

// QueryResult is a filtered series, newest first, with its statistics
type QueryResult struct {
	Readings []domain.EngineReading
	Stats    domain.Statistics
}

// AddReading validates a manually entered reading and appends it
func (s *ReadingsService) AddReading(ctx context.Context, r domain.EngineReading) (domain.EngineReading, error) {
	reading, err := domain.NewEngineReading(r)
	if err != nil {
		return domain.EngineReading{}, err
	}

	if err := s.appendAndSave(ctx, []domain.EngineReading{reading}); err != nil {
		return domain.EngineReading{}, err
	}

	log.Info().
		Str("ship", reading.Ship).
		Str("engine", reading.EngineName).
		Str("date", reading.Date.Format(domain.DateLayout)).
		Msg("recorded engine reading")

	return reading, nil
}

// ImportBatch validates a tabular batch and appends it as a whole.
// A batch failing validation leaves the store untouched.
func (s *ReadingsService) ImportBatch(ctx context.Context, batch domain.TabularBatch) (int, error) {
	readings, err := domain.ValidateSchema(batch)
	if err != nil {
		return 0, err
	}

	if err := s.appendAndSave(ctx, readings); err != nil {
		return 0, err
	}
	return len(readings), nil
}

// ImportSpreadsheet reads an uploaded spreadsheet and imports it
func (s *ReadingsService) ImportSpreadsheet(ctx context.Context, r io.Reader) (int, error) {
	batch, err := s.importer.ReadBatch(r)
	if err != nil {
		return 0, err
	}

	n, err := s.ImportBatch(ctx, batch)
	if err != nil {
		return 0, err
	}

	log.Info().Int("count", n).Msg("imported spreadsheet")
	return n, nil
}

// Generate appends a synthetic batch. The generator never sees the store.
// days outside 1..domain.MaxGenerateDays fails with domain.ErrInvalidDays.
func (s *ReadingsService) Generate(ctx context.Context, seed int64, start time.Time, days int) (int, error) {
	if days < 1 || days > domain.MaxGenerateDays {
		return 0, domain.ErrInvalidDays
	}

	batch := s.generator.Generate(seed, start, days)
	if len(batch) == 0 {
		return 0, nil
	}

	if err := s.appendAndSave(ctx, batch); err != nil {
		return 0, err
	}

	log.Info().
		Int64("seed", seed).
		Int("days", days).
		Int("count", len(batch)).
		Msg("generated synthetic readings")

	return len(batch), nil
}

// Query returns the readings matching f, newest first
func (s *ReadingsService) Query(ctx context.Context, f domain.Filter) (*QueryResult, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	matched := domain.FilterReadings(snap.Readings, f)
	return &QueryResult{
		Readings: domain.SortByDateDescending(matched),
		Stats:    domain.Summarize(matched),
	}, nil
}

// ExportReport writes the filtered, sorted series to the report directory
// and returns the path of the written file
func (s *ReadingsService) ExportReport(ctx context.Context, f domain.Filter) (string, error) {
	result, err := s.Query(ctx, f)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.reportDir, domain.ReportName(f))
	if err := s.ExportReadings(result.Readings, path); err != nil {
		return "", err
	}

	log.Info().
		Str("path", path).
		Int("count", len(result.Readings)).
		Msg("exported report")

	return path, nil
}

// ExportReadings writes already-filtered readings to destination,
// creating the containing directory when absent
func (s *ReadingsService) ExportReadings(readings []domain.EngineReading, destination string) error {
	dir := filepath.Dir(destination)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &domain.StorageError{Op: "mkdir", Path: dir, Err: err}
	}

	// write beside the destination and rename, so a concurrent download of
	// the same report never sees a partial workbook
	ext := filepath.Ext(destination)
	base := strings.TrimSuffix(filepath.Base(destination), ext)
	tmp, err := os.CreateTemp(dir, "."+base+"-*"+ext)
	if err != nil {
		return &domain.StorageError{Op: "create", Path: destination, Err: err}
	}
	tmpName := tmp.Name()
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "close", Path: destination, Err: err}
	}

	if err := s.reports.WriteReport(tmpName, readings); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := os.Rename(tmpName, destination); err != nil {
		os.Remove(tmpName)
		return &domain.StorageError{Op: "rename", Path: destination, Err: err}
	}
	return nil
}

// Ships lists the ships present in the store
func (s *ReadingsService) Ships(ctx context.Context) ([]string, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Ships(snap.Readings), nil
}

// Engines lists the engines recorded for ships (all ships when empty)
func (s *ReadingsService) Engines(ctx context.Context, ships []string) ([]string, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}
	return domain.Engines(snap.Readings, ships), nil
}

// appendAndSave is the single read-modify-write cycle shared by every
// write path. A concurrent writer surfaces as domain.ErrConflict.
func (s *ReadingsService) appendAndSave(ctx context.Context, incoming []domain.EngineReading) error {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return err
	}

	next := domain.Append(snap.Readings, incoming)
	if _, err := s.repo.Save(ctx, next, snap.Version); err != nil {
		return err
	}
	return nil
}
