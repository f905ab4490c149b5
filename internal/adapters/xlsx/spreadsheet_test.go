package xlsx

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

// workbook builds an in-memory XLSX with the given rows on its first sheet
func workbook(t *testing.T, rows [][]any) *bytes.Buffer {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatal(err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer failed: %v", err)
	}
	return buf
}

func headerRow(names []string) []any {
	row := make([]any, len(names))
	for i, n := range names {
		row[i] = n
	}
	return row
}

func TestReadBatch_DateCellsAndText(t *testing.T) {
	buf := workbook(t, [][]any{
		headerRow(domain.ColumnNames()),
		{time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), "Jatra", "Mesin 1", 300, 1.5, 1500, 10, 80.5, 4, 60, 2.5, "-"},
		{"2024-04-02", "Sebuku", "Mesin 2", 250.75, 0, 1200, 0, 0, 0, 0, 0},
	})

	batch, err := NewSpreadsheet().ReadBatch(buf)
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}

	readings, err := domain.ValidateSchema(batch)
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}

	want := []domain.EngineReading{
		{
			Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Ship: "Jatra", EngineName: "Mesin 1",
			FuelRate: 300, LubricantRate: 1.5, RPM: 1500, OperatingHours: 10, EngineTemp: 80.5,
			OilPressure: 4, LoadPct: 60, Vibration: 2.5, Alarm: "-",
		},
		{
			Date: time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC), Ship: "Sebuku", EngineName: "Mesin 2",
			FuelRate: 250.75, RPM: 1200,
		},
	}
	if diff := cmp.Diff(want, readings); diff != "" {
		t.Errorf("readings mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBatch_MissingRPMColumn(t *testing.T) {
	var header []string
	for _, name := range domain.ColumnNames() {
		if name != domain.ColRPM {
			header = append(header, name)
		}
	}
	buf := workbook(t, [][]any{
		headerRow(header),
		{"2024-04-01", "Jatra", "Mesin 1", 300, 1.5, 10, 80.5, 4, 60, 2.5, "-"},
	})

	batch, err := NewSpreadsheet().ReadBatch(buf)
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}

	_, err = domain.ValidateSchema(batch)

	var schemaErr *domain.SchemaError
	if !errors.As(err, &schemaErr) {
		t.Fatalf("expected *SchemaError, got %v", err)
	}
	if diff := cmp.Diff([]string{domain.ColRPM}, schemaErr.Missing); diff != "" {
		t.Errorf("missing columns mismatch (-want +got):\n%s", diff)
	}
}

func TestReadBatch_NotAWorkbook(t *testing.T) {
	_, err := NewSpreadsheet().ReadBatch(strings.NewReader("Tanggal,Kapal\n"))

	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if parseErr.Row != 0 {
		t.Errorf("expected artifact-level error, got row %d", parseErr.Row)
	}
}

func TestReadBatch_EmptySheet(t *testing.T) {
	buf := workbook(t, nil)

	_, err := NewSpreadsheet().ReadBatch(buf)

	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
}

func TestWriteReport_ReadsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "laporan_Jatra_Mesin 1.xlsx")
	want := []domain.EngineReading{
		{
			Date: time.Date(2024, 4, 3, 0, 0, 0, 0, time.UTC), Ship: "Jatra", EngineName: "Mesin 1",
			FuelRate: 310.25, LubricantRate: 1.1, RPM: 1510, OperatingHours: 22, EngineTemp: 97.5,
			OilPressure: 2.5, LoadPct: 88, Vibration: 4.4, Alarm: "Warning",
		},
		{
			Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Ship: "Jatra", EngineName: "Mesin 1",
			FuelRate: 300, RPM: 1500,
		},
	}

	s := NewSpreadsheet()
	if err := s.WriteReport(path, want); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("failed to open report: %v", err)
	}
	defer file.Close()

	batch, err := s.ReadBatch(file)
	if err != nil {
		t.Fatalf("ReadBatch failed: %v", err)
	}
	if diff := cmp.Diff(domain.ColumnNames(), batch.Header); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	got, err := domain.ValidateSchema(batch)
	if err != nil {
		t.Fatalf("ValidateSchema failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteReport_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")

	if err := NewSpreadsheet().WriteReport(path, nil); err != nil {
		t.Fatalf("WriteReport failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected report file, got %v", err)
	}
}
