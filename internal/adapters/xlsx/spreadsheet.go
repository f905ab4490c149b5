package xlsx

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

// Spreadsheet reads import workbooks and writes report workbooks.
// It implements ports.SpreadsheetReader and ports.ReportWriter
type Spreadsheet struct{}

// NewSpreadsheet creates the XLSX adapter
func NewSpreadsheet() *Spreadsheet {
	return &Spreadsheet{}
}

// ReadBatch reads the first sheet of the workbook. The first row is the
// header. Date cells stored as Excel serial numbers are converted to dates.
func (s *Spreadsheet) ReadBatch(r io.Reader) (domain.TabularBatch, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return domain.TabularBatch{}, &domain.ParseError{Err: fmt.Errorf("open workbook: %w", err)}
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return domain.TabularBatch{}, &domain.ParseError{Err: fmt.Errorf("workbook has no sheets")}
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return domain.TabularBatch{}, &domain.ParseError{Err: fmt.Errorf("read sheet %q: %w", sheet, err)}
	}
	if len(rows) == 0 {
		return domain.TabularBatch{}, &domain.ParseError{Err: fmt.Errorf("sheet %q is empty", sheet)}
	}

	batch := domain.TabularBatch{Header: rows[0], Rows: rows[1:]}

	dateCol := -1
	for i, h := range batch.Header {
		if strings.TrimSpace(h) == domain.ColDate {
			dateCol = i
			break
		}
	}
	if dateCol >= 0 {
		for _, row := range batch.Rows {
			if dateCol < len(row) {
				row[dateCol] = serialToDate(row[dateCol])
			}
		}
	}

	log.Debug().
		Str("sheet", sheet).
		Int("rows", len(batch.Rows)).
		Msg("read spreadsheet batch")

	return batch, nil
}

// serialToDate converts an Excel date serial to the store date layout and
// passes any other text through unchanged
func serialToDate(raw string) string {
	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return raw
	}
	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return raw
	}
	return t.Format(domain.DateLayout)
}

// WriteReport writes readings to a single-sheet workbook at path, header
// row first, columns in schema order
func (s *Spreadsheet) WriteReport(path string, readings []domain.EngineReading) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	columns := domain.Columns()

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c.Name
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	dateStyle, err := f.NewStyle(&excelize.Style{NumFmt: 14})
	if err != nil {
		return fmt.Errorf("create date style: %w", err)
	}
	dateColName, err := excelize.ColumnNumberToName(1)
	if err != nil {
		return err
	}
	if err := f.SetColStyle(sheet, dateColName, dateStyle); err != nil {
		return fmt.Errorf("set date style: %w", err)
	}

	for i := range readings {
		row := make([]any, len(columns))
		for j, c := range columns {
			row[j] = c.Value(&readings[i])
		}

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}
