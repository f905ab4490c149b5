package domain

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Column headers of the persisted store and of import/export spreadsheets
const (
	ColDate           = "Tanggal"
	ColShip           = "Kapal"
	ColEngineName     = "Nama Mesin"
	ColFuelRate       = "BBM (L/h)"
	ColLubricantRate  = "Pelumas (L/h)"
	ColRPM            = "RPM"
	ColOperatingHours = "Jam Kerja"
	ColEngineTemp     = "Suhu Mesin (°C)"
	ColOilPressure    = "Tekanan Oli (bar)"
	ColLoadPct        = "Beban Mesin (%)"
	ColVibration      = "Vibrasi (mm/s)"
	ColAlarm          = "Alarm/Error"
)

// Kind tells adapters how a column is typed
type Kind int

const (
	KindDate Kind = iota
	KindText
	KindFloat
	KindInt
)

// Column binds a header to an EngineReading field
type Column struct {
	Name string
	Kind Kind
	get  func(r *EngineReading) any
	set  func(r *EngineReading, raw string) error
}

// Value returns the typed field value: time.Time, string, float64 or int
func (c Column) Value(r *EngineReading) any {
	return c.get(r)
}

// Format renders the field the way it is written to the store
func (c Column) Format(r *EngineReading) string {
	switch v := c.get(r).(type) {
	case time.Time:
		return v.Format(DateLayout)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case string:
		return v
	}
	return ""
}

func floatColumn(name string, field func(r *EngineReading) *float64) Column {
	return Column{
		Name: name,
		Kind: KindFloat,
		get:  func(r *EngineReading) any { return *field(r) },
		set: func(r *EngineReading, raw string) error {
			v, err := parseFloat(raw)
			if err != nil {
				return err
			}
			*field(r) = v
			return nil
		},
	}
}

func textColumn(name string, field func(r *EngineReading) *string) Column {
	return Column{
		Name: name,
		Kind: KindText,
		get:  func(r *EngineReading) any { return *field(r) },
		set: func(r *EngineReading, raw string) error {
			*field(r) = raw
			return nil
		},
	}
}

// schema is the single definition of the reading layout, in persisted order
var schema = []Column{
	{
		Name: ColDate,
		Kind: KindDate,
		get:  func(r *EngineReading) any { return r.Date },
		set: func(r *EngineReading, raw string) error {
			d, err := ParseDate(raw)
			if err != nil {
				return err
			}
			r.Date = d
			return nil
		},
	},
	textColumn(ColShip, func(r *EngineReading) *string { return &r.Ship }),
	textColumn(ColEngineName, func(r *EngineReading) *string { return &r.EngineName }),
	floatColumn(ColFuelRate, func(r *EngineReading) *float64 { return &r.FuelRate }),
	floatColumn(ColLubricantRate, func(r *EngineReading) *float64 { return &r.LubricantRate }),
	{
		Name: ColRPM,
		Kind: KindInt,
		get:  func(r *EngineReading) any { return r.RPM },
		set: func(r *EngineReading, raw string) error {
			v, err := parseInt(raw)
			if err != nil {
				return err
			}
			r.RPM = v
			return nil
		},
	},
	floatColumn(ColOperatingHours, func(r *EngineReading) *float64 { return &r.OperatingHours }),
	floatColumn(ColEngineTemp, func(r *EngineReading) *float64 { return &r.EngineTemp }),
	floatColumn(ColOilPressure, func(r *EngineReading) *float64 { return &r.OilPressure }),
	floatColumn(ColLoadPct, func(r *EngineReading) *float64 { return &r.LoadPct }),
	floatColumn(ColVibration, func(r *EngineReading) *float64 { return &r.Vibration }),
	textColumn(ColAlarm, func(r *EngineReading) *string { return &r.Alarm }),
}

// Columns returns the fixed schema in persisted order
func Columns() []Column {
	out := make([]Column, len(schema))
	copy(out, schema)
	return out
}

// ColumnNames returns the 12 required headers in persisted order
func ColumnNames() []string {
	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = c.Name
	}
	return names
}

// Row renders a reading as store cells in schema order
func Row(r EngineReading) []string {
	row := make([]string, len(schema))
	for i, c := range schema {
		row[i] = c.Format(&r)
	}
	return row
}

// TabularBatch is an untyped table: a header row and data rows of cells
type TabularBatch struct {
	Header []string
	Rows   [][]string
}

// ValidateSchema checks that batch carries every required column and
// converts its rows to readings. Extra columns are ignored. A batch is
// either converted entirely or rejected with a *SchemaError or *ParseError.
func ValidateSchema(batch TabularBatch) ([]EngineReading, error) {
	index := make(map[string]int, len(batch.Header))
	for i, h := range batch.Header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, c := range schema {
		if _, ok := index[c.Name]; !ok {
			missing = append(missing, c.Name)
		}
	}
	if len(missing) > 0 {
		return nil, &SchemaError{Missing: missing}
	}

	readings := make([]EngineReading, 0, len(batch.Rows))
	for i, row := range batch.Rows {
		if blankRow(row) {
			continue
		}

		var r EngineReading
		for _, c := range schema {
			raw := ""
			if pos := index[c.Name]; pos < len(row) {
				raw = row[pos]
			}
			// text is kept verbatim so a saved store loads back unchanged
			if c.Kind != KindText {
				raw = strings.TrimSpace(raw)
			}
			if raw == "" && c.Kind != KindText {
				return nil, &ParseError{Row: i + 2, Column: c.Name, Err: errEmptyCell}
			}
			if err := c.set(&r, raw); err != nil {
				return nil, &ParseError{Row: i + 2, Column: c.Name, Value: raw, Err: err}
			}
		}
		readings = append(readings, r)
	}

	return readings, nil
}

var errEmptyCell = errors.New("empty cell")

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// dateLayouts are tried in order when reading dates back
var dateLayouts = []string{
	DateLayout,
	"2006-01-02 15:04:05",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
}

// ParseDate accepts the layouts written by this service and by the
// dataframe-based tooling that produced older store files
func ParseDate(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return TruncateDate(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised date %q", raw)
}

var errNotFinite = errors.New("value is not a finite number")

// parseFloat rejects NaN and infinities, which JSON cannot carry
func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// parseInt accepts "1500" and integral floats like "1500.0"
func parseInt(raw string) (int, error) {
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	f, err := parseFloat(raw)
	if err != nil {
		return 0, err
	}
	return IntegralValue(f)
}

// IntegralValue converts f to an int when it has no fractional part
func IntegralValue(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotFinite
	}
	if f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, fmt.Errorf("%v is not an integer", f)
	}
	return int(f), nil
}
