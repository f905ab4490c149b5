package domain

import (
	"math"
	"strings"
	"time"
)

// DateLayout is the calendar date format used by the store and the APIs
const DateLayout = "2006-01-02"

// Alarm sentinels written by the synthetic generator
const (
	AlarmNone    = "-"
	AlarmWarning = "Warning"
)

// MaxLoadPct is the upper bound accepted on manual entry
const MaxLoadPct = 150.0

// MaxGenerateDays caps a single synthetic batch (about ten years)
const MaxGenerateDays = 3660

// Default fleet offered by the entry form and used by the generator
var (
	DefaultShips   = []string{"Sebuku", "Legundi", "Jatra", "Portlink", "Batu Mandi"}
	DefaultEngines = []string{"Mesin 1", "Mesin 2"}
)

// EngineReading is one observation of one engine on one date
type EngineReading struct {
	Date           time.Time
	Ship           string
	EngineName     string
	FuelRate       float64 // L/h
	LubricantRate  float64 // L/h
	RPM            int
	OperatingHours float64
	EngineTemp     float64 // °C
	OilPressure    float64 // bar
	LoadPct        float64
	Vibration      float64 // mm/s
	Alarm          string
}

// NewEngineReading validates a manually entered reading.
// Only the entry path enforces ranges; imported and generated batches are taken as-is.
// Ship and engine names are trimmed so the stored value is the one returned.
func NewEngineReading(r EngineReading) (EngineReading, error) {
	r.Ship = strings.TrimSpace(r.Ship)
	r.EngineName = strings.TrimSpace(r.EngineName)
	if r.Ship == "" || r.EngineName == "" || r.Date.IsZero() {
		return EngineReading{}, ErrInvalidReading
	}
	for _, v := range []float64{r.FuelRate, r.LubricantRate, r.OperatingHours, r.EngineTemp, r.OilPressure, r.LoadPct, r.Vibration} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return EngineReading{}, ErrInvalidReading
		}
	}
	if r.FuelRate < 0 || r.LubricantRate < 0 || r.RPM < 0 || r.OperatingHours < 0 ||
		r.EngineTemp < 0 || r.OilPressure < 0 || r.Vibration < 0 {
		return EngineReading{}, ErrInvalidReading
	}
	if r.LoadPct < 0 || r.LoadPct > MaxLoadPct {
		return EngineReading{}, ErrInvalidReading
	}

	r.Date = TruncateDate(r.Date)
	return r, nil
}

// HasAlarm reports whether the reading carries an alarm status
func (r EngineReading) HasAlarm() bool {
	return r.Alarm != "" && r.Alarm != AlarmNone
}

// IsAbnormal flags readings that would raise the dashboard warning:
// hot engine with low oil pressure, or any recorded alarm.
func (r EngineReading) IsAbnormal() bool {
	return r.HasAlarm() || (r.EngineTemp > WarningTemp && r.OilPressure < WarningPressure)
}

// Thresholds for the warning condition
const (
	WarningTemp     = 95.0
	WarningPressure = 3.0
)

// TruncateDate drops the time-of-day and normalises to UTC
func TruncateDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
