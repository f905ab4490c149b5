package mock

import (
	"math/rand"
	"time"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

// Span is a uniform sampling range [Min, Max)
type Span struct {
	Min, Max float64
}

func (s Span) draw(rng *rand.Rand) float64 {
	return s.Min + rng.Float64()*(s.Max-s.Min)
}

// Sampling ranges for synthetic readings
var (
	FuelRange      = Span{100, 400}
	LubricantRange = Span{0.5, 3}
	RPMRange       = Span{800, 1800}
	HoursRange     = Span{0, 24}
	TempRange      = Span{60, 110}
	PressureRange  = Span{2, 6}
	LoadRange      = Span{30, 100}
	VibrationRange = Span{0.5, 10}
)

// Generator produces synthetic engine readings for development and demos.
// This implements the ports.BatchGenerator interface
type Generator struct {
	ships   []string
	engines []string
}

// NewGenerator creates a generator over the given fleet.
// Nil ships or engines fall back to the default fleet.
func NewGenerator(ships, engines []string) *Generator {
	if len(ships) == 0 {
		ships = domain.DefaultShips
	}
	if len(engines) == 0 {
		engines = domain.DefaultEngines
	}
	return &Generator{ships: ships, engines: engines}
}

// Generate returns one reading per date × ship × engine, starting at start
// for days consecutive days. The same seed always yields the same batch.
func (g *Generator) Generate(seed int64, start time.Time, days int) []domain.EngineReading {
	if days <= 0 {
		return nil
	}

	rng := rand.New(rand.NewSource(seed))
	start = domain.TruncateDate(start)

	batch := make([]domain.EngineReading, 0, days*len(g.ships)*len(g.engines))
	for d := 0; d < days; d++ {
		date := start.AddDate(0, 0, d)
		for _, ship := range g.ships {
			for _, engine := range g.engines {
				batch = append(batch, g.sample(rng, date, ship, engine))
			}
		}
	}
	return batch
}

func (g *Generator) sample(rng *rand.Rand, date time.Time, ship, engine string) domain.EngineReading {
	r := domain.EngineReading{
		Date:           date,
		Ship:           ship,
		EngineName:     engine,
		FuelRate:       FuelRange.draw(rng),
		LubricantRate:  LubricantRange.draw(rng),
		RPM:            int(RPMRange.draw(rng)),
		OperatingHours: HoursRange.draw(rng),
		EngineTemp:     TempRange.draw(rng),
		OilPressure:    PressureRange.draw(rng),
		LoadPct:        LoadRange.draw(rng),
		Vibration:      VibrationRange.draw(rng),
		Alarm:          domain.AlarmNone,
	}

	if r.EngineTemp > domain.WarningTemp && r.OilPressure < domain.WarningPressure {
		r.Alarm = domain.AlarmWarning
	}
	return r
}
