package domain

// Summary holds min/avg/max of one metric
type Summary struct {
	Average float64
	Min     float64
	Max     float64
}

// Statistics summarises the charted metrics of a filtered series
type Statistics struct {
	Count       int
	Abnormal    int
	FuelRate    Summary
	RPM         Summary
	EngineTemp  Summary
	OilPressure Summary
}

// Summarize computes statistics for a set of readings
func Summarize(readings []EngineReading) Statistics {
	stats := Statistics{Count: len(readings)}
	if len(readings) == 0 {
		return stats
	}

	stats.FuelRate = summarize(readings, func(r EngineReading) float64 { return r.FuelRate })
	stats.RPM = summarize(readings, func(r EngineReading) float64 { return float64(r.RPM) })
	stats.EngineTemp = summarize(readings, func(r EngineReading) float64 { return r.EngineTemp })
	stats.OilPressure = summarize(readings, func(r EngineReading) float64 { return r.OilPressure })

	for _, r := range readings {
		if r.IsAbnormal() {
			stats.Abnormal++
		}
	}
	return stats
}

func summarize(readings []EngineReading, metric func(EngineReading) float64) Summary {
	var sum float64
	min := metric(readings[0])
	max := min

	for _, r := range readings {
		v := metric(r)
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	return Summary{
		Average: sum / float64(len(readings)),
		Min:     min,
		Max:     max,
	}
}
