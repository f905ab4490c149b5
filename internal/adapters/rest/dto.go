package rest

import (
	"github.com/quentinrf/engine-monitor/internal/domain"
)

type readingDTO struct {
	Date           string  `json:"date" binding:"required"`
	Ship           string  `json:"ship" binding:"required"`
	EngineName     string  `json:"engine_name" binding:"required"`
	FuelRate       float64 `json:"fuel_rate"`
	LubricantRate  float64 `json:"lubricant_rate"`
	RPM            int     `json:"rpm"`
	OperatingHours float64 `json:"operating_hours"`
	EngineTemp     float64 `json:"engine_temp"`
	OilPressure    float64 `json:"oil_pressure"`
	LoadPct        float64 `json:"load_pct"`
	Vibration      float64 `json:"vibration"`
	Alarm          string  `json:"alarm"`
	Abnormal       bool    `json:"abnormal"`
}

func toDTO(r domain.EngineReading) readingDTO {
	return readingDTO{
		Date:           r.Date.Format(domain.DateLayout),
		Ship:           r.Ship,
		EngineName:     r.EngineName,
		FuelRate:       r.FuelRate,
		LubricantRate:  r.LubricantRate,
		RPM:            r.RPM,
		OperatingHours: r.OperatingHours,
		EngineTemp:     r.EngineTemp,
		OilPressure:    r.OilPressure,
		LoadPct:        r.LoadPct,
		Vibration:      r.Vibration,
		Alarm:          r.Alarm,
		Abnormal:       r.IsAbnormal(),
	}
}

func (d readingDTO) toDomain() (domain.EngineReading, error) {
	date, err := domain.ParseDate(d.Date)
	if err != nil {
		return domain.EngineReading{}, err
	}

	return domain.EngineReading{
		Date:           date,
		Ship:           d.Ship,
		EngineName:     d.EngineName,
		FuelRate:       d.FuelRate,
		LubricantRate:  d.LubricantRate,
		RPM:            d.RPM,
		OperatingHours: d.OperatingHours,
		EngineTemp:     d.EngineTemp,
		OilPressure:    d.OilPressure,
		LoadPct:        d.LoadPct,
		Vibration:      d.Vibration,
		Alarm:          d.Alarm,
	}, nil
}

type summaryDTO struct {
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

type statsDTO struct {
	Count       int        `json:"count"`
	Abnormal    int        `json:"abnormal"`
	FuelRate    summaryDTO `json:"fuel_rate"`
	RPM         summaryDTO `json:"rpm"`
	EngineTemp  summaryDTO `json:"engine_temp"`
	OilPressure summaryDTO `json:"oil_pressure"`
}

func toStatsDTO(s domain.Statistics) statsDTO {
	return statsDTO{
		Count:       s.Count,
		Abnormal:    s.Abnormal,
		FuelRate:    summaryDTO(s.FuelRate),
		RPM:         summaryDTO(s.RPM),
		EngineTemp:  summaryDTO(s.EngineTemp),
		OilPressure: summaryDTO(s.OilPressure),
	}
}
