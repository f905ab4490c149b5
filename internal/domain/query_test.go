package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func day(d int) time.Time {
	return time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC)
}

func reading(d int, ship, engine string, fuel float64) EngineReading {
	return EngineReading{Date: day(d), Ship: ship, EngineName: engine, FuelRate: fuel}
}

func TestAppend(t *testing.T) {
	existing := []EngineReading{reading(1, "Sebuku", "Mesin 1", 1), reading(2, "Sebuku", "Mesin 1", 2)}
	incoming := []EngineReading{reading(1, "Sebuku", "Mesin 1", 1), reading(3, "Jatra", "Mesin 2", 3)}
	existingCopy := append([]EngineReading(nil), existing...)

	got := Append(existing, incoming)

	if len(got) != len(existing)+len(incoming) {
		t.Fatalf("expected %d readings, got %d", len(existing)+len(incoming), len(got))
	}
	if diff := cmp.Diff(existing, got[:len(existing)]); diff != "" {
		t.Errorf("existing prefix mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(incoming, got[len(existing):]); diff != "" {
		t.Errorf("incoming suffix mismatch (-want +got):\n%s", diff)
	}

	got[0].FuelRate = 999
	if diff := cmp.Diff(existingCopy, existing); diff != "" {
		t.Errorf("Append mutated its input (-want +got):\n%s", diff)
	}
}

func TestAppend_Empty(t *testing.T) {
	if got := Append(nil, nil); len(got) != 0 {
		t.Errorf("expected empty result, got %d", len(got))
	}
}

func TestFilterReadings_SingleShip(t *testing.T) {
	store := []EngineReading{
		reading(1, "Sebuku", "Mesin 1", 1),
		reading(1, "Sebuku", "Mesin 2", 2),
		reading(1, "Legundi", "Mesin 1", 3),
		reading(2, "Sebuku", "Mesin 1", 4),
		reading(2, "Legundi", "Mesin 2", 5),
		reading(3, "Sebuku", "Mesin 1", 6),
	}

	got := FilterReadings(store, ShipFilter("Sebuku", "Mesin 1"))

	want := []EngineReading{store[0], store[3], store[5]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filtered readings mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterReadings_ShipSet(t *testing.T) {
	store := []EngineReading{
		reading(1, "Sebuku", "Mesin 1", 1),
		reading(1, "Jatra", "Mesin 1", 2),
		reading(1, "Legundi", "Mesin 1", 3),
		reading(2, "Jatra", "Mesin 2", 4),
	}

	got := FilterReadings(store, Filter{Ships: []string{"Jatra", "Sebuku"}, Engine: "Mesin 1"})

	want := []EngineReading{store[0], store[1]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("filtered readings mismatch (-want +got):\n%s", diff)
	}
}

func TestFilterReadings_NoShipsMatchesAllShips(t *testing.T) {
	store := []EngineReading{
		reading(1, "Sebuku", "Mesin 1", 1),
		reading(1, "Jatra", "Mesin 2", 2),
		reading(1, "Legundi", "Mesin 1", 3),
	}

	got := FilterReadings(store, Filter{Engine: "Mesin 1"})

	if len(got) != 2 {
		t.Errorf("expected 2 readings, got %d", len(got))
	}
}

func TestFilter_Validate(t *testing.T) {
	if err := (Filter{Ships: []string{"Jatra"}}).Validate(); !errors.Is(err, ErrInvalidFilter) {
		t.Errorf("expected ErrInvalidFilter, got %v", err)
	}
	if err := ShipFilter("Jatra", "Mesin 1").Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestSortByDateDescending_Stable(t *testing.T) {
	in := []EngineReading{
		reading(1, "Sebuku", "Mesin 1", 1),
		reading(3, "Sebuku", "Mesin 1", 2),
		reading(2, "Sebuku", "Mesin 1", 3),
		reading(3, "Sebuku", "Mesin 1", 4),
		reading(1, "Sebuku", "Mesin 1", 5),
		reading(3, "Sebuku", "Mesin 1", 6),
	}

	got := SortByDateDescending(in)

	var fuel []float64
	for _, r := range got {
		fuel = append(fuel, r.FuelRate)
	}
	if diff := cmp.Diff([]float64{2, 4, 6, 3, 1, 5}, fuel); diff != "" {
		t.Errorf("sort order mismatch (-want +got):\n%s", diff)
	}

	if in[0].FuelRate != 1 || in[1].FuelRate != 2 {
		t.Error("SortByDateDescending reordered its input")
	}
}

func TestShipsAndEngines(t *testing.T) {
	store := []EngineReading{
		reading(1, "Sebuku", "Mesin 2", 1),
		reading(1, "Jatra", "Mesin 1", 2),
		reading(1, "Sebuku", "Mesin 1", 3),
		reading(2, "Sebuku", "Mesin 2", 4),
	}

	if diff := cmp.Diff([]string{"Sebuku", "Jatra"}, Ships(store)); diff != "" {
		t.Errorf("ships mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mesin 2", "Mesin 1"}, Engines(store, []string{"Sebuku"})); diff != "" {
		t.Errorf("engines mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"Mesin 1"}, Engines(store, []string{"Jatra"})); diff != "" {
		t.Errorf("engines mismatch (-want +got):\n%s", diff)
	}
}

func TestReportName(t *testing.T) {
	tests := []struct {
		filter Filter
		want   string
	}{
		{filter: ShipFilter("Sebuku", "Mesin 1"), want: "laporan_Sebuku_Mesin 1.xlsx"},
		{filter: Filter{Ships: []string{"Jatra", "Legundi"}, Engine: "Mesin 2"}, want: "laporan_Jatra_Legundi_Mesin 2.xlsx"},
		{filter: Filter{Engine: "Mesin 2"}, want: "laporan_Mesin 2.xlsx"},
		{filter: ShipFilter("../etc", "a/b"), want: "laporan_--etc_a-b.xlsx"},
	}

	for _, tt := range tests {
		if got := ReportName(tt.filter); got != tt.want {
			t.Errorf("ReportName(%+v) = %q, want %q", tt.filter, got, tt.want)
		}
	}
}

func TestSummarize(t *testing.T) {
	in := []EngineReading{
		{FuelRate: 300, RPM: 1000, EngineTemp: 80, OilPressure: 4},
		{FuelRate: 600, RPM: 2000, EngineTemp: 100, OilPressure: 2},
	}

	stats := Summarize(in)

	if stats.Count != 2 || stats.Abnormal != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if stats.FuelRate != (Summary{Average: 450, Min: 300, Max: 600}) {
		t.Errorf("unexpected fuel summary: %+v", stats.FuelRate)
	}
	if stats.RPM != (Summary{Average: 1500, Min: 1000, Max: 2000}) {
		t.Errorf("unexpected rpm summary: %+v", stats.RPM)
	}

	if empty := Summarize(nil); empty != (Statistics{}) {
		t.Errorf("expected zero statistics, got %+v", empty)
	}
}
