package domain

import (
	"sort"
	"strings"
)

// Append returns existing followed by incoming as a new slice.
// No dedup, no sorting, no range checks.
func Append(existing, incoming []EngineReading) []EngineReading {
	out := make([]EngineReading, 0, len(existing)+len(incoming))
	out = append(out, existing...)
	return append(out, incoming...)
}

// Filter selects readings for one engine name on one or more ships.
// An empty Ships list places no constraint on the ship.
type Filter struct {
	Ships  []string
	Engine string
}

// ShipFilter is the single-ship predicate used by the dashboard selector
func ShipFilter(ship, engine string) Filter {
	return Filter{Ships: []string{ship}, Engine: engine}
}

// Validate checks the filter has its engine name
func (f Filter) Validate() error {
	if strings.TrimSpace(f.Engine) == "" {
		return ErrInvalidFilter
	}
	return nil
}

// Matches reports whether r satisfies the filter
func (f Filter) Matches(r EngineReading) bool {
	if r.EngineName != f.Engine {
		return false
	}
	if len(f.Ships) == 0 {
		return true
	}
	for _, s := range f.Ships {
		if r.Ship == s {
			return true
		}
	}
	return false
}

// FilterReadings returns the matching subsequence, original order preserved
func FilterReadings(readings []EngineReading, f Filter) []EngineReading {
	out := make([]EngineReading, 0)
	for _, r := range readings {
		if f.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortByDateDescending returns a copy sorted newest first.
// Readings sharing a date keep their relative order.
func SortByDateDescending(readings []EngineReading) []EngineReading {
	out := make([]EngineReading, len(readings))
	copy(out, readings)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.After(out[j].Date)
	})
	return out
}

// Ships lists distinct ship names in order of first appearance
func Ships(readings []EngineReading) []string {
	seen := make(map[string]bool)
	var ships []string
	for _, r := range readings {
		if !seen[r.Ship] {
			seen[r.Ship] = true
			ships = append(ships, r.Ship)
		}
	}
	return ships
}

// Engines lists distinct engine names recorded for the given ships
// (all ships when none given), in order of first appearance
func Engines(readings []EngineReading, ships []string) []string {
	f := Filter{Ships: ships}
	seen := make(map[string]bool)
	var engines []string
	for _, r := range readings {
		f.Engine = r.EngineName
		if !f.Matches(r) || seen[r.EngineName] {
			continue
		}
		seen[r.EngineName] = true
		engines = append(engines, r.EngineName)
	}
	return engines
}

// ReportName derives the export file name from the active filter
func ReportName(f Filter) string {
	parts := []string{"laporan"}
	if len(f.Ships) > 0 {
		parts = append(parts, strings.Join(f.Ships, "_"))
	}
	parts = append(parts, f.Engine)
	return reportNameReplacer.Replace(strings.Join(parts, "_")) + ".xlsx"
}

var reportNameReplacer = strings.NewReplacer("/", "-", "\\", "-", "..", "-")
