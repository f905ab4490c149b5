package domain

import (
	"context"
)

// Snapshot is a copy of the persisted store together with its version token
type Snapshot struct {
	Readings []EngineReading
	Version  string
}

// ReadingRepository defines how the store is loaded and overwritten.
// This is a PORT - adapters (CSV, SQLite, Memory) will implement it
type ReadingRepository interface {
	// Load returns the whole store. A store that does not exist yet is an
	// empty snapshot with an empty version, not an error.
	Load(ctx context.Context) (*Snapshot, error)

	// Save replaces the whole store with readings. expectedVersion must be the
	// version of the snapshot the readings were derived from; if the store has
	// changed since, Save fails with ErrConflict and leaves it untouched.
	Save(ctx context.Context, readings []EngineReading, expectedVersion string) (string, error)
}
