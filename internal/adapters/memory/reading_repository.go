package memory

import (
	"context"
	"strconv"
	"sync"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

// ReadingRepository implements domain.ReadingRepository with in-memory storage
// This is perfect for development - no files or database needed
type ReadingRepository struct {
	mu       sync.RWMutex
	readings []domain.EngineReading
	version  int64
}

// NewReadingRepository creates an empty in-memory repository
func NewReadingRepository() *ReadingRepository {
	return &ReadingRepository{}
}

// Load returns a copy of the stored readings
func (r *ReadingRepository) Load(ctx context.Context) (*domain.Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	readings := make([]domain.EngineReading, len(r.readings))
	copy(readings, r.readings)

	return &domain.Snapshot{Readings: readings, Version: r.versionString()}, nil
}

// Save replaces the stored readings if expectedVersion is current
func (r *ReadingRepository) Save(ctx context.Context, readings []domain.EngineReading, expectedVersion string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if expectedVersion != r.versionString() {
		return "", domain.ErrConflict
	}

	stored := make([]domain.EngineReading, len(readings))
	copy(stored, readings)

	r.readings = stored
	r.version++
	return r.versionString(), nil
}

// versionString is empty until the first save, matching a store that does not exist yet
func (r *ReadingRepository) versionString() string {
	if r.version == 0 {
		return ""
	}
	return strconv.FormatInt(r.version, 10)
}
