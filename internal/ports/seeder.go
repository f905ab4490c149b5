package ports

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// Seeder fills an empty store with synthetic readings at startup
type Seeder struct {
	service *ReadingsService
	seed    int64
	days    int
	now     func() time.Time
}

// NewSeeder creates a one-shot seeder covering the last days up to today
func NewSeeder(service *ReadingsService, seed int64, days int) *Seeder {
	return &Seeder{
		service: service,
		seed:    seed,
		days:    days,
		now:     time.Now,
	}
}

// SeedOnce generates a batch unless the store already holds readings.
// It returns the number of readings added.
func (s *Seeder) SeedOnce(ctx context.Context) (int, error) {
	ships, err := s.service.Ships(ctx)
	if err != nil {
		return 0, err
	}
	if len(ships) > 0 {
		log.Info().Int("ships", len(ships)).Msg("store already populated, skipping seed")
		return 0, nil
	}

	start := s.now().AddDate(0, 0, -(s.days - 1))

	log.Info().
		Int64("seed", s.seed).
		Int("days", s.days).
		Msg("seeding store with synthetic readings")

	return s.service.Generate(ctx, s.seed, start, s.days)
}
