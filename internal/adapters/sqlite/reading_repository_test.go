package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

func newTestRepo(t *testing.T) *ReadingRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	repo, err := NewReadingRepository(dbPath)
	if err != nil {
		t.Fatalf("failed to create SQLite repo: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func makeReading(d int, ship, engine string, fuel float64) domain.EngineReading {
	return domain.EngineReading{
		Date:           time.Date(2024, 4, d, 0, 0, 0, 0, time.UTC),
		Ship:           ship,
		EngineName:     engine,
		FuelRate:       fuel,
		LubricantRate:  1.5,
		RPM:            1450,
		OperatingHours: 20.25,
		EngineTemp:     91.7,
		OilPressure:    3.3,
		LoadPct:        155,
		Vibration:      0.000125,
		Alarm:          "-",
	}
}

func TestLoad_Empty(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Readings) != 0 {
		t.Errorf("expected no readings, got %d", len(snap.Readings))
	}
	if snap.Version != "" {
		t.Errorf("expected empty version, got %q", snap.Version)
	}
}

func TestSaveAndLoad(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	want := []domain.EngineReading{
		makeReading(3, "Sebuku", "Mesin 1", 300),
		makeReading(1, "Legundi", "Mesin 2", 123.456),
		makeReading(3, "Sebuku", "Mesin 1", 300),
	}
	want[1].Alarm = ""

	version, err := repo.Save(ctx, want, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if version == "" {
		t.Fatal("expected a version after save")
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, snap.Readings); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if snap.Version != version {
		t.Errorf("expected version %q, got %q", version, snap.Version)
	}
}

func TestSave_Overwrites(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	v1, err := repo.Save(ctx, []domain.EngineReading{makeReading(1, "Jatra", "Mesin 1", 1)}, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.Save(ctx, []domain.EngineReading{makeReading(2, "Jatra", "Mesin 2", 2)}, v1); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	snap, _ := repo.Load(ctx)
	if len(snap.Readings) != 1 || snap.Readings[0].EngineName != "Mesin 2" {
		t.Errorf("expected store to hold only the second save, got %+v", snap.Readings)
	}
}

func TestSave_StaleVersionConflicts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Save(ctx, []domain.EngineReading{makeReading(1, "Jatra", "Mesin 1", 1)}, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	_, err := repo.Save(ctx, nil, "")
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	snap, _ := repo.Load(ctx)
	if len(snap.Readings) != 1 {
		t.Errorf("expected store untouched after conflict, got %d readings", len(snap.Readings))
	}
}

func TestLoad_PaddedTextRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	r := makeReading(2, "Jatra ", " Mesin 1", 250)
	r.Alarm = " low oil"
	want := []domain.EngineReading{r}

	if _, err := repo.Save(ctx, want, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(want, snap.Readings); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoad_CorruptRowIsStorageError(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if _, err := repo.Save(ctx, []domain.EngineReading{makeReading(1, "Jatra", "Mesin 1", 1)}, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := repo.db.ExecContext(ctx, `UPDATE engine_readings SET "Tanggal" = 'someday'`); err != nil {
		t.Fatalf("failed to corrupt row: %v", err)
	}

	_, err := repo.Load(ctx)

	var storageErr *domain.StorageError
	if !errors.As(err, &storageErr) {
		t.Fatalf("expected *StorageError, got %v", err)
	}
	var parseErr *domain.ParseError
	if !errors.As(err, &parseErr) || parseErr.Column != domain.ColDate {
		t.Errorf("expected date parse cause, got %v", err)
	}
}
