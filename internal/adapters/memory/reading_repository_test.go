package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/quentinrf/engine-monitor/internal/domain"
)

func TestLoad_Empty(t *testing.T) {
	repo := NewReadingRepository()

	snap, err := repo.Load(context.Background())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(snap.Readings) != 0 || snap.Version != "" {
		t.Errorf("expected empty snapshot, got %+v", snap)
	}
}

func TestSave_StaleVersionConflicts(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()
	r := domain.EngineReading{Date: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), Ship: "Jatra", EngineName: "Mesin 1"}

	first, _ := repo.Load(ctx)
	second, _ := repo.Load(ctx)

	if _, err := repo.Save(ctx, domain.Append(first.Readings, []domain.EngineReading{r}), first.Version); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	_, err := repo.Save(ctx, domain.Append(second.Readings, []domain.EngineReading{r}), second.Version)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}

	snap, _ := repo.Load(ctx)
	if len(snap.Readings) != 1 {
		t.Errorf("expected 1 reading after conflict, got %d", len(snap.Readings))
	}
}

func TestLoad_ReturnsCopy(t *testing.T) {
	repo := NewReadingRepository()
	ctx := context.Background()

	if _, err := repo.Save(ctx, []domain.EngineReading{{Ship: "Jatra"}}, ""); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	snap, _ := repo.Load(ctx)
	snap.Readings[0].Ship = "changed"

	again, _ := repo.Load(ctx)
	if again.Readings[0].Ship != "Jatra" {
		t.Errorf("store was mutated through a snapshot: %q", again.Readings[0].Ship)
	}
}
