package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/hollowmere/warband/internal/game"
	"github.com/hollowmere/warband/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "warband.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store
}

func TestOpenRequiresPath(t *testing.T) {
	t.Parallel()

	if _, err := Open("  "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestChalkboardRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	startedAt := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	board := game.Chalkboard{
		GameID:      "g1",
		State:       game.ScheduleStateOngoing,
		CurrentTurn: 7,
		TurnLimit:   30,
		StartDate:   &startedAt,
		UpdatedAt:   startedAt,
	}
	if err := store.PutChalkboard(ctx, board); err != nil {
		t.Fatalf("put chalkboard: %v", err)
	}

	got, err := store.GetChalkboard(ctx, "g1")
	if err != nil {
		t.Fatalf("get chalkboard: %v", err)
	}
	if got.State != game.ScheduleStateOngoing || got.CurrentTurn != 7 || got.TurnLimit != 30 {
		t.Fatalf("chalkboard = %+v", got)
	}
	if got.StartDate == nil || !got.StartDate.Equal(startedAt) {
		t.Fatalf("start date = %v, want %v", got.StartDate, startedAt)
	}
	if got.EndDate != nil {
		t.Fatalf("end date = %v, want nil", got.EndDate)
	}

	// Upsert replaces the row in place.
	board.CurrentTurn = 8
	if err := store.PutChalkboard(ctx, board); err != nil {
		t.Fatalf("put chalkboard again: %v", err)
	}
	got, err = store.GetChalkboard(ctx, "g1")
	if err != nil {
		t.Fatalf("get chalkboard after upsert: %v", err)
	}
	if got.CurrentTurn != 8 {
		t.Fatalf("current turn = %d, want 8", got.CurrentTurn)
	}
}

func TestGetChalkboardNotFound(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	if _, err := store.GetChalkboard(context.Background(), "missing"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error = %v, want %v", err, storage.ErrNotFound)
	}
}

func TestFactionRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	for _, faction := range []game.Faction{
		{ID: "f1", GameID: "g1", Name: "Hollowmere", CreatedAt: now, UpdatedAt: now},
		{ID: "f2", GameID: "g1", Name: "Thornwald", CreatedAt: now, UpdatedAt: now},
		{ID: "f3", GameID: "g2", Name: "Elsewhere", CreatedAt: now, UpdatedAt: now},
	} {
		if err := store.PutFaction(ctx, faction); err != nil {
			t.Fatalf("put faction %s: %v", faction.ID, err)
		}
	}

	got, err := store.GetFaction(ctx, "f1")
	if err != nil {
		t.Fatalf("get faction: %v", err)
	}
	if got.Name != "Hollowmere" || !got.CreatedAt.Equal(now) {
		t.Fatalf("faction = %+v", got)
	}

	factions, err := store.ListFactions(ctx, "g1")
	if err != nil {
		t.Fatalf("list factions: %v", err)
	}
	if len(factions) != 2 || factions[0].ID != "f1" || factions[1].ID != "f2" {
		t.Fatalf("factions = %+v, want f1 and f2 in order", factions)
	}
}

func TestBuildingRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	building := game.Building{ID: "b1", GameID: "g1", FactionID: "f1", Kind: "farm", Name: "East Farm"}
	if err := store.PutBuilding(ctx, building); err != nil {
		t.Fatalf("put building: %v", err)
	}

	got, err := store.GetBuilding(ctx, "b1")
	if err != nil {
		t.Fatalf("get building: %v", err)
	}
	if got.Kind != "farm" || got.FactionID != "f1" {
		t.Fatalf("building = %+v", got)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("created_at not defaulted")
	}

	buildings, err := store.ListBuildings(ctx, "g1")
	if err != nil {
		t.Fatalf("list buildings: %v", err)
	}
	if len(buildings) != 1 {
		t.Fatalf("buildings = %+v, want one", buildings)
	}
}

func TestWorkerRoundTripAndDeployOrder(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	for _, worker := range []game.Worker{
		{ID: "w1", GameID: "g1", FactionID: "f1", BuildingID: "b1", Kind: game.WorkerKindCrew, Availability: game.AvailabilityDeployed, Efficiency: 4, DeployOrder: 2},
		{ID: "w2", GameID: "g1", FactionID: "f1", BuildingID: "b1", Kind: game.WorkerKindLivestock, Availability: game.AvailabilityDeployed, Efficiency: 6, DeployOrder: 1},
		{ID: "w3", GameID: "g1", FactionID: "f1", Kind: game.WorkerKindCrew, Availability: game.AvailabilityStandby},
	} {
		if err := store.PutWorker(ctx, worker); err != nil {
			t.Fatalf("put worker %s: %v", worker.ID, err)
		}
	}

	got, err := store.GetWorker(ctx, "w2")
	if err != nil {
		t.Fatalf("get worker: %v", err)
	}
	if got.Kind != game.WorkerKindLivestock || got.Efficiency != 6 {
		t.Fatalf("worker = %+v", got)
	}

	assigned, err := store.ListWorkersByBuilding(ctx, "b1")
	if err != nil {
		t.Fatalf("list building workers: %v", err)
	}
	if len(assigned) != 2 || assigned[0].ID != "w2" || assigned[1].ID != "w1" {
		t.Fatalf("assigned = %+v, want w2 then w1 by deploy order", assigned)
	}

	all, err := store.ListWorkers(ctx, "g1")
	if err != nil {
		t.Fatalf("list workers: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("workers = %+v, want three", all)
	}
}

func TestResourceRoundTrip(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()

	if err := store.PutResource(ctx, game.ResourceEntry{FactionID: "f1", Category: "water", Amount: 10}); err != nil {
		t.Fatalf("put resource: %v", err)
	}
	if err := store.PutResource(ctx, game.ResourceEntry{FactionID: "f1", Category: "food", Amount: -3}); err != nil {
		t.Fatalf("put negative resource: %v", err)
	}

	got, err := store.GetResource(ctx, "f1", "food")
	if err != nil {
		t.Fatalf("get resource: %v", err)
	}
	if got.Amount != 0 {
		t.Fatalf("food = %d, want clamped to 0", got.Amount)
	}

	entries, err := store.ListResources(ctx, "f1")
	if err != nil {
		t.Fatalf("list resources: %v", err)
	}
	if len(entries) != 2 || entries[0].Category != "food" || entries[1].Category != "water" {
		t.Fatalf("entries = %+v, want food then water", entries)
	}

	if err := store.DeleteResource(ctx, "f1", "water"); err != nil {
		t.Fatalf("delete resource: %v", err)
	}
	if _, err := store.GetResource(ctx, "f1", "water"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("error after delete = %v, want %v", err, storage.ErrNotFound)
	}
	// Deleting a missing row is a no-op.
	if err := store.DeleteResource(ctx, "f1", "water"); err != nil {
		t.Fatalf("repeat delete: %v", err)
	}
}

func TestCounters(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	if err := store.PutFaction(ctx, game.Faction{ID: "f1", GameID: "g1", Name: "Hollowmere", CreatedAt: now, UpdatedAt: now}); err != nil {
		t.Fatalf("put faction: %v", err)
	}

	for i := 0; i < 3; i++ {
		if _, err := store.IncrementCounter(ctx, "f1", "deploy"); err != nil {
			t.Fatalf("increment counter: %v", err)
		}
	}
	counter, err := store.GetCounter(ctx, "f1", "deploy")
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter.Count != 3 {
		t.Fatalf("count = %d, want 3", counter.Count)
	}

	if err := store.ResetCounters(ctx, "g1"); err != nil {
		t.Fatalf("reset counters: %v", err)
	}
	counter, err = store.GetCounter(ctx, "f1", "deploy")
	if err != nil {
		t.Fatalf("get counter after reset: %v", err)
	}
	if counter.Count != 0 {
		t.Fatalf("count = %d, want 0 after reset", counter.Count)
	}
}

func TestTelemetryAppend(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	event := storage.TelemetryEvent{
		GameID:   "g1",
		Kind:     "turn.resolved",
		Severity: "INFO",
		Message:  "turn 1 resolved",
	}
	if err := store.AppendTelemetryEvent(context.Background(), event); err != nil {
		t.Fatalf("append telemetry event: %v", err)
	}
	if err := store.AppendTelemetryEvent(context.Background(), storage.TelemetryEvent{}); err == nil {
		t.Fatal("expected validation error for empty event")
	}
}

func TestBackupWritesSnapshot(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "warband.db")
	store, err := Open(path)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.PutChalkboard(ctx, game.Chalkboard{GameID: "g1", State: game.ScheduleStateWaiting, TurnLimit: 10}); err != nil {
		t.Fatalf("put chalkboard: %v", err)
	}

	if err := store.Backup(ctx); err != nil {
		t.Fatalf("backup: %v", err)
	}
	if _, err := os.Stat(path + ".bak"); err != nil {
		t.Fatalf("backup file missing: %v", err)
	}

	// A second backup replaces the first.
	if err := store.Backup(ctx); err != nil {
		t.Fatalf("repeat backup: %v", err)
	}

	// The snapshot is a readable database holding the same rows.
	snapshot, err := Open(path + ".bak")
	if err != nil {
		t.Fatalf("open snapshot: %v", err)
	}
	defer snapshot.Close()
	if _, err := snapshot.GetChalkboard(ctx, "g1"); err != nil {
		t.Fatalf("get chalkboard from snapshot: %v", err)
	}
}
