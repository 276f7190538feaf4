// Package storage defines the persistence interfaces for the warband engine.
//
// The engine treats persistence as a typed row store keyed by entity id plus
// filter predicates. Implementations (e.g., SQLite) live in subpackages and
// are injected into the scheduler and resolvers; the engine never reaches
// into module-level state.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/hollowmere/warband/internal/game"
)

// ErrNotFound indicates a requested record is missing.
var ErrNotFound = errors.New("record not found")

// ChalkboardStore persists the per-game schedule record.
type ChalkboardStore interface {
	PutChalkboard(ctx context.Context, board game.Chalkboard) error
	GetChalkboard(ctx context.Context, gameID string) (game.Chalkboard, error)
}

// FactionStore persists faction records.
type FactionStore interface {
	PutFaction(ctx context.Context, faction game.Faction) error
	GetFaction(ctx context.Context, id string) (game.Faction, error)
	ListFactions(ctx context.Context, gameID string) ([]game.Faction, error)
}

// BuildingStore persists building records.
type BuildingStore interface {
	PutBuilding(ctx context.Context, building game.Building) error
	GetBuilding(ctx context.Context, id string) (game.Building, error)
	ListBuildings(ctx context.Context, gameID string) ([]game.Building, error)
}

// WorkerStore persists worker records.
type WorkerStore interface {
	PutWorker(ctx context.Context, worker game.Worker) error
	GetWorker(ctx context.Context, id string) (game.Worker, error)
	ListWorkers(ctx context.Context, gameID string) ([]game.Worker, error)
	// ListWorkersByBuilding returns the workers assigned to one building
	// ordered by deployment order.
	ListWorkersByBuilding(ctx context.Context, buildingID string) ([]game.Worker, error)
}

// ResourceStore persists faction resource ledger entries. Each
// (factionID, category) pair owns one row; amounts never go negative.
type ResourceStore interface {
	PutResource(ctx context.Context, entry game.ResourceEntry) error
	GetResource(ctx context.Context, factionID, category string) (game.ResourceEntry, error)
	ListResources(ctx context.Context, factionID string) ([]game.ResourceEntry, error)
	DeleteResource(ctx context.Context, factionID, category string) error
}

// CounterStore persists per-faction command counters.
type CounterStore interface {
	IncrementCounter(ctx context.Context, factionID, command string) (game.CommandCounter, error)
	GetCounter(ctx context.Context, factionID, command string) (game.CommandCounter, error)
	// ResetCounters zeroes every counter for a game. The scheduler calls
	// it in the after-turn phase.
	ResetCounters(ctx context.Context, gameID string) error
}

// TelemetryEvent is an operational event recorded by the engine.
type TelemetryEvent struct {
	GameID    string
	Kind      string
	Severity  string
	Message   string
	Timestamp time.Time
}

// TelemetryStore appends operational telemetry events.
type TelemetryStore interface {
	AppendTelemetryEvent(ctx context.Context, event TelemetryEvent) error
}

// Store aggregates every persistence concern the engine depends on.
type Store interface {
	ChalkboardStore
	FactionStore
	BuildingStore
	WorkerStore
	ResourceStore
	CounterStore
	TelemetryStore

	// Backup snapshots the durable state before a turn is resolved.
	Backup(ctx context.Context) error
}
