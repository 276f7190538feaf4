// Package gamefakes provides lightweight in-memory storage fakes for tests.
package gamefakes

import (
	"context"
	"errors"
	"sort"

	"github.com/hollowmere/warband/internal/game"
	"github.com/hollowmere/warband/internal/storage"
)

// Store is an in-memory storage.Store fake. Zero coordination: the engine
// serializes access, so the fake keeps plain maps.
type Store struct {
	Chalkboards map[string]game.Chalkboard
	Factions    map[string]game.Faction
	Buildings   map[string]game.Building
	Workers     map[string]game.Worker
	Resources   map[string]game.ResourceEntry
	Counters    map[string]game.CommandCounter
	Telemetry   []storage.TelemetryEvent
	Backups     int

	// FailPuts forces every mutation to fail, for persistence-failure
	// paths.
	FailPuts bool
	// FailBackup forces Backup to fail.
	FailBackup bool
}

var errInjected = errors.New("injected persistence failure")

// NewStore constructs a Store fake with initialized state maps.
func NewStore() *Store {
	return &Store{
		Chalkboards: make(map[string]game.Chalkboard),
		Factions:    make(map[string]game.Faction),
		Buildings:   make(map[string]game.Building),
		Workers:     make(map[string]game.Worker),
		Resources:   make(map[string]game.ResourceEntry),
		Counters:    make(map[string]game.CommandCounter),
	}
}

func resourceKey(factionID, category string) string {
	return factionID + ":" + category
}

func (s *Store) PutChalkboard(_ context.Context, board game.Chalkboard) error {
	if s.FailPuts {
		return errInjected
	}
	s.Chalkboards[board.GameID] = board
	return nil
}

func (s *Store) GetChalkboard(_ context.Context, gameID string) (game.Chalkboard, error) {
	board, ok := s.Chalkboards[gameID]
	if !ok {
		return game.Chalkboard{}, storage.ErrNotFound
	}
	return board, nil
}

func (s *Store) PutFaction(_ context.Context, faction game.Faction) error {
	if s.FailPuts {
		return errInjected
	}
	s.Factions[faction.ID] = faction
	return nil
}

func (s *Store) GetFaction(_ context.Context, id string) (game.Faction, error) {
	faction, ok := s.Factions[id]
	if !ok {
		return game.Faction{}, storage.ErrNotFound
	}
	return faction, nil
}

func (s *Store) ListFactions(_ context.Context, gameID string) ([]game.Faction, error) {
	var out []game.Faction
	for _, faction := range s.Factions {
		if faction.GameID == gameID {
			out = append(out, faction)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PutBuilding(_ context.Context, building game.Building) error {
	if s.FailPuts {
		return errInjected
	}
	s.Buildings[building.ID] = building
	return nil
}

func (s *Store) GetBuilding(_ context.Context, id string) (game.Building, error) {
	building, ok := s.Buildings[id]
	if !ok {
		return game.Building{}, storage.ErrNotFound
	}
	return building, nil
}

func (s *Store) ListBuildings(_ context.Context, gameID string) ([]game.Building, error) {
	var out []game.Building
	for _, building := range s.Buildings {
		if building.GameID == gameID {
			out = append(out, building)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) PutWorker(_ context.Context, worker game.Worker) error {
	if s.FailPuts {
		return errInjected
	}
	s.Workers[worker.ID] = worker
	return nil
}

func (s *Store) GetWorker(_ context.Context, id string) (game.Worker, error) {
	worker, ok := s.Workers[id]
	if !ok {
		return game.Worker{}, storage.ErrNotFound
	}
	return worker, nil
}

func (s *Store) ListWorkers(_ context.Context, gameID string) ([]game.Worker, error) {
	var out []game.Worker
	for _, worker := range s.Workers {
		if worker.GameID == gameID {
			out = append(out, worker)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) ListWorkersByBuilding(_ context.Context, buildingID string) ([]game.Worker, error) {
	var out []game.Worker
	for _, worker := range s.Workers {
		if worker.BuildingID == buildingID {
			out = append(out, worker)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DeployOrder < out[j].DeployOrder })
	return out, nil
}

func (s *Store) PutResource(_ context.Context, entry game.ResourceEntry) error {
	if s.FailPuts {
		return errInjected
	}
	entry.Clamp()
	s.Resources[resourceKey(entry.FactionID, entry.Category)] = entry
	return nil
}

func (s *Store) GetResource(_ context.Context, factionID, category string) (game.ResourceEntry, error) {
	entry, ok := s.Resources[resourceKey(factionID, category)]
	if !ok {
		return game.ResourceEntry{}, storage.ErrNotFound
	}
	return entry, nil
}

func (s *Store) ListResources(_ context.Context, factionID string) ([]game.ResourceEntry, error) {
	var out []game.ResourceEntry
	for _, entry := range s.Resources {
		if entry.FactionID == factionID {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Category < out[j].Category })
	return out, nil
}

func (s *Store) DeleteResource(_ context.Context, factionID, category string) error {
	if s.FailPuts {
		return errInjected
	}
	delete(s.Resources, resourceKey(factionID, category))
	return nil
}

func (s *Store) IncrementCounter(_ context.Context, factionID, command string) (game.CommandCounter, error) {
	if s.FailPuts {
		return game.CommandCounter{}, errInjected
	}
	key := factionID + ":" + command
	counter := s.Counters[key]
	counter.FactionID = factionID
	counter.Command = command
	counter.Count++
	s.Counters[key] = counter
	return counter, nil
}

func (s *Store) GetCounter(_ context.Context, factionID, command string) (game.CommandCounter, error) {
	counter, ok := s.Counters[factionID+":"+command]
	if !ok {
		return game.CommandCounter{}, storage.ErrNotFound
	}
	return counter, nil
}

func (s *Store) ResetCounters(_ context.Context, gameID string) error {
	if s.FailPuts {
		return errInjected
	}
	for key, counter := range s.Counters {
		faction, ok := s.Factions[counter.FactionID]
		if ok && faction.GameID != gameID {
			continue
		}
		counter.Count = 0
		s.Counters[key] = counter
	}
	return nil
}

func (s *Store) AppendTelemetryEvent(_ context.Context, event storage.TelemetryEvent) error {
	s.Telemetry = append(s.Telemetry, event)
	return nil
}

func (s *Store) Backup(_ context.Context) error {
	if s.FailBackup {
		return errInjected
	}
	s.Backups++
	return nil
}
