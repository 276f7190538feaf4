// Package game defines the persistent entities of a warband game instance:
// factions, buildings, workers, resource ledger entries, command counters,
// and the chalkboard that tracks turn scheduling.
package game

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hollowmere/warband/internal/id"
)

var (
	// ErrEmptyGameID indicates a missing game id.
	ErrEmptyGameID = errors.New("game id is required")
	// ErrEmptyFactionID indicates a missing faction id.
	ErrEmptyFactionID = errors.New("faction id is required")
	// ErrEmptyName indicates a missing name.
	ErrEmptyName = errors.New("name is required")
)

// Faction represents one competing side in a game.
type Faction struct {
	ID        string
	GameID    string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateFactionInput describes the metadata needed to create a faction.
type CreateFactionInput struct {
	GameID string
	Name   string
}

// CreateFaction creates a faction with a generated ID and timestamps.
func CreateFaction(input CreateFactionInput, now func() time.Time, idGenerator func() (string, error)) (Faction, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.GameID = strings.TrimSpace(input.GameID)
	if input.GameID == "" {
		return Faction{}, ErrEmptyGameID
	}
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return Faction{}, ErrEmptyName
	}

	factionID, err := idGenerator()
	if err != nil {
		return Faction{}, fmt.Errorf("generate faction id: %w", err)
	}

	createdAt := now().UTC()
	return Faction{
		ID:        factionID,
		GameID:    input.GameID,
		Name:      input.Name,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}, nil
}

// Building represents a production site owned by a faction. Kind selects the
// production recipe applied each turn.
type Building struct {
	ID        string
	GameID    string
	FactionID string
	Kind      string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ResourceEntry is a faction's balance of one resource category. Amounts
// are clamped at zero and never go negative.
type ResourceEntry struct {
	FactionID string
	Category  string
	Amount    int
	UpdatedAt time.Time
}

// Clamp floors the amount at zero.
func (e *ResourceEntry) Clamp() {
	if e.Amount < 0 {
		e.Amount = 0
	}
}

// CommandCounter tracks how many times a faction used one command during the
// current turn. The scheduler resets all counters after each turn.
type CommandCounter struct {
	FactionID string
	Command   string
	Count     int
	UpdatedAt time.Time
}
