package game

import "time"

// WorkerKind distinguishes crew from livestock. Both share the availability
// lifecycle; they roll efficiency on different dice categories.
type WorkerKind int

const (
	// WorkerKindUnspecified represents an invalid worker kind value.
	WorkerKindUnspecified WorkerKind = iota
	// WorkerKindCrew indicates a crew member.
	WorkerKindCrew
	// WorkerKindLivestock indicates a livestock animal.
	WorkerKindLivestock
)

func (k WorkerKind) String() string {
	switch k {
	case WorkerKindCrew:
		return "crew"
	case WorkerKindLivestock:
		return "livestock"
	default:
		return "unspecified"
	}
}

// Availability is the worker lifecycle state. Workers cycle
// UNAVAILABLE -> STANDBY -> DEPLOYED -> UNAVAILABLE across turns.
type Availability int

const (
	// AvailabilityUnspecified represents an invalid availability value.
	AvailabilityUnspecified Availability = iota
	// AvailabilityUnavailable indicates the worker rests until next turn.
	AvailabilityUnavailable
	// AvailabilityStandby indicates the worker holds a fresh efficiency
	// roll and waits for assignment.
	AvailabilityStandby
	// AvailabilityDeployed indicates the worker is assigned to a building
	// for the current turn.
	AvailabilityDeployed
)

func (a Availability) String() string {
	switch a {
	case AvailabilityUnavailable:
		return "unavailable"
	case AvailabilityStandby:
		return "standby"
	case AvailabilityDeployed:
		return "deployed"
	default:
		return "unspecified"
	}
}

// Worker represents a crew member or livestock animal. Efficiency holds the
// realized dice roll for the current turn only; the scheduler recomputes it
// every turn and never carries it over.
type Worker struct {
	ID           string
	GameID       string
	FactionID    string
	BuildingID   string // empty when unassigned
	Kind         WorkerKind
	Experience   int
	Availability Availability
	Efficiency   int
	DeployOrder  int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Deployed reports whether the worker is assigned to a building this turn.
func (w Worker) Deployed() bool {
	return w.Availability == AvailabilityDeployed && w.BuildingID != ""
}
