package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/hollowmere/warband/internal/id"
)

// ScheduleState is the lifecycle state of a game's turn schedule.
type ScheduleState int

const (
	// ScheduleStateUnspecified represents an invalid schedule state value.
	ScheduleStateUnspecified ScheduleState = iota
	// ScheduleStateWaiting indicates the game has not been armed yet.
	ScheduleStateWaiting
	// ScheduleStateOngoing indicates turns are being resolved on schedule.
	ScheduleStateOngoing
	// ScheduleStatePaused indicates the schedule is suspended.
	ScheduleStatePaused
	// ScheduleStateEnded indicates the game is over. Terminal.
	ScheduleStateEnded
)

func (s ScheduleState) String() string {
	switch s {
	case ScheduleStateWaiting:
		return "waiting"
	case ScheduleStateOngoing:
		return "ongoing"
	case ScheduleStatePaused:
		return "paused"
	case ScheduleStateEnded:
		return "ended"
	default:
		return "unspecified"
	}
}

// Chalkboard is the singleton schedule record of one game instance.
type Chalkboard struct {
	GameID      string
	State       ScheduleState
	CurrentTurn int
	TurnLimit   int
	StartDate   *time.Time // nil until the game starts
	EndDate     *time.Time // nil until the game ends
	UpdatedAt   time.Time
}

// CreateChalkboardInput describes the metadata needed to create a chalkboard.
type CreateChalkboardInput struct {
	GameID    string
	TurnLimit int
}

// CreateChalkboard creates a chalkboard in the WAITING state. An empty game
// id is replaced with a generated one.
func CreateChalkboard(input CreateChalkboardInput, now func() time.Time, idGenerator func() (string, error)) (Chalkboard, error) {
	if now == nil {
		now = time.Now
	}
	if idGenerator == nil {
		idGenerator = id.NewID
	}

	input.GameID = strings.TrimSpace(input.GameID)
	if input.GameID == "" {
		gameID, err := idGenerator()
		if err != nil {
			return Chalkboard{}, fmt.Errorf("generate game id: %w", err)
		}
		input.GameID = gameID
	}
	if input.TurnLimit <= 0 {
		return Chalkboard{}, fmt.Errorf("turn limit must be positive, got %d", input.TurnLimit)
	}

	return Chalkboard{
		GameID:    input.GameID,
		State:     ScheduleStateWaiting,
		TurnLimit: input.TurnLimit,
		UpdatedAt: now().UTC(),
	}, nil
}

// Start transitions the schedule toward ONGOING. The returned status is the
// human-readable outcome handed to the announcement collaborator; rejected
// transitions report through it rather than through an error.
func (c *Chalkboard) Start(now func() time.Time) (status string, started bool) {
	if now == nil {
		now = time.Now
	}
	switch c.State {
	case ScheduleStateOngoing:
		return "the game is already running", false
	case ScheduleStateEnded:
		return "the game has ended and cannot be restarted", false
	case ScheduleStateWaiting:
		startedAt := now().UTC()
		c.State = ScheduleStateOngoing
		c.StartDate = &startedAt
		c.UpdatedAt = startedAt
		return "the game has started", true
	case ScheduleStatePaused:
		c.State = ScheduleStateOngoing
		c.UpdatedAt = now().UTC()
		return "the game has resumed", true
	default:
		return "the game schedule is in an unknown state", false
	}
}

// Stop transitions the schedule to PAUSED. Valid only from WAITING or
// ONGOING; any other state is a no-op with a status message.
func (c *Chalkboard) Stop(now func() time.Time) (status string, stopped bool) {
	if now == nil {
		now = time.Now
	}
	switch c.State {
	case ScheduleStateWaiting, ScheduleStateOngoing:
		c.State = ScheduleStatePaused
		c.UpdatedAt = now().UTC()
		return "the game has been paused", true
	case ScheduleStatePaused:
		return "the game is already paused", false
	case ScheduleStateEnded:
		return "the game has ended", false
	default:
		return "the game schedule is in an unknown state", false
	}
}

// End forces the schedule to ENDED and stamps the end date. Idempotent.
func (c *Chalkboard) End(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	if c.State == ScheduleStateEnded {
		return
	}
	endedAt := now().UTC()
	c.State = ScheduleStateEnded
	c.EndDate = &endedAt
	c.UpdatedAt = endedAt
}

// TurnLimitReached reports whether the current turn has hit the limit.
func (c Chalkboard) TurnLimitReached() bool {
	return c.CurrentTurn >= c.TurnLimit
}
