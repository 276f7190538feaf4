package game

import (
	"errors"
	"testing"
	"time"
)

func fixedNow() time.Time {
	return time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
}

func fixedID() (string, error) {
	return "pmh6l5wrybvfnbhe4lfitggmsq", nil
}

func TestCreateFaction(t *testing.T) {
	tests := []struct {
		name    string
		input   CreateFactionInput
		wantErr error
	}{
		{name: "valid", input: CreateFactionInput{GameID: "g1", Name: "Hollowmere"}},
		{name: "trims whitespace", input: CreateFactionInput{GameID: "  g1  ", Name: "  Hollowmere  "}},
		{name: "missing game id", input: CreateFactionInput{Name: "Hollowmere"}, wantErr: ErrEmptyGameID},
		{name: "whitespace game id", input: CreateFactionInput{GameID: "   ", Name: "Hollowmere"}, wantErr: ErrEmptyGameID},
		{name: "missing name", input: CreateFactionInput{GameID: "g1"}, wantErr: ErrEmptyName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			faction, err := CreateFaction(tt.input, fixedNow, fixedID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateFaction() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateFaction() error = %v", err)
			}
			if faction.ID == "" {
				t.Error("faction id not generated")
			}
			if faction.GameID != "g1" || faction.Name != "Hollowmere" {
				t.Errorf("faction = %+v, want trimmed g1/Hollowmere", faction)
			}
			if !faction.CreatedAt.Equal(fixedNow()) || !faction.UpdatedAt.Equal(fixedNow()) {
				t.Errorf("timestamps = %v/%v, want %v", faction.CreatedAt, faction.UpdatedAt, fixedNow())
			}
		})
	}
}

func TestCreateFactionIDGeneratorFailure(t *testing.T) {
	failing := func() (string, error) { return "", errors.New("entropy exhausted") }
	if _, err := CreateFaction(CreateFactionInput{GameID: "g1", Name: "Hollowmere"}, fixedNow, failing); err == nil {
		t.Error("CreateFaction() error = nil, want id generation failure")
	}
}

func TestCreateChalkboard(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		board, err := CreateChalkboard(CreateChalkboardInput{GameID: "g1", TurnLimit: 30}, fixedNow, fixedID)
		if err != nil {
			t.Fatalf("CreateChalkboard() error = %v", err)
		}
		if board.State != ScheduleStateWaiting {
			t.Errorf("state = %v, want waiting", board.State)
		}
		if board.CurrentTurn != 0 {
			t.Errorf("current turn = %d, want 0", board.CurrentTurn)
		}
		if board.StartDate != nil || board.EndDate != nil {
			t.Error("dates stamped before the game started")
		}
	})

	t.Run("generates game id when empty", func(t *testing.T) {
		board, err := CreateChalkboard(CreateChalkboardInput{TurnLimit: 30}, fixedNow, fixedID)
		if err != nil {
			t.Fatalf("CreateChalkboard() error = %v", err)
		}
		if board.GameID == "" {
			t.Error("game id not generated")
		}
	})

	t.Run("rejects non-positive turn limit", func(t *testing.T) {
		for _, limit := range []int{0, -5} {
			if _, err := CreateChalkboard(CreateChalkboardInput{GameID: "g1", TurnLimit: limit}, fixedNow, fixedID); err == nil {
				t.Errorf("CreateChalkboard(limit=%d) error = nil, want error", limit)
			}
		}
	})
}

func TestChalkboardTransitions(t *testing.T) {
	tests := []struct {
		name       string
		state      ScheduleState
		op         string
		wantStatus string
		wantOK     bool
		wantState  ScheduleState
	}{
		{name: "start from waiting", state: ScheduleStateWaiting, op: "start", wantStatus: "the game has started", wantOK: true, wantState: ScheduleStateOngoing},
		{name: "start from paused resumes", state: ScheduleStatePaused, op: "start", wantStatus: "the game has resumed", wantOK: true, wantState: ScheduleStateOngoing},
		{name: "start while ongoing rejected", state: ScheduleStateOngoing, op: "start", wantStatus: "the game is already running", wantOK: false, wantState: ScheduleStateOngoing},
		{name: "start after end rejected", state: ScheduleStateEnded, op: "start", wantStatus: "the game has ended and cannot be restarted", wantOK: false, wantState: ScheduleStateEnded},
		{name: "stop from waiting", state: ScheduleStateWaiting, op: "stop", wantStatus: "the game has been paused", wantOK: true, wantState: ScheduleStatePaused},
		{name: "stop from ongoing", state: ScheduleStateOngoing, op: "stop", wantStatus: "the game has been paused", wantOK: true, wantState: ScheduleStatePaused},
		{name: "stop while paused rejected", state: ScheduleStatePaused, op: "stop", wantStatus: "the game is already paused", wantOK: false, wantState: ScheduleStatePaused},
		{name: "stop after end rejected", state: ScheduleStateEnded, op: "stop", wantStatus: "the game has ended", wantOK: false, wantState: ScheduleStateEnded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := Chalkboard{GameID: "g1", State: tt.state, TurnLimit: 10}

			var status string
			var ok bool
			switch tt.op {
			case "start":
				status, ok = board.Start(fixedNow)
			case "stop":
				status, ok = board.Stop(fixedNow)
			}

			if status != tt.wantStatus {
				t.Errorf("status = %q, want %q", status, tt.wantStatus)
			}
			if ok != tt.wantOK {
				t.Errorf("ok = %v, want %v", ok, tt.wantOK)
			}
			if board.State != tt.wantState {
				t.Errorf("state = %v, want %v", board.State, tt.wantState)
			}
		})
	}
}

func TestChalkboardStartStampsDateOnce(t *testing.T) {
	board := Chalkboard{GameID: "g1", State: ScheduleStateWaiting, TurnLimit: 10}
	if _, ok := board.Start(fixedNow); !ok {
		t.Fatal("Start() from waiting rejected")
	}
	startedAt := board.StartDate

	board.Stop(fixedNow)
	if _, ok := board.Start(fixedNow); !ok {
		t.Fatal("Start() from paused rejected")
	}
	if board.StartDate != startedAt {
		t.Error("resume replaced the original start date")
	}
}

func TestChalkboardEnd(t *testing.T) {
	board := Chalkboard{GameID: "g1", State: ScheduleStateOngoing, TurnLimit: 10}
	board.End(fixedNow)
	if board.State != ScheduleStateEnded {
		t.Fatalf("state = %v, want ended", board.State)
	}
	if board.EndDate == nil {
		t.Fatal("end date not stamped")
	}

	endedAt := *board.EndDate
	later := func() time.Time { return fixedNow().Add(time.Hour) }
	board.End(later)
	if !board.EndDate.Equal(endedAt) {
		t.Error("repeated End() moved the end date")
	}
}

func TestTurnLimitReached(t *testing.T) {
	tests := []struct {
		current, limit int
		want           bool
	}{
		{current: 0, limit: 10, want: false},
		{current: 9, limit: 10, want: false},
		{current: 10, limit: 10, want: true},
		{current: 11, limit: 10, want: true},
	}
	for _, tt := range tests {
		board := Chalkboard{CurrentTurn: tt.current, TurnLimit: tt.limit}
		if got := board.TurnLimitReached(); got != tt.want {
			t.Errorf("TurnLimitReached() with %d/%d = %v, want %v", tt.current, tt.limit, got, tt.want)
		}
	}
}

func TestResourceEntryClamp(t *testing.T) {
	entry := ResourceEntry{FactionID: "f1", Category: "water", Amount: -3}
	entry.Clamp()
	if entry.Amount != 0 {
		t.Errorf("amount = %d, want clamped to 0", entry.Amount)
	}
}

func TestWorkerDeployed(t *testing.T) {
	tests := []struct {
		name   string
		worker Worker
		want   bool
	}{
		{name: "deployed with building", worker: Worker{Availability: AvailabilityDeployed, BuildingID: "b1"}, want: true},
		{name: "deployed without building", worker: Worker{Availability: AvailabilityDeployed}, want: false},
		{name: "standby", worker: Worker{Availability: AvailabilityStandby, BuildingID: "b1"}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.worker.Deployed(); got != tt.want {
				t.Errorf("Deployed() = %v, want %v", got, tt.want)
			}
		})
	}
}
