// Package turn advances game time. The scheduler owns the chalkboard state
// machine, a wall-clock trigger, and the two-phase turn commit that runs
// production before the turn increment and worker bookkeeping after it.
package turn

import (
	"fmt"
	"time"
)

// Trigger is the fixed wall-clock schedule for automatic turn resolution.
// An empty DaysOfWeek fires every day.
type Trigger struct {
	Hour       int
	Minute     int
	DaysOfWeek []time.Weekday
}

// Validate checks the trigger describes a real time of day.
func (t Trigger) Validate() error {
	if t.Hour < 0 || t.Hour > 23 {
		return fmt.Errorf("trigger hour %d outside [0, 23]", t.Hour)
	}
	if t.Minute < 0 || t.Minute > 59 {
		return fmt.Errorf("trigger minute %d outside [0, 59]", t.Minute)
	}
	return nil
}

// Next returns the first trigger instant strictly after the given time.
func (t Trigger) Next(after time.Time) time.Time {
	candidate := time.Date(after.Year(), after.Month(), after.Day(), t.Hour, t.Minute, 0, 0, after.Location())
	for i := 0; i < 8; i++ {
		if candidate.After(after) && t.matchesDay(candidate.Weekday()) {
			return candidate
		}
		candidate = candidate.AddDate(0, 0, 1)
	}
	// Unreachable: any weekday filter matches within seven days.
	return candidate
}

func (t Trigger) matchesDay(day time.Weekday) bool {
	if len(t.DaysOfWeek) == 0 {
		return true
	}
	for _, d := range t.DaysOfWeek {
		if d == day {
			return true
		}
	}
	return false
}
