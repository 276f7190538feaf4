// Package announce defines the boundary between the engine and the
// announcement collaborator that renders turn results to players.
package announce

import (
	"context"
	"log"

	"github.com/hollowmere/warband/internal/economy"
)

// Scope addresses an announcement to one game instance's audience.
type Scope struct {
	GameID string
}

// Announcer delivers engine output to players. Calls are fire-and-forget;
// the engine never consumes a return value, and implementations handle
// their own delivery failures.
type Announcer interface {
	AnnounceText(ctx context.Context, message string, scope Scope)
	AnnounceReport(ctx context.Context, report economy.Report, scope Scope)
}

// LogAnnouncer writes announcements to the process log. It backs local
// development and tests.
type LogAnnouncer struct{}

// AnnounceText logs a plain text announcement.
func (LogAnnouncer) AnnounceText(_ context.Context, message string, scope Scope) {
	log.Printf("announce game_id=%s message=%q", scope.GameID, message)
}

// AnnounceReport logs a rendered turn report.
func (LogAnnouncer) AnnounceReport(_ context.Context, report economy.Report, scope Scope) {
	log.Printf("announce game_id=%s report=%q", scope.GameID, report.Render())
}

// Multi fans announcements out to several announcers.
type Multi []Announcer

// AnnounceText forwards a text announcement to every announcer.
func (m Multi) AnnounceText(ctx context.Context, message string, scope Scope) {
	for _, a := range m {
		a.AnnounceText(ctx, message, scope)
	}
}

// AnnounceReport forwards a report to every announcer.
func (m Multi) AnnounceReport(ctx context.Context, report economy.Report, scope Scope) {
	for _, a := range m {
		a.AnnounceReport(ctx, report, scope)
	}
}
