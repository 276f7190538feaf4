// Package telemetry records operational events from the engine.
package telemetry

import (
	"context"
	"log"
	"time"

	"github.com/hollowmere/warband/internal/storage"
)

// Severity describes the telemetry severity level.
type Severity string

const (
	SeverityInfo  Severity = "INFO"
	SeverityWarn  Severity = "WARN"
	SeverityError Severity = "ERROR"
)

// Emitter records operational telemetry events through the store.
type Emitter struct {
	store storage.TelemetryStore
	clock func() time.Time
}

// NewEmitter creates a new telemetry emitter.
func NewEmitter(store storage.TelemetryStore) *Emitter {
	return &Emitter{store: store, clock: time.Now}
}

// Emit records a telemetry event. It is a no-op when the emitter or its
// store is nil, and a failed append is logged rather than surfaced: losing
// a telemetry row must never fail a turn.
func (e *Emitter) Emit(ctx context.Context, gameID, kind string, severity Severity, message string) {
	if e == nil || e.store == nil {
		return
	}
	clock := e.clock
	if clock == nil {
		clock = time.Now
	}
	event := storage.TelemetryEvent{
		GameID:    gameID,
		Kind:      kind,
		Severity:  string(severity),
		Message:   message,
		Timestamp: clock().UTC(),
	}
	if err := e.store.AppendTelemetryEvent(ctx, event); err != nil {
		log.Printf("append telemetry event game_id=%s kind=%s: %v", gameID, kind, err)
	}
}
