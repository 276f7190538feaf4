package sqlite

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hollowmere/warband/internal/storage"
)

// AppendTelemetryEvent records one operational event.
func (s *Store) AppendTelemetryEvent(ctx context.Context, event storage.TelemetryEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gameID := strings.TrimSpace(event.GameID)
	kind := strings.TrimSpace(event.Kind)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if kind == "" {
		return fmt.Errorf("kind is required")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO telemetry_events (game_id, kind, severity, message, timestamp)
VALUES (?, ?, ?, ?, ?)`,
		gameID, kind, event.Severity, event.Message, toMillis(event.Timestamp),
	)
	if err != nil {
		return fmt.Errorf("append telemetry event: %w", err)
	}
	return nil
}
