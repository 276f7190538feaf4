package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hollowmere/warband/internal/game"
	"github.com/hollowmere/warband/internal/storage"
)

// IncrementCounter bumps a faction's per-turn command counter and returns
// the new value.
func (s *Store) IncrementCounter(ctx context.Context, factionID, command string) (game.CommandCounter, error) {
	if err := ctx.Err(); err != nil {
		return game.CommandCounter{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.CommandCounter{}, fmt.Errorf("storage is not configured")
	}
	factionID = strings.TrimSpace(factionID)
	command = strings.TrimSpace(command)
	if factionID == "" {
		return game.CommandCounter{}, fmt.Errorf("faction id is required")
	}
	if command == "" {
		return game.CommandCounter{}, fmt.Errorf("command is required")
	}

	now := time.Now().UTC()
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO command_counters (faction_id, command, count, updated_at)
VALUES (?, ?, 1, ?)
ON CONFLICT(faction_id, command) DO UPDATE SET
	count = count + 1,
	updated_at = excluded.updated_at
`,
		factionID, command, toMillis(now),
	)
	if err != nil {
		return game.CommandCounter{}, fmt.Errorf("increment counter: %w", err)
	}
	return s.GetCounter(ctx, factionID, command)
}

// GetCounter returns one command counter.
func (s *Store) GetCounter(ctx context.Context, factionID, command string) (game.CommandCounter, error) {
	if err := ctx.Err(); err != nil {
		return game.CommandCounter{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.CommandCounter{}, fmt.Errorf("storage is not configured")
	}
	factionID = strings.TrimSpace(factionID)
	command = strings.TrimSpace(command)
	if factionID == "" {
		return game.CommandCounter{}, fmt.Errorf("faction id is required")
	}
	if command == "" {
		return game.CommandCounter{}, fmt.Errorf("command is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT faction_id, command, count, updated_at
  FROM command_counters
 WHERE faction_id = ? AND command = ?`,
		factionID, command,
	)

	var counter game.CommandCounter
	var updatedAt int64
	if err := row.Scan(&counter.FactionID, &counter.Command, &counter.Count, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.CommandCounter{}, storage.ErrNotFound
		}
		return game.CommandCounter{}, fmt.Errorf("get counter: %w", err)
	}
	counter.UpdatedAt = fromMillis(updatedAt)
	return counter, nil
}

// ResetCounters zeroes every counter belonging to a game's factions.
func (s *Store) ResetCounters(ctx context.Context, gameID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}

	_, err := s.sqlDB.ExecContext(ctx, `
UPDATE command_counters
   SET count = 0,
       updated_at = ?
 WHERE faction_id IN (SELECT id FROM factions WHERE game_id = ?)`,
		toMillis(time.Now().UTC()), gameID,
	)
	if err != nil {
		return fmt.Errorf("reset counters: %w", err)
	}
	return nil
}
