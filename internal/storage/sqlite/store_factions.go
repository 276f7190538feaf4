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

// PutFaction upserts one faction record.
func (s *Store) PutFaction(ctx context.Context, faction game.Faction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(faction.ID)
	gameID := strings.TrimSpace(faction.GameID)
	name := strings.TrimSpace(faction.Name)
	if id == "" {
		return fmt.Errorf("faction id is required")
	}
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if name == "" {
		return fmt.Errorf("name is required")
	}
	if faction.CreatedAt.IsZero() {
		faction.CreatedAt = time.Now().UTC()
	}
	if faction.UpdatedAt.IsZero() {
		faction.UpdatedAt = faction.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO factions (id, game_id, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	game_id = excluded.game_id,
	name = excluded.name,
	updated_at = excluded.updated_at
`,
		id, gameID, name, toMillis(faction.CreatedAt), toMillis(faction.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put faction: %w", err)
	}
	return nil
}

// GetFaction returns one faction by id.
func (s *Store) GetFaction(ctx context.Context, id string) (game.Faction, error) {
	if err := ctx.Err(); err != nil {
		return game.Faction{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.Faction{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return game.Faction{}, fmt.Errorf("faction id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, game_id, name, created_at, updated_at
  FROM factions
 WHERE id = ?`,
		id,
	)
	return scanFaction(row.Scan)
}

// ListFactions returns the factions of one game ordered by id.
func (s *Store) ListFactions(ctx context.Context, gameID string) ([]game.Faction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return nil, fmt.Errorf("game id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, game_id, name, created_at, updated_at
  FROM factions
 WHERE game_id = ?
 ORDER BY id ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list factions: %w", err)
	}
	defer rows.Close()

	var out []game.Faction
	for rows.Next() {
		faction, err := scanFaction(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, faction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list factions: %w", err)
	}
	return out, nil
}

func scanFaction(scan func(dest ...any) error) (game.Faction, error) {
	var faction game.Faction
	var createdAt, updatedAt int64
	if err := scan(&faction.ID, &faction.GameID, &faction.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Faction{}, storage.ErrNotFound
		}
		return game.Faction{}, fmt.Errorf("scan faction: %w", err)
	}
	faction.CreatedAt = fromMillis(createdAt)
	faction.UpdatedAt = fromMillis(updatedAt)
	return faction, nil
}
