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

// PutBuilding upserts one building record.
func (s *Store) PutBuilding(ctx context.Context, building game.Building) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(building.ID)
	gameID := strings.TrimSpace(building.GameID)
	factionID := strings.TrimSpace(building.FactionID)
	kind := strings.TrimSpace(building.Kind)
	name := strings.TrimSpace(building.Name)
	if id == "" {
		return fmt.Errorf("building id is required")
	}
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if factionID == "" {
		return fmt.Errorf("faction id is required")
	}
	if kind == "" {
		return fmt.Errorf("kind is required")
	}
	if building.CreatedAt.IsZero() {
		building.CreatedAt = time.Now().UTC()
	}
	if building.UpdatedAt.IsZero() {
		building.UpdatedAt = building.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO buildings (id, game_id, faction_id, kind, name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	game_id = excluded.game_id,
	faction_id = excluded.faction_id,
	kind = excluded.kind,
	name = excluded.name,
	updated_at = excluded.updated_at
`,
		id, gameID, factionID, kind, name, toMillis(building.CreatedAt), toMillis(building.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put building: %w", err)
	}
	return nil
}

// GetBuilding returns one building by id.
func (s *Store) GetBuilding(ctx context.Context, id string) (game.Building, error) {
	if err := ctx.Err(); err != nil {
		return game.Building{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.Building{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return game.Building{}, fmt.Errorf("building id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, game_id, faction_id, kind, name, created_at, updated_at
  FROM buildings
 WHERE id = ?`,
		id,
	)
	return scanBuilding(row.Scan)
}

// ListBuildings returns the buildings of one game ordered by id.
func (s *Store) ListBuildings(ctx context.Context, gameID string) ([]game.Building, error) {
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
SELECT id, game_id, faction_id, kind, name, created_at, updated_at
  FROM buildings
 WHERE game_id = ?
 ORDER BY id ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	defer rows.Close()

	var out []game.Building
	for rows.Next() {
		building, err := scanBuilding(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, building)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list buildings: %w", err)
	}
	return out, nil
}

func scanBuilding(scan func(dest ...any) error) (game.Building, error) {
	var building game.Building
	var createdAt, updatedAt int64
	if err := scan(&building.ID, &building.GameID, &building.FactionID, &building.Kind, &building.Name, &createdAt, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Building{}, storage.ErrNotFound
		}
		return game.Building{}, fmt.Errorf("scan building: %w", err)
	}
	building.CreatedAt = fromMillis(createdAt)
	building.UpdatedAt = fromMillis(updatedAt)
	return building, nil
}
