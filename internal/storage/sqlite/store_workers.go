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

// PutWorker upserts one worker record.
func (s *Store) PutWorker(ctx context.Context, worker game.Worker) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	id := strings.TrimSpace(worker.ID)
	gameID := strings.TrimSpace(worker.GameID)
	factionID := strings.TrimSpace(worker.FactionID)
	if id == "" {
		return fmt.Errorf("worker id is required")
	}
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if factionID == "" {
		return fmt.Errorf("faction id is required")
	}
	if worker.CreatedAt.IsZero() {
		worker.CreatedAt = time.Now().UTC()
	}
	if worker.UpdatedAt.IsZero() {
		worker.UpdatedAt = worker.CreatedAt
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO workers (
	id, game_id, faction_id, building_id, kind, experience, availability,
	efficiency, deploy_order, created_at, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	game_id = excluded.game_id,
	faction_id = excluded.faction_id,
	building_id = excluded.building_id,
	kind = excluded.kind,
	experience = excluded.experience,
	availability = excluded.availability,
	efficiency = excluded.efficiency,
	deploy_order = excluded.deploy_order,
	updated_at = excluded.updated_at
`,
		id,
		gameID,
		factionID,
		strings.TrimSpace(worker.BuildingID),
		int(worker.Kind),
		worker.Experience,
		int(worker.Availability),
		worker.Efficiency,
		worker.DeployOrder,
		toMillis(worker.CreatedAt),
		toMillis(worker.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put worker: %w", err)
	}
	return nil
}

// GetWorker returns one worker by id.
func (s *Store) GetWorker(ctx context.Context, id string) (game.Worker, error) {
	if err := ctx.Err(); err != nil {
		return game.Worker{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.Worker{}, fmt.Errorf("storage is not configured")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return game.Worker{}, fmt.Errorf("worker id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT id, game_id, faction_id, building_id, kind, experience, availability,
       efficiency, deploy_order, created_at, updated_at
  FROM workers
 WHERE id = ?`,
		id,
	)
	return scanWorker(row.Scan)
}

// ListWorkers returns the workers of one game ordered by id.
func (s *Store) ListWorkers(ctx context.Context, gameID string) ([]game.Worker, error) {
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
SELECT id, game_id, faction_id, building_id, kind, experience, availability,
       efficiency, deploy_order, created_at, updated_at
  FROM workers
 WHERE game_id = ?
 ORDER BY id ASC`,
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("list workers: %w", err)
	}
	defer rows.Close()
	return collectWorkers(rows)
}

// ListWorkersByBuilding returns the workers assigned to one building ordered
// by deployment order.
func (s *Store) ListWorkersByBuilding(ctx context.Context, buildingID string) ([]game.Worker, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	buildingID = strings.TrimSpace(buildingID)
	if buildingID == "" {
		return nil, fmt.Errorf("building id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, game_id, faction_id, building_id, kind, experience, availability,
       efficiency, deploy_order, created_at, updated_at
  FROM workers
 WHERE building_id = ?
 ORDER BY deploy_order ASC, id ASC`,
		buildingID,
	)
	if err != nil {
		return nil, fmt.Errorf("list building workers: %w", err)
	}
	defer rows.Close()
	return collectWorkers(rows)
}

func collectWorkers(rows *sql.Rows) ([]game.Worker, error) {
	var out []game.Worker
	for rows.Next() {
		worker, err := scanWorker(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, worker)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("collect workers: %w", err)
	}
	return out, nil
}

func scanWorker(scan func(dest ...any) error) (game.Worker, error) {
	var worker game.Worker
	var kind, availability int
	var createdAt, updatedAt int64
	err := scan(
		&worker.ID,
		&worker.GameID,
		&worker.FactionID,
		&worker.BuildingID,
		&kind,
		&worker.Experience,
		&availability,
		&worker.Efficiency,
		&worker.DeployOrder,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Worker{}, storage.ErrNotFound
		}
		return game.Worker{}, fmt.Errorf("scan worker: %w", err)
	}
	worker.Kind = game.WorkerKind(kind)
	worker.Availability = game.Availability(availability)
	worker.CreatedAt = fromMillis(createdAt)
	worker.UpdatedAt = fromMillis(updatedAt)
	return worker, nil
}
