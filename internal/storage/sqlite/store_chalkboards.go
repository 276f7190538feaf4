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

// PutChalkboard upserts the schedule record of one game.
func (s *Store) PutChalkboard(ctx context.Context, board game.Chalkboard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	gameID := strings.TrimSpace(board.GameID)
	if gameID == "" {
		return fmt.Errorf("game id is required")
	}
	if board.UpdatedAt.IsZero() {
		board.UpdatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO chalkboards (
	game_id, state, current_turn, turn_limit, start_date, end_date, updated_at
) VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(game_id) DO UPDATE SET
	state = excluded.state,
	current_turn = excluded.current_turn,
	turn_limit = excluded.turn_limit,
	start_date = excluded.start_date,
	end_date = excluded.end_date,
	updated_at = excluded.updated_at
`,
		gameID,
		int(board.State),
		board.CurrentTurn,
		board.TurnLimit,
		toNullMillis(board.StartDate),
		toNullMillis(board.EndDate),
		toMillis(board.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put chalkboard: %w", err)
	}
	return nil
}

// GetChalkboard returns the schedule record of one game.
func (s *Store) GetChalkboard(ctx context.Context, gameID string) (game.Chalkboard, error) {
	if err := ctx.Err(); err != nil {
		return game.Chalkboard{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.Chalkboard{}, fmt.Errorf("storage is not configured")
	}
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return game.Chalkboard{}, fmt.Errorf("game id is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT game_id, state, current_turn, turn_limit, start_date, end_date, updated_at
  FROM chalkboards
 WHERE game_id = ?`,
		gameID,
	)

	var board game.Chalkboard
	var state int
	var startDate, endDate sql.NullInt64
	var updatedAt int64
	err := row.Scan(&board.GameID, &state, &board.CurrentTurn, &board.TurnLimit, &startDate, &endDate, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.Chalkboard{}, storage.ErrNotFound
		}
		return game.Chalkboard{}, fmt.Errorf("get chalkboard: %w", err)
	}

	board.State = game.ScheduleState(state)
	board.StartDate = fromNullMillis(startDate)
	board.EndDate = fromNullMillis(endDate)
	board.UpdatedAt = fromMillis(updatedAt)
	return board, nil
}
