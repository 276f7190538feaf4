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

// PutResource upserts one resource ledger row. The amount is floored at
// zero before it hits the table.
func (s *Store) PutResource(ctx context.Context, entry game.ResourceEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	factionID := strings.TrimSpace(entry.FactionID)
	category := strings.TrimSpace(entry.Category)
	if factionID == "" {
		return fmt.Errorf("faction id is required")
	}
	if category == "" {
		return fmt.Errorf("category is required")
	}
	entry.Clamp()
	if entry.UpdatedAt.IsZero() {
		entry.UpdatedAt = time.Now().UTC()
	}

	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO resources (faction_id, category, amount, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(faction_id, category) DO UPDATE SET
	amount = excluded.amount,
	updated_at = excluded.updated_at
`,
		factionID, category, entry.Amount, toMillis(entry.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("put resource: %w", err)
	}
	return nil
}

// GetResource returns one ledger row.
func (s *Store) GetResource(ctx context.Context, factionID, category string) (game.ResourceEntry, error) {
	if err := ctx.Err(); err != nil {
		return game.ResourceEntry{}, err
	}
	if s == nil || s.sqlDB == nil {
		return game.ResourceEntry{}, fmt.Errorf("storage is not configured")
	}
	factionID = strings.TrimSpace(factionID)
	category = strings.TrimSpace(category)
	if factionID == "" {
		return game.ResourceEntry{}, fmt.Errorf("faction id is required")
	}
	if category == "" {
		return game.ResourceEntry{}, fmt.Errorf("category is required")
	}

	row := s.sqlDB.QueryRowContext(ctx, `
SELECT faction_id, category, amount, updated_at
  FROM resources
 WHERE faction_id = ? AND category = ?`,
		factionID, category,
	)

	var entry game.ResourceEntry
	var updatedAt int64
	if err := row.Scan(&entry.FactionID, &entry.Category, &entry.Amount, &updatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return game.ResourceEntry{}, storage.ErrNotFound
		}
		return game.ResourceEntry{}, fmt.Errorf("get resource: %w", err)
	}
	entry.UpdatedAt = fromMillis(updatedAt)
	return entry, nil
}

// ListResources returns a faction's ledger ordered by category.
func (s *Store) ListResources(ctx context.Context, factionID string) ([]game.ResourceEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s == nil || s.sqlDB == nil {
		return nil, fmt.Errorf("storage is not configured")
	}
	factionID = strings.TrimSpace(factionID)
	if factionID == "" {
		return nil, fmt.Errorf("faction id is required")
	}

	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT faction_id, category, amount, updated_at
  FROM resources
 WHERE faction_id = ?
 ORDER BY category ASC`,
		factionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var out []game.ResourceEntry
	for rows.Next() {
		var entry game.ResourceEntry
		var updatedAt int64
		if err := rows.Scan(&entry.FactionID, &entry.Category, &entry.Amount, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		entry.UpdatedAt = fromMillis(updatedAt)
		out = append(out, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return out, nil
}

// DeleteResource removes one ledger row. Deleting a missing row is not an
// error.
func (s *Store) DeleteResource(ctx context.Context, factionID, category string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	factionID = strings.TrimSpace(factionID)
	category = strings.TrimSpace(category)
	if factionID == "" {
		return fmt.Errorf("faction id is required")
	}
	if category == "" {
		return fmt.Errorf("category is required")
	}

	_, err := s.sqlDB.ExecContext(ctx,
		`DELETE FROM resources WHERE faction_id = ? AND category = ?`,
		factionID, category,
	)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}
	return nil
}
