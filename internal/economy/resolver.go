package economy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hollowmere/warband/internal/game"
	"github.com/hollowmere/warband/internal/storage"
)

// LineKind classifies one report line item.
type LineKind int

const (
	// LineKindUnspecified represents an invalid line kind value.
	LineKindUnspecified LineKind = iota
	// LineKindConsume records a successful consumption.
	LineKindConsume
	// LineKindProduce records a production yield.
	LineKindProduce
	// LineKindShortage records an insufficient ledger balance. Shortages
	// are reported, never thrown.
	LineKindShortage
)

func (k LineKind) String() string {
	switch k {
	case LineKindConsume:
		return "consume"
	case LineKindProduce:
		return "produce"
	case LineKindShortage:
		return "shortage"
	default:
		return "unspecified"
	}
}

// LineItem is one structured entry of a building's turn report.
type LineItem struct {
	WorkerID string
	Category string
	Kind     LineKind
	Amount   int
	Before   int
	After    int
}

// Report is the per-building production outcome for one turn. It is
// side-effect visible to the caller, not merely a log.
type Report struct {
	GameID       string
	BuildingID   string
	BuildingName string
	Turn         int
	Workers      int
	Lines        []LineItem
}

// Render formats the report for the announcement collaborator.
func (r Report) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "turn %d: %s (%d workers)", r.Turn, r.BuildingName, r.Workers)
	for _, line := range r.Lines {
		switch line.Kind {
		case LineKindShortage:
			fmt.Fprintf(&sb, "\n  %s: %s shortage (have %d, need %d)", line.WorkerID, line.Category, line.Before, line.Amount)
		default:
			fmt.Fprintf(&sb, "\n  %s: %s %s %d (%d -> %d)", line.WorkerID, line.Kind, line.Category, line.Amount, line.Before, line.After)
		}
	}
	return sb.String()
}

// Resolver computes resource consumption and production for a building's
// assigned workers. The ledger is injected; the resolver owns each resource
// row for the duration of one consume-or-produce step.
type Resolver struct {
	resources storage.ResourceStore
}

// NewResolver creates a production resolver over a resource ledger.
func NewResolver(resources storage.ResourceStore) *Resolver {
	return &Resolver{resources: resources}
}

// ResolveBuilding runs one turn of production for a building. Workers are
// processed in the order given (deployment order). Per-resource shortages
// are partial failures: they skip only the consumption of that resource and
// any production of the same category, and resolution continues. Ledger
// writes are persisted immediately, not batched; a persistence failure
// aborts the building and propagates.
func (r *Resolver) ResolveBuilding(ctx context.Context, building game.Building, recipe Recipe, workers []game.Worker, turn int) (Report, error) {
	report := Report{
		GameID:       building.GameID,
		BuildingID:   building.ID,
		BuildingName: building.Name,
		Turn:         turn,
		Workers:      len(workers),
	}
	if r == nil || r.resources == nil {
		return report, fmt.Errorf("resource store is not configured")
	}
	if err := ctx.Err(); err != nil {
		return report, err
	}

	for _, worker := range workers {
		insufficient := make(map[string]bool, len(recipe.Consumes))

		for _, consume := range recipe.Consumes {
			entry, err := r.resources.GetResource(ctx, building.FactionID, consume.Category)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return report, fmt.Errorf("fetch %s ledger entry: %w", consume.Category, err)
			}
			if errors.Is(err, storage.ErrNotFound) {
				entry = game.ResourceEntry{FactionID: building.FactionID, Category: consume.Category}
			}

			if entry.Amount < consume.Amount {
				insufficient[consume.Category] = true
				report.Lines = append(report.Lines, LineItem{
					WorkerID: worker.ID,
					Category: consume.Category,
					Kind:     LineKindShortage,
					Amount:   consume.Amount,
					Before:   entry.Amount,
					After:    entry.Amount,
				})
				continue
			}

			before := entry.Amount
			entry.Amount -= consume.Amount
			entry.Clamp()
			if err := r.resources.PutResource(ctx, entry); err != nil {
				return report, fmt.Errorf("persist %s consumption: %w", consume.Category, err)
			}
			report.Lines = append(report.Lines, LineItem{
				WorkerID: worker.ID,
				Category: consume.Category,
				Kind:     LineKindConsume,
				Amount:   consume.Amount,
				Before:   before,
				After:    entry.Amount,
			})
		}

		for _, produce := range recipe.Produces {
			if insufficient[produce.Category] {
				continue
			}

			// A worker rolling below the dice ratio yields zero; that is
			// an outcome, not an error.
			yield := produce.AmountPerUnit * (worker.Efficiency / produce.DiceRatio)

			entry, err := r.resources.GetResource(ctx, building.FactionID, produce.Category)
			if err != nil && !errors.Is(err, storage.ErrNotFound) {
				return report, fmt.Errorf("fetch %s ledger entry: %w", produce.Category, err)
			}
			if errors.Is(err, storage.ErrNotFound) {
				entry = game.ResourceEntry{FactionID: building.FactionID, Category: produce.Category}
			}

			before := entry.Amount
			if yield > 0 {
				entry.Amount += yield
				entry.Clamp()
				if err := r.resources.PutResource(ctx, entry); err != nil {
					return report, fmt.Errorf("persist %s production: %w", produce.Category, err)
				}
			}
			report.Lines = append(report.Lines, LineItem{
				WorkerID: worker.ID,
				Category: produce.Category,
				Kind:     LineKindProduce,
				Amount:   yield,
				Before:   before,
				After:    entry.Amount,
			})
		}
	}

	return report, nil
}
