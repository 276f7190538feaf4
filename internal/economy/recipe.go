// Package economy resolves per-turn resource production and consumption for
// buildings and their assigned workers.
package economy

import (
	"fmt"
	"strings"

	platformerrors "github.com/hollowmere/warband/internal/platform/errors"
)

// Resource categories known to the built-in recipes.
const (
	ResourceWater  = "water"
	ResourceFood   = "food"
	ResourceTimber = "timber"
	ResourceIron   = "iron"
	ResourceArms   = "arms"
)

// Consumption is a fixed per-worker resource requirement.
type Consumption struct {
	Category string
	Amount   int
}

// Production is a per-worker resource yield scaled by the worker's
// efficiency roll: yield = AmountPerUnit * floor(efficiency / DiceRatio).
type Production struct {
	Category      string
	AmountPerUnit int
	DiceRatio     int
}

// Recipe is the static consume/produce specification for one building kind.
// Recipes are pure configuration and immutable at runtime.
type Recipe struct {
	Consumes []Consumption
	Produces []Production
}

// Empty reports whether the recipe performs no resource operations.
func (r Recipe) Empty() bool {
	return len(r.Consumes) == 0 && len(r.Produces) == 0
}

// RecipeBook maps building kinds to recipes, validated against a fixed set
// of resource categories at construction time.
type RecipeBook struct {
	known   map[string]struct{}
	recipes map[string]Recipe
}

// NewRecipeBook creates a recipe book accepting the provided resource
// categories.
func NewRecipeBook(categories []string) *RecipeBook {
	known := make(map[string]struct{}, len(categories))
	for _, category := range categories {
		known[strings.TrimSpace(category)] = struct{}{}
	}
	return &RecipeBook{
		known:   known,
		recipes: make(map[string]Recipe),
	}
}

// Register validates and stores a recipe for a building kind. A recipe
// referencing an undefined resource category is a configuration error.
func (b *RecipeBook) Register(kind string, recipe Recipe) error {
	kind = strings.TrimSpace(kind)
	if kind == "" {
		return fmt.Errorf("building kind is required")
	}
	if _, exists := b.recipes[kind]; exists {
		return fmt.Errorf("recipe for building kind %q is already registered", kind)
	}

	for _, consume := range recipe.Consumes {
		if err := b.checkCategory(kind, consume.Category); err != nil {
			return err
		}
		if consume.Amount <= 0 {
			return fmt.Errorf("recipe %q consumes a non-positive amount of %s", kind, consume.Category)
		}
	}
	for _, produce := range recipe.Produces {
		if err := b.checkCategory(kind, produce.Category); err != nil {
			return err
		}
		if produce.AmountPerUnit <= 0 {
			return fmt.Errorf("recipe %q produces a non-positive amount of %s", kind, produce.Category)
		}
		if produce.DiceRatio <= 0 {
			return fmt.Errorf("recipe %q has a non-positive dice ratio for %s", kind, produce.Category)
		}
	}

	b.recipes[kind] = recipe
	return nil
}

// Recipe returns the recipe for a building kind. Unknown kinds resolve to an
// empty recipe: the building is processed but performs no resource
// operations.
func (b *RecipeBook) Recipe(kind string) Recipe {
	return b.recipes[strings.TrimSpace(kind)]
}

func (b *RecipeBook) checkCategory(kind, category string) error {
	if _, ok := b.known[strings.TrimSpace(category)]; !ok {
		return platformerrors.WithMetadata(
			platformerrors.CodeRecipeUnknownResource,
			fmt.Sprintf("recipe %q references undefined resource category %q", kind, category),
			map[string]string{"kind": kind, "category": category},
		)
	}
	return nil
}

// DefaultRecipeBook returns the built-in building recipes.
func DefaultRecipeBook() *RecipeBook {
	book := NewRecipeBook([]string{
		ResourceWater,
		ResourceFood,
		ResourceTimber,
		ResourceIron,
		ResourceArms,
	})

	builtin := map[string]Recipe{
		"well": {
			Produces: []Production{{Category: ResourceWater, AmountPerUnit: 1, DiceRatio: 2}},
		},
		"farm": {
			Consumes: []Consumption{{Category: ResourceWater, Amount: 1}},
			Produces: []Production{{Category: ResourceFood, AmountPerUnit: 1, DiceRatio: 2}},
		},
		"lumberyard": {
			Consumes: []Consumption{{Category: ResourceFood, Amount: 1}},
			Produces: []Production{{Category: ResourceTimber, AmountPerUnit: 1, DiceRatio: 3}},
		},
		"mine": {
			Consumes: []Consumption{
				{Category: ResourceFood, Amount: 1},
				{Category: ResourceWater, Amount: 1},
			},
			Produces: []Production{{Category: ResourceIron, AmountPerUnit: 1, DiceRatio: 3}},
		},
		"forge": {
			Consumes: []Consumption{
				{Category: ResourceIron, Amount: 2},
				{Category: ResourceTimber, Amount: 1},
			},
			Produces: []Production{{Category: ResourceArms, AmountPerUnit: 1, DiceRatio: 4}},
		},
	}
	for kind, recipe := range builtin {
		// Built-in recipes are static; a registration failure here is a
		// programming error.
		if err := book.Register(kind, recipe); err != nil {
			panic(fmt.Sprintf("economy: register built-in recipe %s: %v", kind, err))
		}
	}
	return book
}
