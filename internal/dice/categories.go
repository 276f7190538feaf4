package dice

import (
	"fmt"
	"strings"
)

// Category keys for the built-in dice tables.
const (
	CategoryCombat     = "combat"
	CategoryEfficiency = "efficiency"
	CategoryLivestock  = "livestock"
	CategoryFlee       = "flee"
)

// combatBands is the four-band, nine-valued table shared by combat and crew
// efficiency rolls.
var combatBands = []Band{
	{Grade: 0, Low: 1, High: 3},
	{Grade: 1, Low: 4, High: 6},
	{Grade: 2, Low: 7, High: 8},
	{Grade: 3, Low: 9, High: 9},
}

// CombatConfig returns the dice table used for battle stat rolls.
func CombatConfig() Config {
	return Config{
		Category: CategoryCombat,
		Min:      1,
		Max:      9,
		Bands:    cloneBands(combatBands),
		Judges:   []string{"Routed", "Holding", "Fierce", "Heroic"},
	}
}

// EfficiencyConfig returns the dice table used for crew work rolls.
func EfficiencyConfig() Config {
	return Config{
		Category: CategoryEfficiency,
		Min:      1,
		Max:      9,
		Bands:    cloneBands(combatBands),
		Judges:   []string{"Idle", "Steady", "Diligent", "Inspired"},
	}
}

// LivestockConfig returns the dice table used for livestock work rolls. The
// range matches the crew table but the bands are gentler.
func LivestockConfig() Config {
	return Config{
		Category: CategoryLivestock,
		Min:      1,
		Max:      9,
		Bands: []Band{
			{Grade: 0, Low: 1, High: 2},
			{Grade: 1, Low: 3, High: 5},
			{Grade: 2, Low: 6, High: 8},
			{Grade: 3, Low: 9, High: 9},
		},
		Judges: []string{"Sickly", "Placid", "Hardy", "Prize"},
	}
}

// FleeConfig returns the dice table used for retreat probability rolls.
func FleeConfig() Config {
	return Config{
		Category: CategoryFlee,
		Min:      1,
		Max:      9,
		Bands: []Band{
			{Grade: 0, Low: 1, High: 4},
			{Grade: 1, Low: 5, High: 9},
		},
		Judges: []string{"Cornered", "Clear"},
	}
}

// ConditionExtendedConfig returns the extended table that narrates the four
// combat grades as coarse condition labels.
func ConditionExtendedConfig() ExtendedConfig {
	return ExtendedConfig{
		Bands: []Band{
			{Grade: 0, Low: 0, High: 1},
			{Grade: 1, Low: 2, High: 2},
			{Grade: 2, Low: 3, High: 3},
		},
		Judges: []string{"Shaken", "Steady", "Emboldened"},
	}
}

// Registry resolves category keys to dice configurations. A registry is
// built at startup and read-only afterwards; callers receive it by
// injection rather than through package state.
type Registry struct {
	configs map[string]Config
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{configs: make(map[string]Config)}
}

// DefaultRegistry returns a registry holding the built-in categories.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, cfg := range []Config{
		CombatConfig(),
		EfficiencyConfig(),
		LivestockConfig(),
		FleeConfig(),
	} {
		// Built-in tables are static; a registration failure here is a
		// programming error.
		if err := r.Register(cfg); err != nil {
			panic(fmt.Sprintf("dice: register built-in category %s: %v", cfg.Category, err))
		}
	}
	return r
}

// Register validates and stores a category configuration.
func (r *Registry) Register(cfg Config) error {
	cfg.Category = strings.TrimSpace(cfg.Category)
	if err := cfg.Validate(); err != nil {
		return err
	}
	if _, exists := r.configs[cfg.Category]; exists {
		return fmt.Errorf("dice category %q is already registered", cfg.Category)
	}
	r.configs[cfg.Category] = cfg
	return nil
}

// Config returns the configuration for a category key.
func (r *Registry) Config(category string) (Config, error) {
	cfg, ok := r.configs[strings.TrimSpace(category)]
	if !ok {
		return Config{}, fmt.Errorf("unknown dice category %q", category)
	}
	return cfg, nil
}

// New builds a dice for a registered category with the provided seed.
func (r *Registry) New(category string, seed int64) (*Dice, error) {
	cfg, err := r.Config(category)
	if err != nil {
		return nil, err
	}
	return New(cfg, seed)
}

func cloneBands(bands []Band) []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}
