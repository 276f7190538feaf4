// Package battle runs tactical encounters between two factions. Each side
// holds a package of three independent dice (scale, mobility, morale) rolled
// once at session creation; gated strategy actions shuffle raw rolls between
// stats before the winner is evaluated.
package battle

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/hollowmere/warband/internal/dice"
	platformerrors "github.com/hollowmere/warband/internal/platform/errors"
)

var (
	// ErrActionUnavailable indicates a gated strategy action was invoked
	// without its gate satisfied.
	ErrActionUnavailable = platformerrors.New(platformerrors.CodeBattleActionUnavailable, "strategy action is unavailable")
	// ErrFleeNotRolled indicates a flee probability was requested before
	// the flee dice was rolled.
	ErrFleeNotRolled = platformerrors.New(platformerrors.CodeBattleFleeNotRolled, "flee dice has not been rolled")
)

// gateThreshold is the minimum raw roll a gating stat needs for its
// strategy actions.
const gateThreshold = 7

// Package is one side's combat posture: three independent dice rolled
// exactly once when the package is created. Morale carries the tiered
// condition table used for narration.
type Package struct {
	Scale    *dice.Dice
	Mobility *dice.Dice
	Morale   *dice.Tiered
}

// NewPackage builds and rolls a combat package. The seed fixes all three
// rolls.
func NewPackage(seed int64) (*Package, error) {
	seeds := rand.New(rand.NewSource(seed))

	scale, err := dice.New(dice.CombatConfig(), seeds.Int63())
	if err != nil {
		return nil, fmt.Errorf("build scale dice: %w", err)
	}
	mobility, err := dice.New(dice.CombatConfig(), seeds.Int63())
	if err != nil {
		return nil, fmt.Errorf("build mobility dice: %w", err)
	}
	morale, err := dice.NewTiered(dice.CombatConfig(), dice.ConditionExtendedConfig(), seeds.Int63())
	if err != nil {
		return nil, fmt.Errorf("build morale dice: %w", err)
	}

	pack := &Package{Scale: scale, Mobility: mobility, Morale: morale}
	pack.Scale.Roll(0)
	pack.Mobility.Roll(0)
	pack.Morale.Roll(0)
	return pack, nil
}

// Action is a strategy choice applied to the acting side's package.
type Action int

const (
	// ActionUnspecified represents an invalid action value.
	ActionUnspecified Action = iota
	// ActionPass does nothing. Always available.
	ActionPass
	// ActionRetreat signals intent to flee. Always available; the flee
	// chance is resolved separately.
	ActionRetreat
	// ActionShock transfers morale into mobility. Gated on morale.
	ActionShock
	// ActionFirepower transfers mobility into scale. Gated on mobility.
	ActionFirepower
	// ActionFierceness transfers mobility into morale. Gated on mobility.
	ActionFierceness
	// ActionDefense transfers scale into morale. Gated on scale.
	ActionDefense
	// ActionEncirclement transfers scale into mobility. Gated on scale.
	ActionEncirclement
)

func (a Action) String() string {
	switch a {
	case ActionPass:
		return "pass"
	case ActionRetreat:
		return "retreat"
	case ActionShock:
		return "shock"
	case ActionFirepower:
		return "firepower"
	case ActionFierceness:
		return "fierceness"
	case ActionDefense:
		return "defense"
	case ActionEncirclement:
		return "encirclement"
	default:
		return "unspecified"
	}
}

// Apply executes a strategy action against the package. Gated actions fail
// with ErrActionUnavailable when the gating stat's last roll is below the
// threshold. The amount is not checked against the remaining stat value: a
// transferred-away stat may go negative.
func (p *Package) Apply(action Action, amount int) error {
	switch action {
	case ActionPass, ActionRetreat:
		return nil
	case ActionShock:
		return p.transfer(p.Morale.Dice, p.Morale.Dice, p.Mobility, amount)
	case ActionFirepower:
		return p.transfer(p.Mobility, p.Mobility, p.Scale, amount)
	case ActionFierceness:
		return p.transfer(p.Mobility, p.Mobility, p.Morale.Dice, amount)
	case ActionDefense:
		return p.transfer(p.Scale, p.Scale, p.Morale.Dice, amount)
	case ActionEncirclement:
		return p.transfer(p.Scale, p.Scale, p.Mobility, amount)
	default:
		return fmt.Errorf("unknown strategy action %d", action)
	}
}

func (p *Package) transfer(gate, source, target *dice.Dice, amount int) error {
	gateRoll, err := gate.LastRoll()
	if err != nil {
		return err
	}
	if gateRoll < gateThreshold {
		return ErrActionUnavailable
	}
	if err := source.AdjustRoll(-amount); err != nil {
		return err
	}
	return target.AdjustRoll(amount)
}

// Gap sums the per-stat grade gaps against another package, positive when p
// leads.
func (p *Package) Gap(other *Package) (float64, error) {
	total := 0.0
	pairs := [][2]*dice.Dice{
		{p.Scale, other.Scale},
		{p.Mobility, other.Mobility},
		{p.Morale.Dice, other.Morale.Dice},
	}
	for _, pair := range pairs {
		gap, err := pair[0].CompareGap(pair[1])
		if err != nil {
			return 0, err
		}
		total += gap
	}
	return total, nil
}

// Condition returns the coarse narrative condition of the side, derived
// from the morale roll through the tiered table.
func (p *Package) Condition() (string, error) {
	return p.Morale.ExtendedJudge()
}

// Outcome is the result of a winner evaluation.
type Outcome int

const (
	// OutcomeDraw indicates no side holds a component majority.
	OutcomeDraw Outcome = iota
	// OutcomeSideA indicates the first side wins.
	OutcomeSideA
	// OutcomeSideB indicates the second side wins.
	OutcomeSideB
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSideA:
		return "side A wins"
	case OutcomeSideB:
		return "side B wins"
	default:
		return "draw"
	}
}

// Side binds a faction to its combat package.
type Side struct {
	FactionID string
	Pack      *Package
}

// Field is an ephemeral battle session between two factions. It is not
// persisted across turns and is destroyed once a winner is determined or a
// side retreats.
type Field struct {
	A Side
	B Side
}

// NewField creates a battle session and rolls both packages.
func NewField(factionA, factionB string, seed int64) (*Field, error) {
	factionA = strings.TrimSpace(factionA)
	factionB = strings.TrimSpace(factionB)
	if factionA == "" || factionB == "" {
		return nil, fmt.Errorf("both faction ids are required")
	}

	seeds := rand.New(rand.NewSource(seed))
	packA, err := NewPackage(seeds.Int63())
	if err != nil {
		return nil, fmt.Errorf("build package for %s: %w", factionA, err)
	}
	packB, err := NewPackage(seeds.Int63())
	if err != nil {
		return nil, fmt.Errorf("build package for %s: %w", factionB, err)
	}

	return &Field{
		A: Side{FactionID: factionA, Pack: packA},
		B: Side{FactionID: factionB, Pack: packB},
	}, nil
}

// Winner compares the two packages component-wise. The package holding the
// higher grade on at least two of the three components wins; anything else
// is a draw.
func (f *Field) Winner() (Outcome, error) {
	advantageA := 0
	advantageB := 0
	pairs := [][2]*dice.Dice{
		{f.A.Pack.Scale, f.B.Pack.Scale},
		{f.A.Pack.Mobility, f.B.Pack.Mobility},
		{f.A.Pack.Morale.Dice, f.B.Pack.Morale.Dice},
	}
	for _, pair := range pairs {
		gradeA, err := pair[0].Grade()
		if err != nil {
			return OutcomeDraw, err
		}
		gradeB, err := pair[1].Grade()
		if err != nil {
			return OutcomeDraw, err
		}
		switch {
		case gradeA > gradeB:
			advantageA++
		case gradeB > gradeA:
			advantageB++
		}
	}

	switch {
	case advantageA >= 2:
		return OutcomeSideA, nil
	case advantageB >= 2:
		return OutcomeSideB, nil
	default:
		return OutcomeDraw, nil
	}
}

// FleeProbability computes the losing side's chance to disengage from a
// separately rolled flee dice: clamp(0.35 + 0.05*roll, 0.40, 0.85).
func FleeProbability(fleeDice *dice.Dice) (float64, error) {
	if fleeDice == nil {
		return 0, fmt.Errorf("flee dice is required")
	}
	roll, err := fleeDice.LastRoll()
	if err != nil {
		return 0, ErrFleeNotRolled
	}

	probability := 0.35 + 0.05*float64(roll)
	if probability < 0.40 {
		probability = 0.40
	}
	if probability > 0.85 {
		probability = 0.85
	}
	return probability, nil
}
