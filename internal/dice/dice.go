// Package dice implements the stochastic resolution primitive for the
// warband engine.
//
// A Dice is configured with a numeric range, a static modifier, ordered
// grade bands partitioning the range, and a judge label per grade. Rolling
// draws uniformly from the range, applies modifiers, and clamps back into
// the range. Grades and judges are re-evaluated from the current bands, so
// a band resize performed after a roll is visible to subsequent lookups.
package dice

import (
	"errors"
	"fmt"
	"math/rand"

	platformerrors "github.com/hollowmere/warband/internal/platform/errors"
)

var (
	// ErrNotRolled indicates a grade, judge, or comparison was requested
	// before the dice was rolled.
	ErrNotRolled = platformerrors.New(platformerrors.CodeDiceNotRolled, "dice has not been rolled")
	// ErrCategoryMismatch indicates a comparison between dice of different
	// categories.
	ErrCategoryMismatch = platformerrors.New(platformerrors.CodeDiceTypeMismatch, "dice categories do not match")
)

// Band maps a contiguous numeric sub-range to one ordinal grade.
type Band struct {
	Grade int
	Low   int
	High  int
}

// Width returns the number of values covered by the band. Empty bands have
// width zero.
func (b Band) Width() int {
	if b.High < b.Low {
		return 0
	}
	return b.High - b.Low + 1
}

// Config describes one dice category: its numeric range, static modifier,
// grade bands, and judge labels indexed by grade.
type Config struct {
	Category string
	Min      int
	Max      int
	Modifier int
	Bands    []Band
	Judges   []string
}

// Validate checks that the bands partition [Min, Max] contiguously and that
// every grade has a judge label. Violations are configuration errors.
func (c Config) Validate() error {
	if c.Category == "" {
		return platformerrors.New(platformerrors.CodeDiceInvalidConfig, "dice category is required")
	}
	if c.Min > c.Max {
		return platformerrors.WithMetadata(
			platformerrors.CodeDiceInvalidConfig,
			fmt.Sprintf("dice range [%d, %d] is inverted", c.Min, c.Max),
			map[string]string{"category": c.Category},
		)
	}
	if len(c.Bands) == 0 {
		return platformerrors.WithMetadata(
			platformerrors.CodeDiceInvalidConfig,
			"at least one grade band is required",
			map[string]string{"category": c.Category},
		)
	}
	if len(c.Judges) != len(c.Bands) {
		return platformerrors.WithMetadata(
			platformerrors.CodeDiceInvalidConfig,
			fmt.Sprintf("expected %d judge labels, got %d", len(c.Bands), len(c.Judges)),
			map[string]string{"category": c.Category},
		)
	}

	next := c.Min
	width := 0
	for i, band := range c.Bands {
		if band.Grade != i {
			return platformerrors.WithMetadata(
				platformerrors.CodeDiceBandPartition,
				fmt.Sprintf("band %d has grade %d, expected %d", i, band.Grade, i),
				map[string]string{"category": c.Category},
			)
		}
		if band.Low != next {
			return platformerrors.WithMetadata(
				platformerrors.CodeDiceBandPartition,
				fmt.Sprintf("band %d starts at %d, expected %d", i, band.Low, next),
				map[string]string{"category": c.Category},
			)
		}
		width += band.Width()
		next = band.High + 1
	}
	if width != c.Max-c.Min+1 {
		return platformerrors.WithMetadata(
			platformerrors.CodeDiceBandPartition,
			fmt.Sprintf("band widths cover %d values, range holds %d", width, c.Max-c.Min+1),
			map[string]string{"category": c.Category},
		)
	}
	return nil
}

// Dice is a configured stochastic resolver. It is not safe for concurrent
// use; each owner rolls its own instance.
type Dice struct {
	category string
	min      int
	max      int
	modifier int
	bands    []Band
	judges   []string
	rng      *rand.Rand
	rolled   bool
	lastRoll int
}

// New creates a dice from a validated configuration. The seed fixes the
// random sequence, so two dice built from the same config and seed roll
// identical values.
func New(cfg Config, seed int64) (*Dice, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	bands := make([]Band, len(cfg.Bands))
	copy(bands, cfg.Bands)
	judges := make([]string, len(cfg.Judges))
	copy(judges, cfg.Judges)

	return &Dice{
		category: cfg.Category,
		min:      cfg.Min,
		max:      cfg.Max,
		modifier: cfg.Modifier,
		bands:    bands,
		judges:   judges,
		rng:      rand.New(rand.NewSource(seed)),
	}, nil
}

// Category returns the category key the dice was configured with.
func (d *Dice) Category() string {
	return d.category
}

// Rolled reports whether the dice has been rolled at least once.
func (d *Dice) Rolled() bool {
	return d.rolled
}

// LastRoll returns the clamped result of the most recent roll.
func (d *Dice) LastRoll() (int, error) {
	if !d.rolled {
		return 0, ErrNotRolled
	}
	return d.lastRoll, nil
}

// Bands returns a copy of the current grade bands.
func (d *Dice) Bands() []Band {
	bands := make([]Band, len(d.bands))
	copy(bands, d.bands)
	return bands
}

// Roll draws uniformly from [min, max], applies the static modifier plus
// immediateModifier, and clamps the result back into [min, max]. The clamp
// saturates rather than wraps.
func (d *Dice) Roll(immediateModifier int) int {
	value := d.rng.Intn(d.max-d.min+1) + d.min
	value += d.modifier + immediateModifier
	if value < d.min {
		value = d.min
	}
	if value > d.max {
		value = d.max
	}
	d.lastRoll = value
	d.rolled = true
	return value
}

// Grade returns the grade of the last roll under the current bands.
func (d *Dice) Grade() (int, error) {
	return d.GradeShifted(0)
}

// GradeShifted returns the grade of the last roll shifted by the provided
// grade modifier. The shifted grade is clamped to the valid grade range.
func (d *Dice) GradeShifted(gradeModifier int) (int, error) {
	if !d.rolled {
		return 0, ErrNotRolled
	}
	grade := d.gradeOf(d.lastRoll) + gradeModifier
	if grade < 0 {
		grade = 0
	}
	if grade > len(d.bands)-1 {
		grade = len(d.bands) - 1
	}
	return grade, nil
}

// Judge returns the judge label for the grade of the last roll.
func (d *Dice) Judge() (string, error) {
	grade, err := d.Grade()
	if err != nil {
		return "", err
	}
	return d.judges[grade], nil
}

// JudgeFor returns the judge label for an arbitrary grade.
func (d *Dice) JudgeFor(grade int) (string, error) {
	if grade < 0 || grade >= len(d.judges) {
		return "", fmt.Errorf("grade %d out of range [0, %d]", grade, len(d.judges)-1)
	}
	return d.judges[grade], nil
}

// gradeOf scans the bands in ascending order and returns the grade of the
// last band containing value. Values outside every band saturate to the
// nearest edge band; this only happens after a battle transfer pushes a raw
// roll out of range.
func (d *Dice) gradeOf(value int) int {
	grade := -1
	for _, band := range d.bands {
		if value >= band.Low && value <= band.High {
			grade = band.Grade
		}
	}
	if grade >= 0 {
		return grade
	}
	if value < d.min {
		return d.bands[0].Grade
	}
	return d.bands[len(d.bands)-1].Grade
}

// ResizeBand moves amount units of the numeric range from the shrink band to
// the adjacent expand band and rebuilds the boundaries. The bands must be
// adjacent and the shrinking band must retain a non-negative width; a
// violation is a programming error, not a recoverable condition.
func (d *Dice) ResizeBand(expand, shrink, amount int) {
	if expand < 0 || expand >= len(d.bands) || shrink < 0 || shrink >= len(d.bands) {
		panic(fmt.Sprintf("dice: resize band index out of range (expand=%d shrink=%d bands=%d)", expand, shrink, len(d.bands)))
	}
	if expand-shrink != 1 && shrink-expand != 1 {
		panic(fmt.Sprintf("dice: resize bands must be adjacent (expand=%d shrink=%d)", expand, shrink))
	}
	if amount < 0 {
		panic(fmt.Sprintf("dice: resize amount must be non-negative (amount=%d)", amount))
	}
	if d.bands[shrink].Width()-amount < 0 {
		panic(fmt.Sprintf("dice: shrinking band %d below zero width (width=%d amount=%d)", shrink, d.bands[shrink].Width(), amount))
	}

	if expand > shrink {
		d.bands[shrink].High -= amount
		d.bands[expand].Low -= amount
	} else {
		d.bands[shrink].Low += amount
		d.bands[expand].High += amount
	}
}

// AdjustRoll shifts the last roll by delta without re-clamping. Battle stat
// transfers use it, and a transferred-away stat may go negative.
func (d *Dice) AdjustRoll(delta int) error {
	if !d.rolled {
		return ErrNotRolled
	}
	d.lastRoll += delta
	return nil
}

// Compare compares the last rolls of two dice of the same category. It
// returns -1, 0, or 1 as d rolls below, equal to, or above other.
func (d *Dice) Compare(other *Dice) (int, error) {
	if other == nil {
		return 0, errors.New("other dice is required")
	}
	if d.category != other.category {
		return 0, ErrCategoryMismatch
	}
	if !d.rolled || !other.rolled {
		return 0, ErrNotRolled
	}
	switch {
	case d.lastRoll < other.lastRoll:
		return -1, nil
	case d.lastRoll > other.lastRoll:
		return 1, nil
	default:
		return 0, nil
	}
}

// CompareGap returns the grade distance between two dice of the same
// category. Equal grades with differing raw rolls yield a half step in
// favor of neither side; otherwise the gap is the difference of grades,
// positive when d leads.
func (d *Dice) CompareGap(other *Dice) (float64, error) {
	if other == nil {
		return 0, errors.New("other dice is required")
	}
	if d.category != other.category {
		return 0, ErrCategoryMismatch
	}
	if !d.rolled || !other.rolled {
		return 0, ErrNotRolled
	}

	mine, err := d.Grade()
	if err != nil {
		return 0, err
	}
	theirs, err := other.Grade()
	if err != nil {
		return 0, err
	}
	if mine == theirs {
		if d.lastRoll != other.lastRoll {
			return 0.5, nil
		}
		return 0, nil
	}
	return float64(mine - theirs), nil
}
