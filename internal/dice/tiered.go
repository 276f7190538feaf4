package dice

import (
	"fmt"

	platformerrors "github.com/hollowmere/warband/internal/platform/errors"
)

// ExtendedConfig describes a secondary band table applied to the grade of a
// base dice, reducing its grades to a coarser extended grade.
type ExtendedConfig struct {
	Bands  []Band
	Judges []string
}

// validateFor checks the extended bands partition the base grade range.
func (c ExtendedConfig) validateFor(base Config) error {
	if len(c.Bands) == 0 {
		return platformerrors.New(platformerrors.CodeDiceInvalidConfig, "at least one extended band is required")
	}
	if len(c.Judges) != len(c.Bands) {
		return platformerrors.New(
			platformerrors.CodeDiceInvalidConfig,
			fmt.Sprintf("expected %d extended judge labels, got %d", len(c.Bands), len(c.Judges)),
		)
	}

	next := 0
	for i, band := range c.Bands {
		if band.Grade != i {
			return platformerrors.New(
				platformerrors.CodeDiceBandPartition,
				fmt.Sprintf("extended band %d has grade %d, expected %d", i, band.Grade, i),
			)
		}
		if band.Low != next {
			return platformerrors.New(
				platformerrors.CodeDiceBandPartition,
				fmt.Sprintf("extended band %d starts at %d, expected %d", i, band.Low, next),
			)
		}
		next = band.High + 1
	}
	if next != len(base.Bands) {
		return platformerrors.New(
			platformerrors.CodeDiceBandPartition,
			fmt.Sprintf("extended bands cover grades [0, %d), base has %d grades", next, len(base.Bands)),
		)
	}
	return nil
}

// Tiered decorates a base dice with an extended grade derived from the
// primary grade after each roll. No modifiers apply at this layer; the
// extended grade is a pure function of the wrapped roll.
type Tiered struct {
	*Dice
	extBands  []Band
	extJudges []string
}

// NewTiered creates a tiered dice over the base configuration.
func NewTiered(base Config, ext ExtendedConfig, seed int64) (*Tiered, error) {
	if err := base.Validate(); err != nil {
		return nil, err
	}
	if err := ext.validateFor(base); err != nil {
		return nil, err
	}

	inner, err := New(base, seed)
	if err != nil {
		return nil, err
	}

	extBands := make([]Band, len(ext.Bands))
	copy(extBands, ext.Bands)
	extJudges := make([]string, len(ext.Judges))
	copy(extJudges, ext.Judges)

	return &Tiered{
		Dice:      inner,
		extBands:  extBands,
		extJudges: extJudges,
	}, nil
}

// ExtendedGrade returns the extended grade of the last roll.
func (t *Tiered) ExtendedGrade() (int, error) {
	grade, err := t.Dice.Grade()
	if err != nil {
		return 0, err
	}
	for _, band := range t.extBands {
		if grade >= band.Low && grade <= band.High {
			return band.Grade, nil
		}
	}
	// The extended bands partition the base grades, so the grade always
	// lands in a band.
	return t.extBands[len(t.extBands)-1].Grade, nil
}

// ExtendedJudge returns the extended judge label of the last roll.
func (t *Tiered) ExtendedJudge() (string, error) {
	grade, err := t.ExtendedGrade()
	if err != nil {
		return "", err
	}
	return t.extJudges[grade], nil
}
