// Package random provides high-entropy seeds for dice rolls.
//
// Dice instances run on seeded math/rand generators so tests can pin their
// outcomes; production callers seed them from crypto/rand through NewSeed.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// NewSeed draws a dice seed from crypto/rand.
func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}

	return int64(binary.LittleEndian.Uint64(b[:])), nil
}
