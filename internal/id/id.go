// Package id generates record identifiers for games, factions, buildings
// and workers.
//
// Identifiers are UUIDv4 bytes encoded as base32 (RFC 4648) with no
// padding: 26 characters, lowercase, safe in URLs and file paths.
package id

import (
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// NewID generates one identifier. The result is 26 characters long,
// lowercase, and contains no padding.
func NewID() (string, error) {
	raw, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}

	encoded := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw[:])
	return strings.ToLower(encoded), nil
}
