// Package id generates and parses ledger entity identifiers.
package id

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// New returns a fresh random identifier.
func New() uuid.UUID {
	return uuid.New()
}

// Parse parses a full identifier string.
func Parse(s string) (uuid.UUID, error) {
	u, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: %w", s, err)
	}
	return u, nil
}

// Short returns the first 8 hex characters, for display in tables.
func Short(u uuid.UUID) string {
	return u.String()[:8]
}
