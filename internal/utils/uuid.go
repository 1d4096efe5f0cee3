// Package utils provides small general-purpose helpers shared across the
// application, currently identifier generation.
package utils

import "github.com/google/uuid"

// UUIDGenerator produces time-ordered identifiers for prompts, conflict
// forks, and version-history entries.
type UUIDGenerator struct {
}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

// Generate returns a UUIDv7 string, falling back to a random UUIDv4 if the
// system clock source fails.
func (g *UUIDGenerator) Generate() string {
	v7, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}

	return v7.String()
}
