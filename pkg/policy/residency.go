// Package policy encodes the Singapore duty, levy and tax schedules used to
// value a residential purchase. Every function is a pure lookup.
package policy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidCategory is returned when an input falls outside one of the
// enumerated policy categories (residency, property count, tax bracket).
var ErrInvalidCategory = errors.New("invalid category")

// Residency is the buyer's residency class.
type Residency string

const (
	Citizen           Residency = "citizen"
	PermanentResident Residency = "pr"
	Foreigner         Residency = "foreigner"
)

// Residencies lists the recognised residency classes in display order.
func Residencies() []Residency {
	return []Residency{Citizen, PermanentResident, Foreigner}
}

// ParseResidency normalizes common spellings of a residency class.
func ParseResidency(value string) (Residency, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	normalized = strings.ReplaceAll(normalized, " ", "-")

	switch normalized {
	case "citizen", "sc", "singapore-citizen":
		return Citizen, nil
	case "pr", "permanent-resident", "spr":
		return PermanentResident, nil
	case "foreigner", "fr", "foreign":
		return Foreigner, nil
	}
	return "", fmt.Errorf("%w: unknown residency %q", ErrInvalidCategory, value)
}

// Validate reports whether r is one of the recognised residency classes.
func (r Residency) Validate() error {
	switch r {
	case Citizen, PermanentResident, Foreigner:
		return nil
	}
	return fmt.Errorf("%w: unknown residency %q", ErrInvalidCategory, string(r))
}

// ValidatePropertyCount checks the ordinal property count. Counts of three and
// above all fall in the third-and-subsequent band.
func ValidatePropertyCount(count int) error {
	if count < 1 {
		return fmt.Errorf("%w: property count must be 1, 2 or 3+, got %d", ErrInvalidCategory, count)
	}
	return nil
}
