package tracker

import (
	"fmt"
	"strings"
)

const (
	UnitKilograms = "kg"
	UnitPounds    = "lbs"

	// PoundsToKilograms is the conversion factor applied to pound weights.
	PoundsToKilograms = 0.453592
)

// ToKilograms converts weight from unit to kilograms. An empty unit means
// kilograms.
func ToKilograms(weight float64, unit string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "", "kg", "kgs":
		return weight, nil
	case "lb", "lbs":
		return weight * PoundsToKilograms, nil
	default:
		return 0, fmt.Errorf("converting %v %q: %w", weight, unit, ErrUnsupportedUnit)
	}
}
