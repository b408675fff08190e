// Package units provides shared constants and conversion for distance units
package units

import (
	"fmt"
	"strings"
)

// Unit constants
const (
	M  = "m"
	KM = "km"
	FT = "ft"
	MI = "mi"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{M, KM, FT, MI}

var metersPer = map[string]float64{
	M:  1,
	KM: 1000,
	FT: 0.3048,
	MI: 1609.344,
}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	_, ok := metersPer[unit]
	return ok
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return strings.Join(ValidUnits, ", ")
}

// ToMeters converts a distance in the given unit to meters. Negative
// distances pass through scaled, so "automatic" sentinels stay negative.
func ToMeters(distance float64, unit string) (float64, error) {
	f, ok := metersPer[unit]
	if !ok {
		return 0, fmt.Errorf("unknown distance unit %q (valid: %s)", unit, GetValidUnitsString())
	}
	return distance * f, nil
}

// FromMeters converts meters to the target unit. Unknown units return
// meters unchanged.
func FromMeters(meters float64, unit string) float64 {
	if f, ok := metersPer[unit]; ok {
		return meters / f
	}
	return meters
}
