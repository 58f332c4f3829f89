// Package units provides shared angle and distance helpers for the scanner
// pipeline. Distances are millimeters and angles are degrees unless a name
// says otherwise.
package units

import "math"

// Distance unit names accepted in configuration and reports.
const (
	MM = "mm"
	CM = "cm"
	M  = "m"
)

// ValidDistanceUnits contains all valid distance unit values.
var ValidDistanceUnits = []string{MM, CM, M}

// IsValidDistanceUnit checks if the given unit is in the list of valid units.
func IsValidDistanceUnit(unit string) bool {
	for _, validUnit := range ValidDistanceUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ConvertDistance converts a distance from millimeters to the target units.
// The scanner firmware reports all distances in mm.
func ConvertDistance(distanceMM float64, targetUnits string) float64 {
	switch targetUnits {
	case CM:
		return distanceMM / 10
	case M:
		return distanceMM / 1000
	case MM:
		return distanceMM
	default:
		return distanceMM // default to mm if unknown unit
	}
}

// DegreesToRadians converts an angle in degrees to radians.
func DegreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadiansToDegrees converts an angle in radians to degrees.
func RadiansToDegrees(rad float64) float64 {
	return rad * 180 / math.Pi
}

// NormalizeDegrees folds an angle into the [0, 360) range. Values that are
// already in range are returned unchanged, so exact float keys derived from
// normalized angles stay stable.
func NormalizeDegrees(deg float64) float64 {
	if deg >= 0 && deg < 360 {
		return deg
	}
	norm := math.Mod(deg, 360)
	if norm < 0 {
		norm += 360
	}
	return norm
}
