package scan

import (
	"math"

	"github.com/banshee-data/scanrig/internal/units"
)

// ToCartesian converts a polar measurement to a cartesian point. The platform
// angle rotates the distance vector in the XY plane; height is taken literally
// as the Z coordinate. The vertical angle is metadata only and does not
// project the height axis — the rig's carriage moves the sensor head so that
// height is already the vertical coordinate.
//
// The platform angle is used as-is, without normalization. See ToPolar for
// the asymmetry on the inverse path.
func ToCartesian(s PolarSample) CartesianPoint {
	platformRad := units.DegreesToRadians(s.PlatformAngle)
	return CartesianPoint{
		X: s.Distance * math.Cos(platformRad),
		Y: s.Distance * math.Sin(platformRad),
		Z: s.Height,
	}
}

// ToPolar recovers the distance and platform angle from a cartesian point.
// The returned angle is in degrees, normalized into [0, 360). Note the
// asymmetry with ToCartesian, which does not normalize: round-tripping
// forward→inverse preserves the cartesian point exactly, but a platform angle
// that was negative or >= 360 comes back folded into [0, 360). Z passes
// through as the height unchanged.
//
// A zero-distance point yields angle 0 (atan2(0,0) == 0); the angle is
// irrelevant at the origin.
func ToPolar(p CartesianPoint) (distance, platformAngle float64) {
	distance = math.Sqrt(p.X*p.X + p.Y*p.Y)
	platformAngle = units.RadiansToDegrees(math.Atan2(p.Y, p.X))
	if platformAngle < 0 {
		platformAngle += 360
	}
	return distance, platformAngle
}

// RecoverPolar rebuilds a full polar sample from a previously converted
// cartesian point and its vertical-angle metadata. Used by the reconstruction
// path when re-reading saved captures.
func RecoverPolar(p CartesianPoint, verticalAngle float64) PolarSample {
	distance, platformAngle := ToPolar(p)
	return PolarSample{
		Distance:      distance,
		PlatformAngle: platformAngle,
		VerticalAngle: verticalAngle,
		Height:        p.Z,
	}
}
