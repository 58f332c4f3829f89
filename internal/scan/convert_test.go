package scan

import (
	"math"
	"testing"
)

const coordTolerance = 1e-9 // mm

func near(a, b float64) bool { return math.Abs(a-b) <= coordTolerance }

// Values from a known-good bench capture: four points at 80mm on a rising
// carriage, one per platform quadrant.
func TestToCartesianQuadrants(t *testing.T) {
	tests := []struct {
		name   string
		sample PolarSample
		want   CartesianPoint
	}{
		{"front", PolarSample{Distance: 80, PlatformAngle: 0, Height: 0}, CartesianPoint{X: 80, Y: 0, Z: 0}},
		{"side", PolarSample{Distance: 80, PlatformAngle: 90, Height: 50}, CartesianPoint{X: 0, Y: 80, Z: 50}},
		{"back", PolarSample{Distance: 80, PlatformAngle: 180, Height: 100}, CartesianPoint{X: -80, Y: 0, Z: 100}},
		{"other side", PolarSample{Distance: 80, PlatformAngle: 270, Height: 150}, CartesianPoint{X: 0, Y: -80, Z: 150}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToCartesian(tt.sample)
			if !near(got.X, tt.want.X) || !near(got.Y, tt.want.Y) || !near(got.Z, tt.want.Z) {
				t.Errorf("ToCartesian(%+v) = %+v, want approx %+v", tt.sample, got, tt.want)
			}
		})
	}
}

func TestToCartesianZeroDistance(t *testing.T) {
	got := ToCartesian(PolarSample{Distance: 0, PlatformAngle: 123, Height: 7})
	if !near(got.X, 0) || !near(got.Y, 0) || got.Z != 7 {
		t.Errorf("zero distance = %+v, want (0, 0, 7)", got)
	}
}

func TestToPolarNormalizesAngle(t *testing.T) {
	// Point in the fourth quadrant: atan2 yields a negative angle, which
	// the inverse path folds into [0, 360).
	_, angle := ToPolar(CartesianPoint{X: 0, Y: -80})
	if !near(angle, 270) {
		t.Errorf("angle = %v, want 270", angle)
	}

	d, angle := ToPolar(CartesianPoint{X: 80, Y: 0})
	if !near(d, 80) || !near(angle, 0) {
		t.Errorf("got (%v, %v), want (80, 0)", d, angle)
	}
}

// Forward then inverse reproduces the cartesian point exactly and folds the
// platform angle into [0, 360) congruent mod 360 with the original.
func TestRoundTrip(t *testing.T) {
	samples := []PolarSample{
		{Distance: 80, PlatformAngle: 0, VerticalAngle: 0, Height: 0},
		{Distance: 80, PlatformAngle: 45, VerticalAngle: 10, Height: 25},
		{Distance: 123.4, PlatformAngle: 359.5, VerticalAngle: 5, Height: 100},
		{Distance: 50, PlatformAngle: -90, VerticalAngle: 0, Height: 10},
		{Distance: 50, PlatformAngle: 450, VerticalAngle: 0, Height: 10},
		{Distance: 0.001, PlatformAngle: 180, VerticalAngle: 30, Height: -5},
	}

	for _, s := range samples {
		p := ToCartesian(s)
		rec := RecoverPolar(p, s.VerticalAngle)

		p2 := ToCartesian(rec)
		if !near(p.X, p2.X) || !near(p.Y, p2.Y) || p.Z != p2.Z {
			t.Errorf("cartesian not preserved for %+v: %+v vs %+v", s, p, p2)
		}

		wantAngle := math.Mod(s.PlatformAngle, 360)
		if wantAngle < 0 {
			wantAngle += 360
		}
		if !near(rec.PlatformAngle, wantAngle) {
			t.Errorf("recovered angle %v, want %v (original %v)", rec.PlatformAngle, wantAngle, s.PlatformAngle)
		}
		if rec.PlatformAngle < 0 || rec.PlatformAngle >= 360 {
			t.Errorf("recovered angle %v outside [0, 360)", rec.PlatformAngle)
		}
		if rec.Height != s.Height {
			t.Errorf("height %v, want %v", rec.Height, s.Height)
		}
		if rec.VerticalAngle != s.VerticalAngle {
			t.Errorf("vertical angle %v, want %v", rec.VerticalAngle, s.VerticalAngle)
		}
	}
}
