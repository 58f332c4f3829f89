package scan

import "fmt"

// CartesianPoint is a 3D point in millimeters.
type CartesianPoint struct {
	X float64
	Y float64
	Z float64
}

// PolarSample is one 4-field measurement row. Angles are degrees as sent by
// the firmware: not normalized, not range-checked.
type PolarSample struct {
	Distance      float64 // mm
	PlatformAngle float64 // degrees, any real value
	VerticalAngle float64 // degrees
	Height        float64 // mm, already the vertical coordinate
}

// CylindricalSample is one 5-field measurement row: a cartesian position plus
// the polar metadata that produced it.
type CylindricalSample struct {
	X                float64 // mm
	Y                float64 // mm
	Z                float64 // mm
	VerticalAngle    float64 // degrees
	VerticalDistance float64 // mm
}

// Sample is a typed measurement parsed from one data line. Fields holds
// exactly the floats parsed from the line, in wire order, with no unit
// conversion applied. A Sample is immutable once constructed.
type Sample struct {
	Schema SchemaID
	fields []float64
}

// ParseSample maps classified fields onto a typed sample. It fails only when
// the field count does not match the schema arity, which the classifier
// guarantees never happens for lines it accepts; a mismatch here means the
// caller bypassed classification.
func ParseSample(schema SchemaID, fields []float64) (Sample, error) {
	if schema == SchemaUnknown {
		return Sample{}, fmt.Errorf("cannot parse sample with unknown schema")
	}
	if len(fields) != schema.Arity() {
		return Sample{}, fmt.Errorf("schema %s expects %d fields, got %d", schema, schema.Arity(), len(fields))
	}
	f := make([]float64, len(fields))
	copy(f, fields)
	return Sample{Schema: schema, fields: f}, nil
}

// Fields returns a copy of the raw parsed floats, in wire order.
func (s Sample) Fields() []float64 {
	f := make([]float64, len(s.fields))
	copy(f, s.fields)
	return f
}

// Polar returns the sample as a PolarSample. Valid only for SchemaPolar.
func (s Sample) Polar() PolarSample {
	return PolarSample{
		Distance:      s.fields[0],
		PlatformAngle: s.fields[1],
		VerticalAngle: s.fields[2],
		Height:        s.fields[3],
	}
}

// Cylindrical returns the sample as a CylindricalSample. Valid only for
// SchemaCylindrical.
func (s Sample) Cylindrical() CylindricalSample {
	return CylindricalSample{
		X:                s.fields[0],
		Y:                s.fields[1],
		Z:                s.fields[2],
		VerticalAngle:    s.fields[3],
		VerticalDistance: s.fields[4],
	}
}

// Cartesian resolves the sample to a 3D point, converting from polar when the
// schema requires it.
func (s Sample) Cartesian() CartesianPoint {
	switch s.Schema {
	case SchemaPolar:
		return ToCartesian(s.Polar())
	case SchemaCylindrical:
		return CartesianPoint{X: s.fields[0], Y: s.fields[1], Z: s.fields[2]}
	default:
		return CartesianPoint{X: s.fields[0], Y: s.fields[1], Z: s.fields[2]}
	}
}

// VerticalAngle returns the sample's vertical angle and whether the schema
// carries one. The 3-field cartesian layout has no vertical angle.
func (s Sample) VerticalAngle() (float64, bool) {
	switch s.Schema {
	case SchemaPolar:
		return s.fields[2], true
	case SchemaCylindrical:
		return s.fields[3], true
	default:
		return 0, false
	}
}
