// Package scan implements the measurement pipeline for the rotating scanner
// rig: classifying raw serial lines, parsing them into typed samples,
// converting polar measurements to cartesian points, and aggregating the
// result into an append-only collection.
//
// The rig firmware streams line-delimited text that interleaves boot chatter,
// status messages, and comma-separated measurement rows. Two firmware
// variants exist: one emits 4-field polar rows
// (distance,platform_angle,vertical_angle,height), the other emits 5-field
// rows that already carry cartesian coordinates plus the polar metadata that
// produced them (x,y,z,vertical_angle,vertical_distance). A cut-down 3-field
// x,y,z variant is also seen on older firmware.
package scan

import "fmt"

// SchemaID identifies the field layout a data line conforms to.
type SchemaID int

const (
	SchemaUnknown SchemaID = iota
	// SchemaCartesian is the 3-field x,y,z layout.
	SchemaCartesian
	// SchemaPolar is the 4-field distance,platform_angle,vertical_angle,height layout.
	SchemaPolar
	// SchemaCylindrical is the 5-field x,y,z,vertical_angle,vertical_distance layout.
	SchemaCylindrical
)

// Arity returns the number of numeric fields a schema carries.
func (s SchemaID) Arity() int {
	switch s {
	case SchemaCartesian:
		return 3
	case SchemaPolar:
		return 4
	case SchemaCylindrical:
		return 5
	default:
		return 0
	}
}

func (s SchemaID) String() string {
	switch s {
	case SchemaCartesian:
		return "cartesian"
	case SchemaPolar:
		return "polar"
	case SchemaCylindrical:
		return "cylindrical"
	default:
		return "unknown"
	}
}

// SchemaForFieldCount maps a comma-separated field count to the schema it
// identifies. Counts without a known layout return SchemaUnknown.
func SchemaForFieldCount(n int) SchemaID {
	switch n {
	case 3:
		return SchemaCartesian
	case 4:
		return SchemaPolar
	case 5:
		return SchemaCylindrical
	default:
		return SchemaUnknown
	}
}

// SchemaByName resolves a configuration value like "polar" to its SchemaID.
func SchemaByName(name string) (SchemaID, error) {
	switch name {
	case "cartesian":
		return SchemaCartesian, nil
	case "polar":
		return SchemaPolar, nil
	case "cylindrical":
		return SchemaCylindrical, nil
	default:
		return SchemaUnknown, fmt.Errorf("unknown schema %q: expected cartesian, polar, or cylindrical", name)
	}
}
