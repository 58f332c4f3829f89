// Package scanfile reads and writes the rig's text capture formats: the
// sectioned scanner_data.txt layout and the flat polar CSV. The Raw Data
// section is the frozen wire format for reconstruction: always 5-field
// tuples, whatever schema the samples arrived in, and field order and tuple
// rendering must not change.
package scanfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/banshee-data/scanrig/internal/scan"
)

// Section headers of the structured capture format.
const (
	SectionPoints  = "=== 3D Points (x, y, z) ==="
	SectionByAngle = "=== Points by Vertical Angle ==="
	SectionRaw     = "=== Raw Data (x, y, z, vertical_angle, vertical_distance) ==="
)

// rawSectionMarker is what the reader scans for; matching on the prefix keeps
// old captures with slightly different header tails readable.
const rawSectionMarker = "=== Raw Data"

// WriteCollection writes the structured capture format: the flat point
// sequence, the per-vertical-angle grouping in ascending key order, and the
// raw tuple log.
func WriteCollection(w io.Writer, col *scan.Collection) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "%s\n", SectionPoints)
	for _, p := range col.Points() {
		fmt.Fprintf(bw, "%s\n", formatTuple(p.X, p.Y, p.Z))
	}

	fmt.Fprintf(bw, "\n%s\n", SectionByAngle)
	for _, angle := range col.Angles() {
		fmt.Fprintf(bw, "\nAngle %s°:\n", formatFloat(angle))
		for _, p := range col.Group(angle) {
			fmt.Fprintf(bw, "%s\n", formatTuple(p.X, p.Y, p.Z))
		}
	}

	fmt.Fprintf(bw, "\n%s\n", SectionRaw)
	for i, tuple := range col.Raw() {
		if len(tuple) != 5 {
			tuple = wireTuple(col, i)
		}
		fmt.Fprintf(bw, "%s\n", formatTuple(tuple...))
	}

	return bw.Flush()
}

// wireTuple synthesizes the 5-field raw wire shape for a sample whose source
// schema carried a different arity. The distance field is recomputed from the
// converted point; angle-less samples record angle 0.
func wireTuple(col *scan.Collection, i int) []float64 {
	p := col.PointAt(i)
	angle, _ := col.VerticalAngleAt(i)
	dist, _ := scan.ToPolar(p)
	return []float64{p.X, p.Y, p.Z, angle, dist}
}

// SaveCollection writes the structured capture format to a file.
func SaveCollection(path string, col *scan.Collection) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create capture file: %w", err)
	}
	if err := WriteCollection(f, col); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// formatTuple renders values as "(a, b, c)". This rendering is part of the
// frozen wire format; parseTuple must accept exactly what it produces.
func formatTuple(values ...float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = formatFloat(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// formatFloat renders a float with the shortest representation that
// round-trips exactly.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// parseTuple parses a "(a, b, c)" rendering back into floats.
func parseTuple(line string) ([]float64, error) {
	s := strings.TrimSpace(line)
	s = strings.TrimPrefix(s, "(")
	s = strings.TrimSuffix(s, ")")
	parts := strings.Split(s, ",")

	values := make([]float64, len(parts))
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid tuple field %q in %q", part, line)
		}
		values[i] = v
	}
	return values, nil
}
