package scanfile

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/banshee-data/scanrig/internal/scan"
)

// ReadRawSection parses the Raw Data section of a structured capture back
// into 5-field tuples. A structurally invalid section yields an error and no
// tuples — never a partial result.
func ReadRawSection(r io.Reader) ([][]float64, error) {
	scanner := bufio.NewScanner(r)
	var tuples [][]float64
	inRaw := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if strings.HasPrefix(line, rawSectionMarker) {
			inRaw = true
			continue
		}
		if !inRaw || line == "" {
			continue
		}
		if strings.HasPrefix(line, "===") {
			// A later section ends the raw data.
			break
		}

		tuple, err := parseTuple(line)
		if err != nil {
			return nil, fmt.Errorf("raw data section: %w", err)
		}
		if len(tuple) != 5 {
			return nil, fmt.Errorf("raw data section: expected 5 fields, got %d in %q", len(tuple), line)
		}
		tuples = append(tuples, tuple)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read capture: %w", err)
	}
	if !inRaw {
		return nil, fmt.Errorf("capture has no %q section", rawSectionMarker)
	}
	return tuples, nil
}

// Reconstruct reads a structured capture and recovers polar samples from its
// Raw Data section by applying the inverse coordinate transform. The
// recovered platform angles are normalized into [0, 360); the cartesian
// positions are preserved exactly.
func Reconstruct(r io.Reader) ([]scan.PolarSample, error) {
	tuples, err := ReadRawSection(r)
	if err != nil {
		return nil, err
	}

	samples := make([]scan.PolarSample, len(tuples))
	for i, t := range tuples {
		point := scan.CartesianPoint{X: t[0], Y: t[1], Z: t[2]}
		samples[i] = scan.RecoverPolar(point, t[3])
	}
	return samples, nil
}

// ReconstructFile reads a structured capture from disk. A missing or
// unreadable file is a recoverable error: the caller gets the error and an
// empty result.
func ReconstructFile(path string) ([]scan.PolarSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open capture: %w", err)
	}
	defer f.Close()
	return Reconstruct(f)
}
