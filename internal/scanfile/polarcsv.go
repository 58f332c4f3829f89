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

// PolarCSVHeader is the header line of the flat polar capture format.
const PolarCSVHeader = "distance,platform_angle,vertical_angle,height"

// WritePolarCSV writes polar samples in the flat CSV format used by the
// 4-field firmware capture path.
func WritePolarCSV(w io.Writer, samples []scan.PolarSample) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n", PolarCSVHeader)
	for _, s := range samples {
		fmt.Fprintf(bw, "%s,%s,%s,%s\n",
			formatFloat(s.Distance),
			formatFloat(s.PlatformAngle),
			formatFloat(s.VerticalAngle),
			formatFloat(s.Height))
	}
	return bw.Flush()
}

// SavePolarCSV writes polar samples to a file.
func SavePolarCSV(path string, samples []scan.PolarSample) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create csv file: %w", err)
	}
	if err := WritePolarCSV(f, samples); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadPolarCSV reads the flat CSV format. The header line is required; a
// malformed row is a structural error yielding an empty result.
func ReadPolarCSV(r io.Reader) ([]scan.PolarSample, error) {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		return nil, fmt.Errorf("empty csv: missing %q header", PolarCSVHeader)
	}
	if strings.TrimSpace(scanner.Text()) != PolarCSVHeader {
		return nil, fmt.Errorf("unexpected csv header %q", scanner.Text())
	}

	var samples []scan.PolarSample
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Split(line, ",")
		if len(parts) != 4 {
			return nil, fmt.Errorf("csv row %q: expected 4 fields, got %d", line, len(parts))
		}
		var values [4]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
			if err != nil {
				return nil, fmt.Errorf("csv row %q: %w", line, err)
			}
			values[i] = v
		}
		samples = append(samples, scan.PolarSample{
			Distance:      values[0],
			PlatformAngle: values[1],
			VerticalAngle: values[2],
			Height:        values[3],
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return samples, nil
}
