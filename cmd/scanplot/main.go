// Command scanplot reconstructs a saved capture file and renders it, without
// needing the rig connected.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/banshee-data/scanrig/internal/render"
	"github.com/banshee-data/scanrig/internal/scan"
	"github.com/banshee-data/scanrig/internal/scanfile"
)

var (
	inFile   = flag.String("in", "scanner_data.txt", "Capture file to reconstruct")
	csvInput = flag.Bool("csv", false, "Treat the input as a flat polar CSV instead of a structured capture")
	plotDir  = flag.String("plot", "plots", "Directory for projection plots (SVG)")
	htmlFile = flag.String("html", "", "Write an interactive 3D scatter to this HTML file")
	summary  = flag.Int("show", 5, "Print the first N reconstructed points")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var samples []scan.PolarSample
	var err error
	if *csvInput {
		samples, err = readCSV(*inFile)
	} else {
		samples, err = scanfile.ReconstructFile(*inFile)
	}
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no points found in %s", *inFile)
	}
	log.Printf("reconstructed %d points from %s", len(samples), *inFile)

	// Feed the recovered samples through the forward pipeline to rebuild
	// the collection.
	agg := scan.NewAggregator()
	for _, ps := range samples {
		s, err := scan.ParseSample(scan.SchemaPolar,
			[]float64{ps.Distance, ps.PlatformAngle, ps.VerticalAngle, ps.Height})
		if err != nil {
			return err
		}
		agg.Accept(s)
	}
	col := agg.Snapshot()

	if *summary > 0 {
		n := *summary
		if n > col.Len() {
			n = col.Len()
		}
		var sb strings.Builder
		for i := 0; i < n; i++ {
			p := col.PointAt(i)
			fmt.Fprintf(&sb, "  (%.1f, %.1f, %.1f)\n", p.X, p.Y, p.Z)
		}
		log.Printf("first %d points:\n%s", n, sb.String())
	}

	if *plotDir != "" {
		if err := render.SaveProjections(col, *plotDir, ".svg"); err != nil {
			return err
		}
		log.Printf("projection plots saved to %s", *plotDir)
	}

	if *htmlFile != "" {
		if err := render.SaveScatter3DHTML(col, "Reconstructed Scan", *htmlFile); err != nil {
			return err
		}
		log.Printf("3d scatter saved to %s", *htmlFile)
	}

	return nil
}

func readCSV(path string) ([]scan.PolarSample, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return scanfile.ReadPolarCSV(f)
}
