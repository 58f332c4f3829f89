// Package render produces post-hoc visualizations of a scan collection: 2D
// projection plots via gonum/plot and an interactive 3D scatter as a
// standalone HTML page via go-echarts.
package render

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/scanrig/internal/scan"
)

// Projection selects which two axes of the point cloud a 2D plot shows.
type Projection int

const (
	// ProjectionXY is the top-down view of the scanned object.
	ProjectionXY Projection = iota
	// ProjectionXZ is the side view, showing the carriage height profile.
	ProjectionXZ
)

func (p Projection) String() string {
	if p == ProjectionXZ {
		return "xz"
	}
	return "xy"
}

// pathColor matches the muted connecting line the bench operators are used
// to: the scan path drawn under the scatter.
var pathColor = color.RGBA{R: 128, G: 128, B: 128, A: 128}

// project maps the collection onto plotter coordinates for the projection.
func project(col *scan.Collection, proj Projection) plotter.XYs {
	points := col.Points()
	xys := make(plotter.XYs, len(points))
	for i, p := range points {
		xys[i].X = p.X
		if proj == ProjectionXZ {
			xys[i].Y = p.Z
		} else {
			xys[i].Y = p.Y
		}
	}
	return xys
}

// ProjectionPlot builds a scatter-plus-path plot of the collection in the
// given projection. The path connects points in arrival order, showing the
// platform sweep.
func ProjectionPlot(col *scan.Collection, proj Projection) (*plot.Plot, error) {
	if col.Len() == 0 {
		return nil, fmt.Errorf("empty collection: nothing to plot")
	}

	p := plot.New()
	p.Title.Text = "Scanner Measurements"
	p.X.Label.Text = "X (mm)"
	if proj == ProjectionXZ {
		p.Y.Label.Text = "Z (mm)"
	} else {
		p.Y.Label.Text = "Y (mm)"
	}

	xys := project(col, proj)

	line, err := plotter.NewLine(xys)
	if err != nil {
		return nil, fmt.Errorf("build path line: %w", err)
	}
	line.Color = pathColor
	p.Add(line)

	scatter, err := plotter.NewScatter(xys)
	if err != nil {
		return nil, fmt.Errorf("build scatter: %w", err)
	}
	scatter.GlyphStyle.Radius = vg.Points(2)
	p.Add(scatter)

	padAxes(p, xys)
	return p, nil
}

// padAxes applies symmetric padding so edge points stay visible, mirroring
// the square framing of the bench plots.
func padAxes(p *plot.Plot, xys plotter.XYs) {
	xs := make([]float64, len(xys))
	ys := make([]float64, len(xys))
	for i, xy := range xys {
		xs[i] = xy.X
		ys[i] = xy.Y
	}

	pad := maxAbsRange(xs, ys) * 0.05
	if pad == 0 {
		pad = 1
	}
	p.X.Min = floats.Min(xs) - pad
	p.X.Max = floats.Max(xs) + pad
	p.Y.Min = floats.Min(ys) - pad
	p.Y.Max = floats.Max(ys) + pad
}

func maxAbsRange(xs, ys []float64) float64 {
	rangeX := floats.Max(xs) - floats.Min(xs)
	rangeY := floats.Max(ys) - floats.Min(ys)
	if rangeY > rangeX {
		return rangeY
	}
	return rangeX
}

// SaveProjections writes xy and xz projection plots of the collection into
// outputDir. The image format follows ext (".png" or ".svg").
func SaveProjections(col *scan.Collection, outputDir, ext string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	for _, proj := range []Projection{ProjectionXY, ProjectionXZ} {
		p, err := ProjectionPlot(col, proj)
		if err != nil {
			return err
		}
		name := filepath.Join(outputDir, fmt.Sprintf("scan_%s%s", proj, ext))
		if err := p.Save(6*vg.Inch, 6*vg.Inch, name); err != nil {
			return fmt.Errorf("save %s plot: %w", proj, err)
		}
	}
	return nil
}
