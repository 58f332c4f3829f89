package render

import (
	"fmt"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/banshee-data/scanrig/internal/scan"
)

// Scatter3D builds an interactive 3D scatter of the collection, colored by
// height so vertical bands are easy to pick out.
func Scatter3D(col *scan.Collection, title string) (*charts.Scatter3D, error) {
	if col.Len() == 0 {
		return nil, fmt.Errorf("empty collection: nothing to plot")
	}

	points := col.Points()
	data := make([]opts.Chart3DData, len(points))
	minZ, maxZ := points[0].Z, points[0].Z
	for i, p := range points {
		data[i] = opts.Chart3DData{Value: []interface{}{p.X, p.Y, p.Z}}
		if p.Z < minZ {
			minZ = p.Z
		}
		if p.Z > maxZ {
			maxZ = p.Z
		}
	}
	if maxZ == minZ {
		maxZ = minZ + 1
	}

	scatter := charts.NewScatter3D()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			PageTitle: title,
			Width:     "900px",
			Height:    "900px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: fmt.Sprintf("points=%d angles=%d", col.Len(), len(col.Angles())),
		}),
		charts.WithXAxis3DOpts(opts.XAxis3D{Name: "X (mm)", Show: opts.Bool(true)}),
		charts.WithYAxis3DOpts(opts.YAxis3D{Name: "Y (mm)", Show: opts.Bool(true)}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{Name: "Z (mm)", Show: opts.Bool(true)}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Show:       opts.Bool(true),
			Calculable: opts.Bool(true),
			Min:        float32(minZ),
			Max:        float32(maxZ),
			InRange:    &opts.VisualMapInRange{Color: []string{"#440154", "#21918c", "#fde725"}},
		}),
	)
	scatter.AddSeries("points", data)
	return scatter, nil
}

// SaveScatter3DHTML writes the interactive 3D scatter as a standalone HTML
// page.
func SaveScatter3DHTML(col *scan.Collection, title, path string) error {
	scatter, err := Scatter3D(col, title)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create html file: %w", err)
	}
	if err := scatter.Render(f); err != nil {
		f.Close()
		return fmt.Errorf("render 3d scatter: %w", err)
	}
	return f.Close()
}
