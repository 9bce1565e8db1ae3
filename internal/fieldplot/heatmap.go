// Package fieldplot renders solver fields for inspection: PNG heat maps and
// residual-history plots via gonum/plot, and self-contained interactive HTML
// heat maps via go-echarts.
package fieldplot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cdcooper84/essential-skills-RRC/internal/field"
	"github.com/cdcooper84/essential-skills-RRC/internal/solver"
)

// grid adapts a field to plotter.GridXYZ. Column index maps to x and row
// index to y, so the plot renders in the same [j, i] orientation the solver
// uses (bottom row j=0, top row j=ny-1).
type grid struct {
	f *field.Field
}

func (g grid) Dims() (c, r int) {
	ny, nx := g.f.Dims()
	return nx, ny
}

func (g grid) Z(c, r int) float64 { return g.f.At(r, c) }
func (g grid) X(c int) float64    { return float64(c) }
func (g grid) Y(r int) float64    { return float64(r) }

// HeatmapPNG renders f as a PNG heat map at path.
func HeatmapPNG(f *field.Field, title, path string) error {
	if f == nil {
		return fmt.Errorf("field must be non-nil")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "i"
	p.Y.Label.Text = "j"

	pal := moreland.SmoothBlueRed().Palette(255)
	hm := plotter.NewHeatMap(grid{f: f}, pal)

	// A constant field leaves the color range degenerate; pad it so the
	// palette lookup stays defined.
	if hm.Min == hm.Max {
		hm.Min--
		hm.Max++
	}

	p.Add(hm)
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save heat map: %w", err)
	}
	return nil
}

// ResidualPNG plots the residual samples of a relaxation run against sweep
// count and saves the result at path.
func ResidualPNG(samples []solver.ResidualSample, title, path string) error {
	if len(samples) == 0 {
		return fmt.Errorf("no residual samples to plot")
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Sweep"
	p.Y.Label.Text = "Relative L2 residual"

	pts := make(plotter.XYs, len(samples))
	for k, s := range samples {
		pts[k] = plotter.XY{X: float64(s.Sweep), Y: s.Value}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("failed to build residual line: %w", err)
	}
	line.Color = color.RGBA{R: 0x31, G: 0x68, B: 0x8e, A: 0xff}
	line.Width = vg.Points(1)

	p.Add(line)
	p.Legend.Add("residual", line)

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save residual plot: %w", err)
	}
	return nil
}
