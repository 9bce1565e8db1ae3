package fieldplot

import (
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/cdcooper84/essential-skills-RRC/internal/field"
)

// viridisRamp is the color ramp used for the interactive heat maps.
var viridisRamp = []string{
	"#440154", "#482777", "#3e4989", "#31688e", "#26828e",
	"#1f9e89", "#35b779", "#6ece58", "#b5de2b", "#fde725",
}

// HeatmapHTML writes a self-contained interactive heat map of f. Intended
// for quick visual inspection in a browser without any UI build step.
func HeatmapHTML(f *field.Field, title string, w io.Writer) error {
	if f == nil {
		return fmt.Errorf("field must be non-nil")
	}

	ny, nx := f.Dims()
	data := make([]opts.HeatMapData, 0, ny*nx)
	minVal, maxVal := f.At(0, 0), f.At(0, 0)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			v := f.At(j, i)
			if v < minVal {
				minVal = v
			}
			if v > maxVal {
				maxVal = v
			}
			data = append(data, opts.HeatMapData{Value: [3]interface{}{i, j, v}})
		}
	}
	if minVal == maxVal {
		minVal--
		maxVal++
	}

	cols := make([]string, nx)
	for i := range cols {
		cols[i] = strconv.Itoa(i)
	}
	rows := make([]string, ny)
	for j := range rows {
		rows[j] = strconv.Itoa(j)
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("grid=%dx%d", ny, nx)}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "category", Data: cols}),
		charts.WithYAxisOpts(opts.YAxis{Type: "category", Data: rows}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(minVal),
			Max:        float32(maxVal),
			InRange:    &opts.VisualMapInRange{Color: viridisRamp},
		}),
	)
	hm.SetXAxis(cols).AddSeries("value", data)

	if err := hm.Render(w); err != nil {
		return fmt.Errorf("failed to render heat map: %w", err)
	}
	return nil
}
