package viz

import (
	"math"

	"github.com/guptarohit/asciigraph"
)

// Series is one labelled curve over a time grid.
type Series struct {
	Name   string
	Times  []float64
	Values []float64
}

var seriesColors = []asciigraph.AnsiColor{
	asciigraph.Green,
	asciigraph.Orange,
	asciigraph.Cyan,
	asciigraph.Magenta,
	asciigraph.Yellow,
	asciigraph.Red,
	asciigraph.Blue,
	asciigraph.White,
}

type ChartOptions struct {
	Width   int
	Height  int
	Caption string
}

func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 80, Height: 15}
}

// Plot draws a single series. Non-finite samples are left as gaps.
func Plot(values []float64, opts ChartOptions) string {
	if len(values) == 0 {
		return ""
	}
	return asciigraph.Plot(finite(values),
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
	)
}

// PlotMany overlays several series with a legend, one colour per series.
func PlotMany(series []Series, opts ChartOptions) string {
	data := make([][]float64, 0, len(series))
	names := make([]string, 0, len(series))
	colors := make([]asciigraph.AnsiColor, 0, len(series))

	for i, s := range series {
		if len(s.Values) == 0 {
			continue
		}
		data = append(data, finite(s.Values))
		names = append(names, s.Name)
		colors = append(colors, seriesColors[i%len(seriesColors)])
	}
	if len(data) == 0 {
		return ""
	}

	return asciigraph.PlotMany(data,
		asciigraph.Height(opts.Height),
		asciigraph.Width(opts.Width),
		asciigraph.Caption(opts.Caption),
		asciigraph.SeriesColors(colors...),
		asciigraph.SeriesLegends(names...),
	)
}

// finite replaces infinities with NaN, which asciigraph skips.
func finite(values []float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		if math.IsInf(v, 0) {
			v = math.NaN()
		}
		out[i] = v
	}
	return out
}
