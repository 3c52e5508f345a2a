package viz

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

// SavePlot renders series as lines to path. The format follows the file
// extension: png, svg, pdf, jpg, tiff or eps.
func SavePlot(path, title string, series []Series) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".svg", ".pdf", ".jpg", ".jpeg", ".eps", ".tif", ".tiff":
	default:
		return fmt.Errorf("viz: unsupported plot format %q", filepath.Ext(path))
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "t"
	p.Y.Label.Text = "x"
	p.Add(plotter.NewGrid())

	args := make([]any, 0, 2*len(series))
	for _, s := range series {
		xys, err := toXYs(s)
		if err != nil {
			return err
		}
		if len(xys) == 0 {
			continue
		}
		args = append(args, s.Name, xys)
	}
	if len(args) == 0 {
		return fmt.Errorf("viz: no finite samples to plot")
	}

	if err := plotutil.AddLines(p, args...); err != nil {
		return err
	}

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

// toXYs pairs times with values, dropping non-finite samples which
// gonum/plot rejects.
func toXYs(s Series) (plotter.XYs, error) {
	if len(s.Times) != len(s.Values) {
		return nil, fmt.Errorf("viz: series %q has %d times and %d values", s.Name, len(s.Times), len(s.Values))
	}

	xys := make(plotter.XYs, 0, len(s.Values))
	for i, v := range s.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		xys = append(xys, plotter.XY{X: s.Times[i], Y: v})
	}
	return xys, nil
}
