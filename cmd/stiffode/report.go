package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/san-kum/stiffode/internal/dynamo"
	"github.com/san-kum/stiffode/internal/metrics"
	"github.com/san-kum/stiffode/internal/viz"
)

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	))
}

// trace keeps the per-step mode and stiffness estimate for the summary
// strips printed after a run.
type trace struct {
	modes     []dynamo.Mode
	stiffness []float64
}

func (t *trace) OnStep(info dynamo.StepInfo) {
	t.modes = append(t.modes, info.Mode)
	t.stiffness = append(t.stiffness, info.Stiffness)
}

func (t *trace) hasStiffness() bool {
	for _, s := range t.stiffness {
		if s != 0 {
			return true
		}
	}
	return false
}

// attachObservers wires the optional step log and prometheus collector
// into sim and returns the trace used for the report.
func attachObservers(sim *dynamo.Simulator, name string, collector *metrics.Collector) *trace {
	tr := &trace{}
	sim.AddObserver(tr)
	if verbose {
		sim.AddObserver(dynamo.LogObserver(slog.Default(), name))
	}
	if collector != nil {
		sim.AddObserver(collector.For(name))
	}
	return tr
}

func newCollector() *metrics.Collector {
	if !showMetrics {
		return nil
	}
	return metrics.NewCollector()
}

func printSnapshot(c *metrics.Collector) error {
	if c == nil {
		return nil
	}
	samples, err := c.Snapshot()
	if err != nil {
		return err
	}

	rows := make([][]string, 0, len(samples))
	for _, s := range samples {
		rows = append(rows, []string{s.Name, formatLabels(s.Labels), fmtFloat(s.Value)})
	}

	fmt.Println()
	fmt.Println(viz.Title.Render("prometheus"))
	fmt.Print(viz.Table([]string{"series", "labels", "value"}, rows))
	return nil
}

func formatLabels(labels map[string]string) string {
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+labels[k])
	}
	return strings.Join(parts, ",")
}

func metricRows(m map[string]float64) [][]string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, 0, len(names))
	for _, name := range names {
		rows = append(rows, []string{viz.MetricLabel.Render(name), viz.MetricValue.Render(fmtFloat(m[name]))})
	}
	return rows
}

func printStrips(tr *trace) {
	if len(tr.modes) == 0 {
		return
	}
	fmt.Println(viz.MetricLabel.Render("modes      ") + viz.ModeStrip(tr.modes, 60))
	if tr.hasStiffness() {
		fmt.Println(viz.MetricLabel.Render("stiffness  ") + viz.SparklineChart(tr.stiffness, 60))
	}
}

func status(err error) string {
	if err != nil {
		return viz.StatusFail.Render("failed")
	}
	return viz.StatusOK.Render("ok")
}

func fmtFloat(v float64) string {
	switch {
	case math.IsNaN(v):
		return "-"
	case v != 0 && (math.Abs(v) < 1e-3 || math.Abs(v) >= 1e5):
		return fmt.Sprintf("%.3e", v)
	default:
		return fmt.Sprintf("%.6g", v)
	}
}
